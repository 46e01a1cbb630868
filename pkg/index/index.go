// Package index keeps the programme collection in sync with the embedding model and
// gates queries on build readiness.
package index

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xhad/progmatch/internal/logger"
	"github.com/xhad/progmatch/internal/models"
	"github.com/xhad/progmatch/internal/types"
	"github.com/xhad/progmatch/pkg/retry"
	"go.uber.org/zap"
)

var (
	// ErrNotReady is returned by queries while the index is not built, building or failed.
	ErrNotReady = errors.New("index not ready")
	ErrEmpty    = errors.New("collection is empty")
)

// State is the readiness of a VectorIndex. Only StateReady serves queries.
type State string

const (
	StateNotBuilt State = "not_built"
	StateBuilding State = "building"
	StateReady    State = "ready"
	StateFailed   State = "failed"
)

// Status is a snapshot of the index readiness.
type Status struct {
	State      State     `json:"state"`
	BuildID    string    `json:"build_id,omitempty"`
	Entries    int       `json:"entries"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

func (s Status) Ready() bool { return s.State == StateReady }

// Config tunes rebuild batching and the per-batch retry policy. Zero values take
// the defaults.
type Config struct {
	BatchSize      int
	MaxAttempts    int
	InitialBackoff time.Duration
	// Dimension pins the vector size. Zero takes it from the first embedded batch.
	Dimension int
	// Timer replaces the real backoff clock; tests use it to skip and record waits.
	Timer retry.Timer
	// OnBatch is called after every indexed batch of a rebuild.
	OnBatch func(done, total int)
}

func DefaultConfig() Config {
	return Config{
		BatchSize:      20,
		MaxAttempts:    3,
		InitialBackoff: 2 * time.Second,
	}
}

// VectorIndex owns one collection. Rebuilds are serialised and queries are refused
// unless the last rebuild or Attach succeeded.
type VectorIndex struct {
	config     Config
	embedder   types.Embedder
	collection types.Collection
	logger     *zap.Logger

	buildMu sync.Mutex
	mu      sync.RWMutex
	status  Status
}

func New(embedder types.Embedder, collection types.Collection, config Config, log *zap.Logger) *VectorIndex {
	def := DefaultConfig()
	if config.BatchSize <= 0 {
		config.BatchSize = def.BatchSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = def.InitialBackoff
	}
	return &VectorIndex{
		config:     config,
		embedder:   embedder,
		collection: collection,
		logger:     logger.OrNop(log),
		status:     Status{State: StateNotBuilt},
	}
}

func (ix *VectorIndex) Status() Status {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.status
}

func (ix *VectorIndex) setStatus(fn func(s *Status)) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	fn(&ix.status)
}

func (ix *VectorIndex) policy(batch int) retry.Policy {
	return retry.Policy{
		MaxAttempts:    ix.config.MaxAttempts,
		InitialBackoff: ix.config.InitialBackoff,
		Timer:          ix.config.Timer,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			ix.logger.Warn("batch failed, retrying",
				zap.Int("batch", batch),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err))
		},
	}
}

// Rebuild replaces the collection with entries. The old collection is dropped before
// anything is embedded and is recreated once the first batch fixes the vector size.
// Any batch that exhausts its retries aborts the build, drops the partial collection
// and leaves the index failed. An empty entries list leaves an empty, ready index.
func (ix *VectorIndex) Rebuild(ctx context.Context, entries []models.IndexEntry) error {
	ix.buildMu.Lock()
	defer ix.buildMu.Unlock()

	buildID := uuid.NewString()
	ix.setStatus(func(s *Status) {
		*s = Status{State: StateBuilding, BuildID: buildID, StartedAt: time.Now()}
	})
	log := ix.logger.With(zap.String("build_id", buildID))
	log.Info("index build started", zap.Int("entries", len(entries)), zap.Int("batch_size", ix.config.BatchSize))

	n, err := ix.rebuild(ctx, entries, log)
	if err != nil {
		log.Error("index build failed", zap.Error(err))
		if dropErr := ix.collection.Drop(context.WithoutCancel(ctx)); dropErr != nil {
			log.Warn("failed to drop partial collection", zap.Error(dropErr))
		}
		ix.setStatus(func(s *Status) {
			s.State = StateFailed
			s.Error = err.Error()
			s.Entries = 0
			s.FinishedAt = time.Now()
		})
		return err
	}

	ix.setStatus(func(s *Status) {
		s.State = StateReady
		s.Entries = n
		s.FinishedAt = time.Now()
	})
	log.Info("index build finished", zap.Int("count", n))
	return nil
}

func (ix *VectorIndex) rebuild(ctx context.Context, entries []models.IndexEntry, log *zap.Logger) (int, error) {
	if err := ix.collection.Drop(ctx); err != nil {
		return 0, fmt.Errorf("failed to drop collection: %w", err)
	}
	if err := uniqueIDs(entries); err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		if err := ix.collection.Reset(ctx, ix.config.Dimension); err != nil {
			return 0, fmt.Errorf("failed to reset collection: %w", err)
		}
		log.Warn("no documents to index, collection left empty")
		return 0, nil
	}

	created := false
	for start := 0; start < len(entries); start += ix.config.BatchSize {
		end := min(start+ix.config.BatchSize, len(entries))
		batch := start / ix.config.BatchSize

		err := retry.Do(ctx, ix.policy(batch), func(ctx context.Context) error {
			embedded, err := ix.embed(ctx, entries[start:end])
			if err != nil {
				return err
			}
			if !created {
				dim := len(embedded[0].Embedding)
				if ix.config.Dimension > 0 && dim != ix.config.Dimension {
					return fmt.Errorf("embedding dimension %d, configured %d", dim, ix.config.Dimension)
				}
				if err := ix.collection.Reset(ctx, dim); err != nil {
					return fmt.Errorf("failed to reset collection: %w", err)
				}
				created = true
				log.Debug("collection recreated", zap.Int("dimension", dim))
			}
			return ix.collection.Insert(ctx, embedded)
		})
		if err != nil {
			return 0, fmt.Errorf("batch %d: %w", batch, err)
		}
		log.Debug("batch indexed", zap.Int("batch", batch), zap.Int("size", end-start))
		if ix.config.OnBatch != nil {
			ix.config.OnBatch(end, len(entries))
		}
	}

	n, err := ix.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count collection: %w", err)
	}
	if n != len(entries) {
		return 0, fmt.Errorf("collection holds %d entries, indexed %d", n, len(entries))
	}
	return n, nil
}

// AddBatch embeds and inserts one batch into a ready index.
func (ix *VectorIndex) AddBatch(ctx context.Context, ids, texts []string, metas []models.ProgrammeMetadata) error {
	if len(ids) != len(texts) || len(ids) != len(metas) {
		return fmt.Errorf("batch lengths differ: %d ids, %d texts, %d metadatas", len(ids), len(texts), len(metas))
	}
	if len(ids) == 0 {
		return nil
	}

	ix.buildMu.Lock()
	defer ix.buildMu.Unlock()
	if !ix.Status().Ready() {
		return ErrNotReady
	}

	entries := make([]models.IndexEntry, len(ids))
	for i := range ids {
		entries[i] = models.IndexEntry{ID: ids[i], Text: texts[i], Metadata: metas[i]}
	}
	err := retry.Do(ctx, ix.policy(0), func(ctx context.Context) error {
		embedded, err := ix.embed(ctx, entries)
		if err != nil {
			return err
		}
		return ix.collection.Insert(ctx, embedded)
	})
	if err != nil {
		return err
	}

	ix.setStatus(func(s *Status) { s.Entries += len(entries) })
	return nil
}

func (ix *VectorIndex) embed(ctx context.Context, entries []models.IndexEntry) ([]models.IndexEntry, error) {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(entries) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(vectors), len(entries))
	}

	out := make([]models.IndexEntry, len(entries))
	for i, e := range entries {
		e.Embedding = vectors[i]
		out[i] = e
	}
	return out, nil
}

// Query returns the k entries closest to text, nearest first.
func (ix *VectorIndex) Query(ctx context.Context, text string, k int) ([]models.QueryResult, error) {
	if !ix.Status().Ready() {
		return nil, ErrNotReady
	}
	vectors, err := ix.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("got %d embeddings for one query", len(vectors))
	}
	return ix.collection.Search(ctx, vectors[0], k)
}

func (ix *VectorIndex) Count(ctx context.Context) (int, error) {
	if !ix.Status().Ready() {
		return 0, ErrNotReady
	}
	return ix.collection.Count(ctx)
}

// Attach marks an already persisted, non-empty collection ready without rebuilding it.
func (ix *VectorIndex) Attach(ctx context.Context) (int, error) {
	ix.buildMu.Lock()
	defer ix.buildMu.Unlock()

	n, err := ix.collection.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrEmpty
	}
	now := time.Now()
	ix.setStatus(func(s *Status) {
		*s = Status{State: StateReady, BuildID: uuid.NewString(), Entries: n, StartedAt: now, FinishedAt: now}
	})
	ix.logger.Info("attached existing collection", zap.Int("count", n))
	return n, nil
}

func uniqueIDs(entries []models.IndexEntry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			return fmt.Errorf("duplicate entry id %q", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}
