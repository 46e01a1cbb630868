// Package matcher wires document building, the vector index, the classifier and the
// retriever into the operations callers use.
package matcher

import (
	"context"
	"errors"
	"strings"

	"github.com/xhad/progmatch/internal/logger"
	"github.com/xhad/progmatch/internal/models"
	"github.com/xhad/progmatch/internal/types"
	"github.com/xhad/progmatch/pkg/classifier"
	"github.com/xhad/progmatch/pkg/index"
	"github.com/xhad/progmatch/pkg/processor"
	"github.com/xhad/progmatch/pkg/retriever"
	"go.uber.org/zap"
)

var (
	ErrNoInput     = errors.New("a CV or career goals are required")
	ErrNoSynthesis = errors.New("profile extraction and selection are not configured")
)

type ProfileExtractor interface {
	Extract(ctx context.Context, cvText, goals string) (models.Profile, error)
}

type Selector interface {
	Select(ctx context.Context, profile models.Profile, categories []models.CategoryScore, programmes []models.ProgrammeMatch) ([]models.Recommendation, error)
}

type Options struct {
	Processor     processor.ProcessorConfig
	Index         index.Config
	TopK          int // categories returned by Match
	TopN          int // programmes returned by Match
	SnippetLength int
	Extractor     ProfileExtractor
	Selector      Selector
	Logger        *zap.Logger
}

// Result is the outcome of Match.
type Result struct {
	Query      string                  `json:"query"`
	Categories []models.CategoryScore  `json:"top_categories"`
	Programmes []models.ProgrammeMatch `json:"programmes"`
}

// Report is the outcome of Recommend.
type Report struct {
	Profile         models.Profile          `json:"profile"`
	Categories      []models.CategoryScore  `json:"top_categories"`
	Programmes      []models.ProgrammeMatch `json:"programmes"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

// BuildReport summarises one index build.
type BuildReport struct {
	Indexed int
	Skipped []models.IngestResult
}

// Matcher is safe for concurrent use. Match and Recommend need a ready index;
// Classify does not.
type Matcher struct {
	processor  processor.Processor
	index      *index.VectorIndex
	classifier *classifier.Classifier
	retriever  *retriever.Retriever
	options    Options
	logger     *zap.Logger
}

func New(embedder types.Embedder, collection types.Collection, opts Options) *Matcher {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	log := logger.OrNop(opts.Logger)
	ix := index.New(embedder, collection, opts.Index, log.Named("index"))
	return &Matcher{
		processor:  processor.NewWithConfig(opts.Processor),
		index:      ix,
		classifier: classifier.New(embedder, log.Named("classifier")),
		retriever:  retriever.New(ix, retriever.Config{SnippetLength: opts.SnippetLength}, log.Named("retriever")),
		options:    opts,
		logger:     log,
	}
}

// Build turns ingestion results into documents and rebuilds the index from them.
func (m *Matcher) Build(ctx context.Context, results []models.IngestResult) (BuildReport, error) {
	entries, skipped := m.processor.Process(results)
	for _, s := range skipped {
		m.logger.Debug("record skipped",
			zap.String("path", s.Path),
			zap.String("reason", string(s.Skip)),
			zap.String("detail", logger.Truncate(s.Detail, 120)))
	}
	m.logger.Info("documents prepared", zap.Int("documents", len(entries)), zap.Int("skipped", len(skipped)))

	report := BuildReport{Indexed: len(entries), Skipped: skipped}
	if err := m.index.Rebuild(ctx, entries); err != nil {
		report.Indexed = 0
		return report, err
	}
	return report, nil
}

// BuildIndex rebuilds the index from records and reports whether it is ready.
// The failure reason is available from Status.
func (m *Matcher) BuildIndex(ctx context.Context, records []models.ProgrammeRecord) bool {
	_, err := m.Build(ctx, processor.FromRecords(records))
	return err == nil
}

// BuildIndexAsync runs BuildIndex in the background. The channel yields its result
// once and is then closed.
func (m *Matcher) BuildIndexAsync(ctx context.Context, records []models.ProgrammeRecord) <-chan bool {
	done := make(chan bool, 1)
	go func() {
		defer close(done)
		done <- m.BuildIndex(ctx, records)
	}()
	return done
}

// Attach serves an already persisted collection without rebuilding it.
func (m *Matcher) Attach(ctx context.Context) (int, error) {
	return m.index.Attach(ctx)
}

func (m *Matcher) Status() index.Status {
	return m.index.Status()
}

func (m *Matcher) Classify(ctx context.Context, text string, topK int) ([]models.CategoryScore, error) {
	return m.classifier.Classify(ctx, text, topK)
}

func (m *Matcher) Search(ctx context.Context, query string, n int) ([]models.ProgrammeMatch, error) {
	return m.retriever.Search(ctx, query, n)
}

// Match classifies and retrieves for a profile. It refuses with index.ErrNotReady
// before doing any work when the index is not ready.
func (m *Matcher) Match(ctx context.Context, profile models.Profile, goals string) (Result, error) {
	if !m.index.Status().Ready() {
		return Result{}, index.ErrNotReady
	}
	query := classifier.QueryFromProfile(profile, goals)
	if query == "" {
		return Result{}, ErrNoInput
	}

	categories, err := m.classifier.Classify(ctx, query, m.options.TopK)
	if err != nil {
		return Result{}, err
	}
	programmes, err := m.retriever.Search(ctx, query, m.options.TopN)
	if err != nil {
		return Result{}, err
	}
	return Result{Query: query, Categories: categories, Programmes: programmes}, nil
}

// Recommend runs the full pipeline: profile extraction, Match and final selection.
func (m *Matcher) Recommend(ctx context.Context, cvText, goals string) (Report, error) {
	if m.options.Extractor == nil || m.options.Selector == nil {
		return Report{}, ErrNoSynthesis
	}
	if strings.TrimSpace(cvText) == "" && strings.TrimSpace(goals) == "" {
		return Report{}, ErrNoInput
	}
	if !m.index.Status().Ready() {
		return Report{}, index.ErrNotReady
	}

	profile, err := m.options.Extractor.Extract(ctx, cvText, goals)
	if err != nil {
		return Report{}, err
	}
	res, err := m.Match(ctx, profile, goals)
	if err != nil {
		return Report{}, err
	}
	recs, err := m.options.Selector.Select(ctx, profile, res.Categories, res.Programmes)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Profile:         profile,
		Categories:      res.Categories,
		Programmes:      res.Programmes,
		Recommendations: recs,
	}, nil
}
