package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/xhad/progmatch/internal/models"
	"github.com/xhad/progmatch/pkg/vecmath"
)

// Memory is an in-process collection using an exact cosine scan.
type Memory struct {
	mu        sync.RWMutex
	created   bool
	dimension int
	entries   []models.IndexEntry
	ids       map[string]struct{}
}

// NewMemory returns a store with no collection; call Reset before inserting.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Drop(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = false
	m.dimension = 0
	m.entries = nil
	m.ids = nil
	return nil
}

func (m *Memory) Reset(_ context.Context, dim int) error {
	if dim < 0 {
		return errors.New("invalid dimension")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = true
	m.dimension = dim
	m.entries = nil
	m.ids = make(map[string]struct{})
	return nil
}

func (m *Memory) Insert(_ context.Context, entries []models.IndexEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.created {
		return ErrCollectionMissing
	}
	if len(entries) == 0 {
		return nil
	}
	dim := m.dimension
	if dim == 0 {
		dim = len(entries[0].Embedding)
	}
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if len(e.Embedding) == 0 || len(e.Embedding) != dim {
			return fmt.Errorf("entry %s: vector dimension %d, collection has %d", e.ID, len(e.Embedding), dim)
		}
		if _, dup := m.ids[e.ID]; dup {
			return fmt.Errorf("entry %s: duplicate id", e.ID)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("entry %s: duplicate id", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	m.dimension = dim
	for _, e := range entries {
		m.ids[e.ID] = struct{}{}
		m.entries = append(m.entries, e)
	}
	return nil
}

// Search ranks by ascending cosine distance; equal distances keep insertion order.
func (m *Memory) Search(_ context.Context, vector []float32, k int) ([]models.QueryResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.created {
		return nil, ErrCollectionMissing
	}
	if k <= 0 || len(m.entries) == 0 {
		return nil, nil
	}

	results := make([]models.QueryResult, len(m.entries))
	for i, e := range m.entries {
		sim, err := vecmath.Cosine(e.Embedding, vector)
		if err != nil {
			return nil, err
		}
		results[i] = models.QueryResult{
			ID:       e.ID,
			Text:     e.Text,
			Metadata: e.Metadata,
			Distance: 1 - sim,
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.created {
		return 0, ErrCollectionMissing
	}
	return len(m.entries), nil
}

func (m *Memory) Close() {}
