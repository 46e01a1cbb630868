package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/progmatch/internal/models"
	"github.com/xhad/progmatch/pkg/store"
)

// These tests need a PostgreSQL instance with the pgvector extension available.
func getTestStore(t *testing.T) *store.VectorStore {
	t.Helper()
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	s, err := store.NewWithConfig(context.Background(), store.VectorStoreConfig{
		ConnString: connString,
		Collection: "test_programmes",
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestVectorStore(t *testing.T) {
	ctx := context.Background()
	s := getTestStore(t)

	require.NoError(t, s.Reset(ctx, 3))
	require.NoError(t, s.Insert(ctx, []models.IndexEntry{
		{ID: "prog_0", Embedding: []float32{1, 0, 0}, Text: "Programme: Finance", Metadata: models.ProgrammeMetadata{Title: "Finance", Fee: "€5,000"}},
		{ID: "prog_1", Embedding: []float32{0, 1, 0}, Text: "Programme: Strategy", Metadata: models.ProgrammeMetadata{Title: "Strategy"}},
	}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	results, err := s.Search(ctx, []float32{0.9, 0.1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "prog_0", results[0].ID)
	assert.Equal(t, "€5,000", results[0].Metadata.Fee)
	assert.InDelta(t, 0.0061, results[0].Distance, 1e-3)
}

func TestVectorStore_ResetDropsRows(t *testing.T) {
	ctx := context.Background()
	s := getTestStore(t)

	require.NoError(t, s.Reset(ctx, 2))
	require.NoError(t, s.Insert(ctx, []models.IndexEntry{{ID: "prog_0", Embedding: []float32{1, 0}, Text: "old"}}))
	require.NoError(t, s.Reset(ctx, 2))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, s.Insert(ctx, []models.IndexEntry{{ID: "prog_0", Embedding: []float32{0, 1}, Text: "new"}}))
}

func TestVectorStore_Drop(t *testing.T) {
	ctx := context.Background()
	s := getTestStore(t)

	require.NoError(t, s.Reset(ctx, 2))
	require.NoError(t, s.Drop(ctx))
	require.NoError(t, s.Drop(ctx))

	_, err := s.Count(ctx)
	assert.ErrorIs(t, err, store.ErrCollectionMissing)

	require.NoError(t, s.Reset(ctx, 0))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
