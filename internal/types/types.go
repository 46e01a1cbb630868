package types

import (
	"context"

	"github.com/xhad/progmatch/internal/models"
)

// Core interfaces

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Collection is a named set of (id, embedding, text, metadata) rows searchable by
// cosine distance.
type Collection interface {
	// Drop removes the collection and its rows. Dropping a missing collection is not an error.
	Drop(ctx context.Context) error
	// Reset drops any existing collection and creates an empty one for dim-sized vectors.
	// A dim of zero leaves the size to the first insert.
	Reset(ctx context.Context, dim int) error
	Insert(ctx context.Context, entries []models.IndexEntry) error
	Search(ctx context.Context, vector []float32, k int) ([]models.QueryResult, error)
	Count(ctx context.Context) (int, error)
	Close()
}
