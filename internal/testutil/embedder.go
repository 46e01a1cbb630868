// Package testutil holds deterministic stand-ins for remote services.
package testutil

import (
	"context"
	"math"
	"strings"
	"sync"
	"unicode"
)

// BagOfWords embeds text as an L2-normalised term-count vector. Every distinct
// lower-cased token gets its own dimension, so there are no collisions below Dim
// distinct tokens. It satisfies the langchaingo embeddings.EmbedderClient shape.
type BagOfWords struct {
	Dim int

	mu       sync.Mutex
	vocab    map[string]int
	calls    int
	failures int
	failErr  error
}

func NewBagOfWords(dim int) *BagOfWords {
	return &BagOfWords{Dim: dim, vocab: make(map[string]int)}
}

// FailNext makes the next n calls fail with err.
func (b *BagOfWords) FailNext(n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = n
	b.failErr = err
}

// Calls is the number of CreateEmbedding calls made so far.
func (b *BagOfWords) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *BagOfWords) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.failures > 0 {
		b.failures--
		return nil, b.failErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = b.embed(text)
	}
	return out, nil
}

// Embed lets BagOfWords stand in for an Embedder directly.
func (b *BagOfWords) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return b.CreateEmbedding(ctx, texts)
}

func (b *BagOfWords) embed(text string) []float32 {
	v := make([]float32, b.Dim)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		idx, ok := b.vocab[tok]
		if !ok {
			idx = len(b.vocab) % b.Dim
			b.vocab[tok] = idx
		}
		v[idx]++
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}
