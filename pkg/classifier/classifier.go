// Package classifier scores text against the programme taxonomy by cosine similarity
// to per-category centroid embeddings.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xhad/progmatch/internal/logger"
	"github.com/xhad/progmatch/internal/models"
	"github.com/xhad/progmatch/internal/types"
	"github.com/xhad/progmatch/pkg/vecmath"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrInvalidTopK is returned for a negative topK.
var ErrInvalidTopK = errors.New("top_k must not be negative")

type centroid struct {
	category string
	vector   []float32
}

// Classifier embeds the exemplar phrases once, on first use, and keeps the
// resulting centroids for the lifetime of the value.
type Classifier struct {
	embedder types.Embedder
	taxonomy []Category
	logger   *zap.Logger

	group     singleflight.Group
	mu        sync.RWMutex
	centroids []centroid
}

// New returns a classifier over the built-in Taxonomy.
func New(embedder types.Embedder, log *zap.Logger) *Classifier {
	return NewWithTaxonomy(embedder, Taxonomy, log)
}

func NewWithTaxonomy(embedder types.Embedder, taxonomy []Category, log *zap.Logger) *Classifier {
	return &Classifier{
		embedder: embedder,
		taxonomy: taxonomy,
		logger:   logger.OrNop(log),
	}
}

// Warm builds the centroid cache if it is empty.
func (c *Classifier) Warm(ctx context.Context) error {
	_, err := c.load(ctx)
	return err
}

// Ready reports whether centroids are cached.
func (c *Classifier) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.centroids != nil
}

func (c *Classifier) cached() []centroid {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.centroids
}

func (c *Classifier) load(ctx context.Context) ([]centroid, error) {
	if cs := c.cached(); cs != nil {
		return cs, nil
	}
	v, err, _ := c.group.Do("centroids", func() (any, error) {
		if cs := c.cached(); cs != nil {
			return cs, nil
		}
		// Shared by every waiting caller; no single caller's cancellation stops it.
		cs, err := c.build(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.centroids = cs
		c.mu.Unlock()
		return cs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]centroid), nil
}

func (c *Classifier) build(ctx context.Context) ([]centroid, error) {
	if len(c.taxonomy) == 0 {
		return nil, errors.New("empty taxonomy")
	}

	type span struct{ start, end int }
	var phrases []string
	spans := make([]span, len(c.taxonomy))
	for i, cat := range c.taxonomy {
		if len(cat.Exemplars) == 0 {
			return nil, fmt.Errorf("category %q has no exemplars", cat.Name)
		}
		spans[i].start = len(phrases)
		phrases = append(phrases, cat.Exemplars...)
		spans[i].end = len(phrases)
	}

	c.logger.Info("building category centroids",
		zap.Int("categories", len(c.taxonomy)),
		zap.Int("phrases", len(phrases)))

	vectors, err := c.embedder.Embed(ctx, phrases)
	if err != nil {
		return nil, fmt.Errorf("failed to embed exemplars: %w", err)
	}
	if len(vectors) != len(phrases) {
		return nil, fmt.Errorf("got %d embeddings for %d exemplars", len(vectors), len(phrases))
	}

	out := make([]centroid, len(c.taxonomy))
	for i, cat := range c.taxonomy {
		mean, err := vecmath.Mean(vectors[spans[i].start:spans[i].end])
		if err != nil {
			return nil, fmt.Errorf("centroid for %q: %w", cat.Name, err)
		}
		out[i] = centroid{category: cat.Name, vector: mean}
	}
	if dim := len(out[0].vector); dim > 0 {
		for _, cs := range out[1:] {
			if len(cs.vector) != dim {
				return nil, vecmath.ErrDimensionMismatch
			}
		}
	}
	return out, nil
}

// Classify returns the topK categories closest to text, best first. Scores are
// rounded to four decimals and ties keep taxonomy order. A topK of zero returns an
// empty slice and one larger than the taxonomy returns every category.
func (c *Classifier) Classify(ctx context.Context, text string, topK int) ([]models.CategoryScore, error) {
	if topK < 0 {
		return nil, ErrInvalidTopK
	}
	if topK == 0 {
		return []models.CategoryScore{}, nil
	}
	centroids, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	vectors, err := c.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("got %d embeddings for one text", len(vectors))
	}

	scores := make([]models.CategoryScore, len(centroids))
	for i, cs := range centroids {
		sim, err := vecmath.Cosine(vectors[0], cs.vector)
		if err != nil {
			return nil, fmt.Errorf("scoring %q: %w", cs.category, err)
		}
		scores[i] = models.CategoryScore{Category: cs.category, Score: vecmath.Round4(sim)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	if topK < len(scores) {
		scores = scores[:topK]
	}
	return scores, nil
}

// QueryFromProfile joins the stated goals (or the profile's own), skills and industry
// into one classification query.
func QueryFromProfile(profile models.Profile, goals string) string {
	var parts []string
	if g := strings.TrimSpace(goals); g != "" {
		parts = append(parts, g)
	} else if g := strings.TrimSpace(profile.CareerGoals); g != "" {
		parts = append(parts, g)
	}
	for _, skill := range profile.Skills {
		if s := strings.TrimSpace(skill); s != "" {
			parts = append(parts, s)
		}
	}
	if ind := strings.TrimSpace(profile.Industry); ind != "" {
		parts = append(parts, ind)
	}
	return strings.Join(parts, " ")
}
