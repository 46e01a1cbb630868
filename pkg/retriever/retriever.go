// Package retriever turns nearest-neighbour hits into a ranked, de-duplicated list of
// programmes.
package retriever

import (
	"context"
	"strings"

	"github.com/xhad/progmatch/internal/logger"
	"github.com/xhad/progmatch/internal/models"
	"github.com/xhad/progmatch/pkg/vecmath"
	"go.uber.org/zap"
)

const DefaultSnippetLength = 400

// Querier is the part of the vector index the retriever reads from.
type Querier interface {
	Query(ctx context.Context, text string, k int) ([]models.QueryResult, error)
}

type Config struct {
	SnippetLength int // runes
}

type Retriever struct {
	index  Querier
	config Config
	logger *zap.Logger
}

func New(index Querier, config Config, log *zap.Logger) *Retriever {
	if config.SnippetLength <= 0 {
		config.SnippetLength = DefaultSnippetLength
	}
	return &Retriever{index: index, config: config, logger: logger.OrNop(log)}
}

// Search asks the index for the n nearest entries and keeps the first hit per
// programme title. Fewer than n results is not an error.
func (r *Retriever) Search(ctx context.Context, query string, n int) ([]models.ProgrammeMatch, error) {
	if n <= 0 {
		return nil, nil
	}
	hits, err := r.index.Query(ctx, query, n)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(hits))
	matches := make([]models.ProgrammeMatch, 0, len(hits))
	for _, hit := range hits {
		title := hit.Metadata.Title
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}

		matches = append(matches, models.ProgrammeMatch{
			Title:          title,
			URL:            hit.Metadata.URL,
			Category:       hit.Metadata.Category,
			Fee:            hit.Metadata.Fee,
			Format:         hit.Metadata.Format,
			Location:       hit.Metadata.Location,
			StartDate:      hit.Metadata.StartDate,
			RelevanceScore: vecmath.Round4(1 - hit.Distance),
			Snippet:        snippet(hit.Text, r.config.SnippetLength),
		})
	}

	r.logger.Debug("search finished",
		zap.String("query", logger.Truncate(query, 80)),
		zap.Int("hits", len(hits)),
		zap.Int("matches", len(matches)))
	return matches, nil
}

func snippet(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
