package retriever_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/progmatch/internal/models"
	"github.com/xhad/progmatch/pkg/index"
	"github.com/xhad/progmatch/pkg/retriever"
)

type fakeIndex struct {
	hits  []models.QueryResult
	err   error
	gotK  int
	query string
}

func (f *fakeIndex) Query(_ context.Context, text string, k int) ([]models.QueryResult, error) {
	f.query, f.gotK = text, k
	if f.err != nil {
		return nil, f.err
	}
	if k < len(f.hits) {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

func hit(id, title string, distance float64) models.QueryResult {
	return models.QueryResult{
		ID:       id,
		Text:     "Programme: " + title,
		Distance: distance,
		Metadata: models.ProgrammeMetadata{
			Title:     title,
			URL:       "https://example.org/" + id,
			Category:  "Strategy",
			Fee:       "€4,950",
			Format:    "4 days",
			Location:  "Ghent",
			StartDate: "12 March",
		},
	}
}

func TestRetriever_Search(t *testing.T) {
	idx := &fakeIndex{hits: []models.QueryResult{
		hit("prog_3", "Strategic Thinking", 0.123456),
		hit("prog_7", "Strategic Thinking", 0.2),
		hit("prog_1", "Negotiation", 0.4),
	}}
	r := retriever.New(idx, retriever.Config{}, nil)

	matches, err := r.Search(context.Background(), "strategy", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.gotK)
	assert.Equal(t, "strategy", idx.query)

	require.Len(t, matches, 2)
	assert.Equal(t, "Strategic Thinking", matches[0].Title)
	assert.Equal(t, "https://example.org/prog_3", matches[0].URL, "first hit by rank wins")
	assert.Equal(t, 0.8765, matches[0].RelevanceScore)
	assert.Equal(t, "Negotiation", matches[1].Title)
	assert.Equal(t, 0.6, matches[1].RelevanceScore)

	m := matches[0]
	assert.Equal(t, "Strategy", m.Category)
	assert.Equal(t, "€4,950", m.Fee)
	assert.Equal(t, "4 days", m.Format)
	assert.Equal(t, "Ghent", m.Location)
	assert.Equal(t, "12 March", m.StartDate)
	assert.Equal(t, "Programme: Strategic Thinking", m.Snippet)
}

func TestRetriever_SnippetBound(t *testing.T) {
	long := hit("prog_0", "Long", 0)
	long.Text = strings.Repeat("é", 1000)
	r := retriever.New(&fakeIndex{hits: []models.QueryResult{long}}, retriever.Config{}, nil)

	matches, err := r.Search(context.Background(), "x", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, retriever.DefaultSnippetLength, len([]rune(matches[0].Snippet)))

	r = retriever.New(&fakeIndex{hits: []models.QueryResult{long}}, retriever.Config{SnippetLength: 10}, nil)
	matches, err = r.Search(context.Background(), "x", 1)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 10), matches[0].Snippet)
}

func TestRetriever_NotReady(t *testing.T) {
	r := retriever.New(&fakeIndex{err: index.ErrNotReady}, retriever.Config{}, nil)
	_, err := r.Search(context.Background(), "x", 5)
	assert.ErrorIs(t, err, index.ErrNotReady)
}

func TestRetriever_EmptyResults(t *testing.T) {
	r := retriever.New(&fakeIndex{}, retriever.Config{}, nil)

	matches, err := r.Search(context.Background(), "x", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = r.Search(context.Background(), "x", 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
