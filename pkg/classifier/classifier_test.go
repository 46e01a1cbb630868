package classifier_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/progmatch/internal/models"
	"github.com/xhad/progmatch/internal/testutil"
	"github.com/xhad/progmatch/pkg/classifier"
)

func TestTaxonomy(t *testing.T) {
	require.Len(t, classifier.Taxonomy, 12)
	seen := map[string]bool{}
	for _, cat := range classifier.Taxonomy {
		assert.False(t, seen[cat.Name], cat.Name)
		seen[cat.Name] = true
		assert.Len(t, cat.Exemplars, 12, cat.Name)
	}
}

func TestClassifier_FinanceQuery(t *testing.T) {
	c := classifier.New(testutil.NewBagOfWords(1024), nil)

	scores, err := c.Classify(context.Background(), "financial modelling and treasury management", 1)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "Accounting & Finance", scores[0].Category)
	assert.Greater(t, scores[0].Score, 0.5)
}

func TestClassifier_Idempotent(t *testing.T) {
	emb := testutil.NewBagOfWords(1024)
	c := classifier.New(emb, nil)
	ctx := context.Background()

	assert.False(t, c.Ready())
	first, err := c.Classify(ctx, "supply chain and logistics", 3)
	require.NoError(t, err)
	assert.True(t, c.Ready())
	assert.Equal(t, 2, emb.Calls())

	second, err := c.Classify(ctx, "supply chain and logistics", 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 3, emb.Calls(), "centroids must not be rebuilt")
	assert.Equal(t, "Operations & Supply Chain Management", first[0].Category)
}

func TestClassifier_TopK(t *testing.T) {
	c := classifier.New(testutil.NewBagOfWords(1024), nil)
	ctx := context.Background()

	all, err := c.Classify(ctx, "leadership", 50)
	require.NoError(t, err)
	assert.Len(t, all, len(classifier.Taxonomy))
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].Score, all[i].Score)
	}

	none, err := c.Classify(ctx, "leadership", 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = c.Classify(ctx, "leadership", -1)
	assert.ErrorIs(t, err, classifier.ErrInvalidTopK)
}

func TestClassifier_BuildSurvivesCallerCancellation(t *testing.T) {
	emb := testutil.NewBagOfWords(1024)
	c := classifier.New(emb, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, c.Warm(ctx))
	assert.True(t, c.Ready())

	scores, err := c.Classify(context.Background(), "marketing analytics", 1)
	require.NoError(t, err)
	assert.Equal(t, "Marketing & Sales", scores[0].Category)
	assert.Equal(t, 2, emb.Calls())
}

func TestClassifier_ZeroVectorScoresZero(t *testing.T) {
	c := classifier.New(testutil.NewBagOfWords(1024), nil)

	scores, err := c.Classify(context.Background(), "", len(classifier.Taxonomy))
	require.NoError(t, err)
	require.Len(t, scores, len(classifier.Taxonomy))
	for i, s := range scores {
		assert.Zero(t, s.Score)
		assert.Equal(t, classifier.Taxonomy[i].Name, s.Category, "ties keep taxonomy order")
	}
}

func TestClassifier_FailedBuildRetriesNextCall(t *testing.T) {
	emb := testutil.NewBagOfWords(1024)
	emb.FailNext(1, errors.New("timeout"))
	c := classifier.New(emb, nil)
	ctx := context.Background()

	_, err := c.Classify(ctx, "marketing", 3)
	require.Error(t, err)
	assert.False(t, c.Ready())

	scores, err := c.Classify(ctx, "marketing analytics", 1)
	require.NoError(t, err)
	assert.Equal(t, "Marketing & Sales", scores[0].Category)
}

func TestClassifier_ConcurrentFirstUseBuildsOnce(t *testing.T) {
	emb := testutil.NewBagOfWords(1024)
	c := classifier.New(emb, nil)

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Classify(context.Background(), "strategic planning", 3)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, workers+1, emb.Calls())
}

func TestClassifier_CustomTaxonomy(t *testing.T) {
	c := classifier.NewWithTaxonomy(testutil.NewBagOfWords(64), []classifier.Category{
		{Name: "Cats", Exemplars: []string{"cat", "kitten"}},
		{Name: "Dogs", Exemplars: []string{"dog", "puppy"}},
	}, nil)

	scores, err := c.Classify(context.Background(), "puppy", 2)
	require.NoError(t, err)
	assert.Equal(t, "Dogs", scores[0].Category)
	assert.InDelta(t, 0.7071, scores[0].Score, 1e-9)
	assert.Zero(t, scores[1].Score)

	_, err = classifier.NewWithTaxonomy(testutil.NewBagOfWords(8), nil, nil).Classify(context.Background(), "x", 1)
	assert.Error(t, err)
}

func TestQueryFromProfile(t *testing.T) {
	profile := models.Profile{
		CareerGoals: "become a CFO",
		Skills:      []string{"budgeting", " ", "IFRS"},
		Industry:    "banking",
	}

	tests := []struct {
		name    string
		profile models.Profile
		goals   string
		want    string
	}{
		{"stated goals win", profile, "lead a treasury team", "lead a treasury team budgeting IFRS banking"},
		{"profile goals as fallback", profile, "", "become a CFO budgeting IFRS banking"},
		{"empty", models.Profile{}, "", ""},
		{"skills only", models.Profile{Skills: []string{"sql"}}, "", "sql"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.QueryFromProfile(tt.profile, tt.goals))
		})
	}
}
