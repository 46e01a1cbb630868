package processor_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/progmatch/internal/models"
	"github.com/xhad/progmatch/pkg/processor"
)

func sampleRecord() models.ProgrammeRecord {
	return models.ProgrammeRecord{
		Title:       "  Advanced Financial Management  ",
		Subtitle:    "Master the numbers behind strategy",
		KeyFacts:    models.NewKeyFacts("format", "6 days", "fee", "€6,900", "location", "Ghent"),
		Description: "A programme for finance professionals.",
		Sections: []models.Section{
			{Heading: "What you'll learn", Content: "Valuation, treasury management and capital budgeting."},
			{Heading: "Too short", Content: "tiny"},
			{Heading: "Repeat", Content: "Valuation, treasury management and capital budgeting."},
		},
		FoldableSections: []string{
			"Who should attend: finance managers with five years of experience.",
			"Valuation, treasury management and capital budgeting.",
		},
		Testimonials: []string{"A truly eye-opening week with great faculty.", "short"},
		URL:          "https://www.vlerick.com/en/programmes/programmes-in-accounting-finance/advanced-financial-management/",
	}
}

func TestProcessor_BuildDocument(t *testing.T) {
	p := processor.New()

	doc := p.BuildDocument(sampleRecord())

	want := strings.Join([]string{
		"Programme: Advanced Financial Management",
		"Subtitle: Master the numbers behind strategy",
		"Key Facts: format: 6 days | fee: €6,900 | location: Ghent",
		"Description: A programme for finance professionals.",
		"What you'll learn: Valuation, treasury management and capital budgeting.",
		"Who should attend: finance managers with five years of experience.",
		"Testimonial: A truly eye-opening week with great faculty.",
	}, "\n\n")
	assert.Equal(t, want, doc)
}

func TestProcessor_BuildDocumentDeterministic(t *testing.T) {
	p := processor.New()
	assert.Equal(t, p.BuildDocument(sampleRecord()), p.BuildDocument(sampleRecord()))
}

func TestProcessor_Truncation(t *testing.T) {
	p := processor.New()
	long := strings.Repeat("é", 2500)
	longTestimonial := strings.Repeat("x", 800)

	doc := p.BuildDocument(models.ProgrammeRecord{
		Sections:         []models.Section{{Heading: "Modules", Content: long}},
		FoldableSections: []string{strings.Repeat("f", 3000)},
		Testimonials:     []string{longTestimonial},
	})
	parts := strings.Split(doc, "\n\n")
	require.Len(t, parts, 3)

	assert.Equal(t, len([]rune("Modules: "))+2000, len([]rune(parts[0])))
	assert.Equal(t, 2000, len([]rune(parts[1])))
	assert.Equal(t, len("Testimonial: ")+500, len(parts[2]))
}

func TestProcessor_DedupUsesUntruncatedContent(t *testing.T) {
	p := processor.New()
	long := strings.Repeat("a", 2100)

	doc := p.BuildDocument(models.ProgrammeRecord{
		Sections:         []models.Section{{Heading: "A", Content: long}, {Heading: "B", Content: long[:2000]}},
		FoldableSections: []string{long},
	})
	parts := strings.Split(doc, "\n\n")

	// The truncated form of the first section is a different string, so B stays.
	require.Len(t, parts, 2)
	assert.True(t, strings.HasPrefix(parts[0], "A: "))
	assert.True(t, strings.HasPrefix(parts[1], "B: "))
}

func TestProcessor_TestimonialsNotDeduplicated(t *testing.T) {
	p := processor.New()
	quote := "The best programme I have ever followed."

	doc := p.BuildDocument(models.ProgrammeRecord{Testimonials: []string{quote, quote}})
	assert.Equal(t, 2, strings.Count(doc, quote))
}

func TestProcessor_EmptyRecord(t *testing.T) {
	p := processor.New()
	assert.Empty(t, p.BuildDocument(models.ProgrammeRecord{
		Title:    "   ",
		Sections: []models.Section{{Heading: "x", Content: "short"}},
	}))
}

func TestProcessor_BuildMetadata(t *testing.T) {
	p := processor.New()

	meta := p.BuildMetadata(sampleRecord())
	assert.Equal(t, models.ProgrammeMetadata{
		Title:    "Advanced Financial Management",
		URL:      "https://www.vlerick.com/en/programmes/programmes-in-accounting-finance/advanced-financial-management/",
		Category: "Accounting Finance",
		Fee:      "€6,900",
		Format:   "6 days",
		Location: "Ghent",
	}, meta)
}

func TestCategoryFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://x/programmes/programmes-in-digital-transformation-and-ai/ai-for-leaders/", "Digital Transformation And Ai"},
		{"https://x/programmes/programmes-in-strategy", "Strategy"},
		{"https://x/programmes/programmes-in-people-management-LEADERSHIP/p", "People Management Leadership"},
		{"https://x/en/about-us/", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, processor.CategoryFromURL(tt.url))
		})
	}
}

func TestProcessor_Process(t *testing.T) {
	p := processor.New()
	empty := models.ProgrammeRecord{Title: ""}
	results := []models.IngestResult{
		{Path: "a.json", Record: ptr(sampleRecord())},
		{Path: "b.json", Skip: models.SkipErrorMarker},
		{Path: "c.json", Record: &empty},
		{Path: "d.json", Record: &models.ProgrammeRecord{Title: "Strategy Bootcamp"}},
	}

	entries, skipped := p.Process(results)

	require.Len(t, entries, 2)
	assert.Equal(t, "prog_0", entries[0].ID)
	assert.Equal(t, "prog_2", entries[1].ID)
	assert.Equal(t, "Programme: Strategy Bootcamp", entries[1].Text)
	assert.Equal(t, "Strategy Bootcamp", entries[1].Metadata.Title)

	require.Len(t, skipped, 2)
	assert.Equal(t, models.SkipErrorMarker, skipped[0].Skip)
	assert.Equal(t, models.SkipEmptyDocument, skipped[1].Skip)
	assert.Equal(t, "c.json", skipped[1].Path)
}

func TestFromRecords(t *testing.T) {
	results := processor.FromRecords([]models.ProgrammeRecord{{Title: "A"}, {Title: "B"}})
	require.Len(t, results, 2)
	assert.Equal(t, "B", results[1].Record.Title)
	assert.False(t, results[0].Skipped())
}

func ptr[T any](v T) *T { return &v }
