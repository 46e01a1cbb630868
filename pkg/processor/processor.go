package processor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/xhad/progmatch/internal/models"
)

const categoryMarker = "/programmes/programmes-in-"

type ProcessorConfig struct {
	SectionLimit     int // runes kept per section or foldable section
	TestimonialLimit int // runes kept per testimonial
	MinContentLength int // content must be longer than this to be emitted
	IDPrefix         string
}

type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.SectionLimit == 0 {
		config.SectionLimit = 2000
	}
	if config.TestimonialLimit == 0 {
		config.TestimonialLimit = 500
	}
	if config.MinContentLength == 0 {
		config.MinContentLength = 20
	}
	if config.IDPrefix == "" {
		config.IDPrefix = "prog_"
	}

	return Processor{
		config: config,
	}
}

func New() Processor {
	return NewWithConfig(ProcessorConfig{})
}

// seenSet tracks the trimmed paragraph texts already emitted for one document.
type seenSet map[string]struct{}

func (s seenSet) add(text string) bool {
	if _, ok := s[text]; ok {
		return false
	}
	s[text] = struct{}{}
	return true
}

// BuildDocument flattens a programme record into the text that gets embedded.
// An empty result means the record has nothing worth embedding.
func (p Processor) BuildDocument(rec models.ProgrammeRecord) string {
	var parts []string

	if title := strings.TrimSpace(rec.Title); title != "" {
		parts = append(parts, "Programme: "+title)
	}
	if subtitle := strings.TrimSpace(rec.Subtitle); subtitle != "" {
		parts = append(parts, "Subtitle: "+subtitle)
	}
	if rec.FactCount() > 0 {
		facts := make([]string, 0, rec.FactCount())
		rec.EachFact(func(name, value string) {
			facts = append(facts, fmt.Sprintf("%s: %s", name, value))
		})
		parts = append(parts, "Key Facts: "+strings.Join(facts, " | "))
	}
	if description := strings.TrimSpace(rec.Description); description != "" {
		parts = append(parts, "Description: "+description)
	}

	seen := make(seenSet)
	for _, section := range rec.Sections {
		heading := strings.TrimSpace(section.Heading)
		content := strings.TrimSpace(section.Content)
		if !p.meaningful(content) || !seen.add(content) {
			continue
		}
		parts = append(parts, heading+": "+truncate(content, p.config.SectionLimit))
	}

	for _, fold := range rec.FoldableSections {
		fold = strings.TrimSpace(fold)
		if !p.meaningful(fold) || !seen.add(fold) {
			continue
		}
		parts = append(parts, truncate(fold, p.config.SectionLimit))
	}

	// Testimonials are not deduplicated.
	for _, testimonial := range rec.Testimonials {
		testimonial = strings.TrimSpace(testimonial)
		if !p.meaningful(testimonial) {
			continue
		}
		parts = append(parts, "Testimonial: "+truncate(testimonial, p.config.TestimonialLimit))
	}

	return strings.Join(parts, "\n\n")
}

// BuildMetadata extracts the searchable programme metadata.
func (p Processor) BuildMetadata(rec models.ProgrammeRecord) models.ProgrammeMetadata {
	return models.ProgrammeMetadata{
		Title:     strings.TrimSpace(rec.Title),
		URL:       rec.URL,
		Category:  CategoryFromURL(rec.URL),
		Fee:       rec.Fact("fee"),
		Format:    rec.Fact("format"),
		Location:  rec.Fact("location"),
		StartDate: rec.Fact("start_date"),
	}
}

// Process turns ingestion results into index entries. Ids follow the enumeration
// order of the loaded records. The second return value lists every skipped result,
// including records whose document came out empty.
func (p Processor) Process(results []models.IngestResult) ([]models.IndexEntry, []models.IngestResult) {
	var entries []models.IndexEntry
	var skipped []models.IngestResult

	i := 0
	for _, res := range results {
		if res.Skipped() {
			skipped = append(skipped, res)
			continue
		}
		id := fmt.Sprintf("%s%d", p.config.IDPrefix, i)
		i++

		doc := p.BuildDocument(*res.Record)
		if strings.TrimSpace(doc) == "" {
			res.Skip = models.SkipEmptyDocument
			skipped = append(skipped, res)
			continue
		}
		entries = append(entries, models.IndexEntry{
			ID:       id,
			Text:     doc,
			Metadata: p.BuildMetadata(*res.Record),
		})
	}

	return entries, skipped
}

// FromRecords wraps already decoded records as ingestion results.
func FromRecords(records []models.ProgrammeRecord) []models.IngestResult {
	results := make([]models.IngestResult, len(records))
	for i := range records {
		results[i] = models.IngestResult{Record: &records[i]}
	}
	return results
}

// CategoryFromURL derives the category from the ".../programmes/programmes-in-<slug>/..."
// path segment. URLs without the marker have no category.
func CategoryFromURL(url string) string {
	idx := strings.Index(url, categoryMarker)
	if idx < 0 {
		return ""
	}
	slug := url[idx+len(categoryMarker):]
	if end := strings.Index(slug, "/"); end >= 0 {
		slug = slug[:end]
	}
	return titleCase(strings.ReplaceAll(slug, "-", " "))
}

func (p Processor) meaningful(s string) bool {
	return s != "" && len([]rune(s)) > p.config.MinContentLength
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// titleCase upper-cases every letter that follows a non-letter and lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
