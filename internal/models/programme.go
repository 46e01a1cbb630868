package models

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// KeyFacts keeps the scraped fact order (fee, format, location, ...).
type KeyFacts = orderedmap.OrderedMap[string, string]

// Section is a headed block of programme content.
type Section struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// ProgrammeRecord is the raw scraped programme page.
type ProgrammeRecord struct {
	Title            string    `json:"title"`
	Subtitle         string    `json:"subtitle"`
	KeyFacts         *KeyFacts `json:"key_facts"`
	Description      string    `json:"description"`
	Sections         []Section `json:"sections"`
	FoldableSections []string  `json:"foldable_sections"`
	Testimonials     []string  `json:"testimonials"`
	URL              string    `json:"url"`
}

// NewKeyFacts builds an ordered fact mapping from name/value pairs.
// A trailing name without a value is ignored.
func NewKeyFacts(pairs ...string) *KeyFacts {
	kf := orderedmap.New[string, string]()
	for i := 0; i+1 < len(pairs); i += 2 {
		kf.Set(pairs[i], pairs[i+1])
	}
	return kf
}

// Fact returns the value stored under name, or "".
func (r ProgrammeRecord) Fact(name string) string {
	if r.KeyFacts == nil {
		return ""
	}
	v, _ := r.KeyFacts.Get(name)
	return v
}

// EachFact calls fn for every key fact in source order.
func (r ProgrammeRecord) EachFact(fn func(name, value string)) {
	if r.KeyFacts == nil {
		return
	}
	for pair := r.KeyFacts.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// FactCount is the number of key facts.
func (r ProgrammeRecord) FactCount() int {
	if r.KeyFacts == nil {
		return 0
	}
	return r.KeyFacts.Len()
}

// SkipReason says why a programme file did not become an index entry.
type SkipReason string

const (
	SkipNone          SkipReason = ""
	SkipNotObject     SkipReason = "not_object"
	SkipErrorMarker   SkipReason = "error_marker"
	SkipMalformed     SkipReason = "malformed"
	SkipEmptyDocument SkipReason = "empty_document"
)

// IngestResult is either a loaded record or a skip with its reason.
type IngestResult struct {
	Path   string
	Record *ProgrammeRecord
	Skip   SkipReason
	Detail string
}

// Skipped reports whether the result carries no usable record.
func (r IngestResult) Skipped() bool {
	return r.Skip != SkipNone || r.Record == nil
}
