package models

// ProgrammeMetadata is stored next to every indexed document.
type ProgrammeMetadata struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Category  string `json:"category"`
	Fee       string `json:"fee"`
	Format    string `json:"format"`
	Location  string `json:"location"`
	StartDate string `json:"start_date"`
}

// IndexEntry is one row of the vector collection.
type IndexEntry struct {
	ID        string
	Embedding []float32
	Text      string
	Metadata  ProgrammeMetadata
}

// QueryResult is a collection hit. Distance is the cosine distance (1 - similarity).
type QueryResult struct {
	ID       string
	Text     string
	Metadata ProgrammeMetadata
	Distance float64
}
