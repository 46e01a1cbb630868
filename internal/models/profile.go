package models

// Profile is the structured candidate profile handed over by the profile extractor.
type Profile struct {
	Name            string   `json:"name"`
	CurrentRole     string   `json:"current_role"`
	YearsExperience *float64 `json:"years_experience"`
	Industry        string   `json:"industry"`
	Skills          []string `json:"skills"`
	Education       string   `json:"education"`
	CareerGoals     string   `json:"career_goals"`
	Seniority       string   `json:"seniority"`
}

// CategoryScore is one classifier output row.
type CategoryScore struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// ProgrammeMatch is a retrieved programme summary with its relevance.
type ProgrammeMatch struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Category       string  `json:"category"`
	Fee            string  `json:"fee"`
	Format         string  `json:"format"`
	Location       string  `json:"location"`
	StartDate      string  `json:"start_date"`
	RelevanceScore float64 `json:"relevance_score"`
	Snippet        string  `json:"snippet"`
}

// Recommendation is a programme picked by the synthesis step.
type Recommendation struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Category string `json:"category"`
	Fee      string `json:"fee"`
	Format   string `json:"format"`
	Location string `json:"location"`
	Reason   string `json:"reason"`
}
