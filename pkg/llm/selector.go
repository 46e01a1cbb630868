package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xhad/progmatch/internal/logger"
	"github.com/xhad/progmatch/internal/models"
	"go.uber.org/zap"
)

const picks = 3

const selectPrompt = `You are an admissions consultant for executive education.

Given the candidate's profile, their top interest areas and the list of candidate programmes, select the TOP 3 programmes for this person. For each, explain in 2-3 sentences WHY it fits their background and goals. Only choose programmes from the list.

Return ONLY valid JSON:
{
  "recommendations": [
    {
      "title": "Programme Name",
      "url": "https://...",
      "category": "Category",
      "fee": "",
      "format": "",
      "location": "",
      "reason": "Why this programme fits the candidate..."
    }
  ]
}`

// Selector asks a chat model to pick the final programmes from the retrieved ones.
type Selector struct {
	chat   *ChatEngine
	logger *zap.Logger
}

func NewSelector(chat *ChatEngine, log *zap.Logger) *Selector {
	return &Selector{chat: chat, logger: logger.OrNop(log)}
}

// Select returns at most three recommendations. If the reply cannot be parsed the
// first three programmes are returned with a generic reason.
func (s *Selector) Select(ctx context.Context, profile models.Profile, categories []models.CategoryScore, programmes []models.ProgrammeMatch) ([]models.Recommendation, error) {
	if len(programmes) == 0 {
		return []models.Recommendation{}, nil
	}

	reply, err := s.chat.Complete(ctx, selectPrompt, selectionMessage(profile, categories, programmes))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Recommendations []models.Recommendation `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(stripFences(reply)), &parsed); err != nil || len(parsed.Recommendations) == 0 {
		s.logger.Warn("selection reply unusable, falling back to retrieval order",
			zap.Error(err),
			zap.String("reply", logger.Truncate(reply, 200)))
		return fallback(programmes), nil
	}

	recs := parsed.Recommendations
	if len(recs) > picks {
		recs = recs[:picks]
	}
	return recs, nil
}

func selectionMessage(profile models.Profile, categories []models.CategoryScore, programmes []models.ProgrammeMatch) string {
	var b strings.Builder

	summary, _ := json.MarshalIndent(profile, "", "  ")
	b.WriteString("CANDIDATE PROFILE:\n")
	b.Write(summary)

	areas := make([]string, 0, len(categories))
	for _, c := range categories {
		areas = append(areas, fmt.Sprintf("%s (%.0f%%)", c.Category, c.Score*100))
	}
	b.WriteString("\n\nTOP INTEREST AREAS: ")
	b.WriteString(strings.Join(areas, ", "))

	fmt.Fprintf(&b, "\n\nCANDIDATE PROGRAMMES (%d total):", len(programmes))
	for _, p := range programmes {
		fmt.Fprintf(&b, "\n\n- %s (%s)\n  Fee: %s | Format: %s | Location: %s\n  URL: %s\n  %s",
			p.Title, p.Category, p.Fee, p.Format, p.Location, p.URL, truncateRunes(p.Snippet, 300))
	}
	return b.String()
}

func fallback(programmes []models.ProgrammeMatch) []models.Recommendation {
	n := min(picks, len(programmes))
	recs := make([]models.Recommendation, n)
	for i, p := range programmes[:n] {
		recs[i] = models.Recommendation{
			Title:    p.Title,
			URL:      p.URL,
			Category: p.Category,
			Fee:      p.Fee,
			Format:   p.Format,
			Location: p.Location,
			Reason:   fmt.Sprintf("Matched based on your interest in %s.", p.Category),
		}
	}
	return recs
}
