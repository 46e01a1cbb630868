package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/xhad/progmatch/internal/logger"
	"github.com/xhad/progmatch/internal/models"
	"go.uber.org/zap"
)

const cvLimit = 6000 // runes

const profilePrompt = `You are an expert HR analyst. Given a candidate's CV text and their stated career goals, extract a structured profile.

Return ONLY valid JSON with these fields:
{
  "name": "candidate name",
  "current_role": "current job title",
  "years_experience": 0,
  "industry": "primary industry",
  "skills": ["skill1", "skill2", "skill3"],
  "education": "highest education level and field",
  "career_goals": "summarized career aspirations",
  "seniority": "junior|mid|senior|executive"
}

If a field cannot be determined, use null. For skills, list the top 5-8 most relevant professional skills.`

// ProfileExtractor asks a chat model for a structured candidate profile.
type ProfileExtractor struct {
	chat   *ChatEngine
	logger *zap.Logger
}

func NewProfileExtractor(chat *ChatEngine, log *zap.Logger) *ProfileExtractor {
	return &ProfileExtractor{chat: chat, logger: logger.OrNop(log)}
}

// Extract never fails on a bad reply: an unparsable answer yields an empty profile
// carrying the stated goals. Only transport errors are returned.
func (p *ProfileExtractor) Extract(ctx context.Context, cvText, goals string) (models.Profile, error) {
	msg := "CV:\n" + truncateRunes(cvText, cvLimit)
	if goals != "" {
		msg += "\n\nStated career goals:\n" + goals
	}

	reply, err := p.chat.Complete(ctx, profilePrompt, msg)
	if err != nil {
		return models.Profile{}, err
	}

	var profile models.Profile
	if err := json.Unmarshal([]byte(stripFences(reply)), &profile); err != nil {
		p.logger.Warn("profile reply is not valid JSON",
			zap.Error(err),
			zap.String("reply", logger.Truncate(reply, 200)))
		profile = models.Profile{Skills: []string{}}
	}
	if strings.TrimSpace(profile.CareerGoals) == "" && goals != "" {
		profile.CareerGoals = goals
	}
	if profile.Skills == nil {
		profile.Skills = []string{}
	}
	return profile, nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
