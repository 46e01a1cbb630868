package llm

import (
	"context"

	"github.com/tmc/langchaingo/embeddings"
	"google.golang.org/genai"
)

// NewGeminiClient builds the Gemini embedding client around a stubbed EmbedContent call.
func NewGeminiClient(model string, embed func(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)) embeddings.EmbedderClient {
	return &geminiClient{embed: embed, model: model}
}
