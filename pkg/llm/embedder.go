package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var ErrEmbeddingCount = errors.New("embedding count does not match input count")

// EmbedderConfig represents the configuration for an embedding client.
type EmbedderConfig struct {
	Provider  string
	Model     string
	BaseURL   string // Ollama server URL or OpenAI-compatible endpoint
	APIKey    string
	Timeout   time.Duration // per call
	RateLimit float64       // calls per second, 0 disables limiting
}

// Embedder turns texts into vectors through a remote embedding model.
type Embedder struct {
	config  EmbedderConfig
	client  embeddings.EmbedderClient
	limiter *rate.Limiter
}

// NewEmbedderWithConfig creates the provider client named by config.Provider.
func NewEmbedderWithConfig(ctx context.Context, config EmbedderConfig) (*Embedder, error) {
	if config.Provider == "" {
		config.Provider = ProviderOllama
	}

	var client embeddings.EmbedderClient
	switch config.Provider {
	case ProviderOllama:
		if config.Model == "" {
			config.Model = "nomic-embed-text:latest"
		}
		if config.BaseURL == "" {
			config.BaseURL = "http://localhost:11434"
		}
		llm, err := ollama.New(ollama.WithModel(config.Model), ollama.WithServerURL(config.BaseURL))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ollama embedder: %w", err)
		}
		client = llm
	case ProviderOpenAI:
		if config.Model == "" {
			config.Model = "text-embedding-3-small"
		}
		opts := []openai.Option{openai.WithEmbeddingModel(config.Model), openai.WithToken(config.APIKey)}
		if config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai embedder: %w", err)
		}
		client = llm
	case ProviderGemini:
		if config.Model == "" {
			config.Model = "text-embedding-004"
		}
		gc, err := newGeminiClient(ctx, config.APIKey, config.Model)
		if err != nil {
			return nil, err
		}
		client = gc
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", config.Provider)
	}

	return NewEmbedderWithClient(config, client), nil
}

// NewEmbedderWithClient wraps an existing client, e.g. a test double.
func NewEmbedderWithClient(config EmbedderConfig, client embeddings.EmbedderClient) *Embedder {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	e := &Embedder{config: config, client: client}
	if config.RateLimit > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}
	return e
}

// Embed returns one vector per text, in input order. Every call is bounded by the
// configured timeout.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	vectors, err := e.client.CreateEmbedding(callCtx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d for %d texts", ErrEmbeddingCount, len(vectors), len(texts))
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dim {
			return nil, fmt.Errorf("embedding %d has dimension %d, want %d", i, len(v), dim)
		}
	}

	return vectors, nil
}

// EmbedQuery embeds a single text.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *Embedder) Model() string {
	return e.config.Model
}

// geminiBatchLimit is the most contents batchEmbedContents accepts per request.
const geminiBatchLimit = 100

type embedContentFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)

type geminiClient struct {
	embed embedContentFunc
	model string
}

func newGeminiClient(ctx context.Context, apiKey, model string) (*geminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &geminiClient{embed: client.Models.EmbedContent, model: model}, nil
}

// CreateEmbedding sends texts in chunks of at most geminiBatchLimit and joins the
// results in input order.
func (g *geminiClient) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += geminiBatchLimit {
		end := min(start+geminiBatchLimit, len(texts))
		chunk, err := g.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(chunk) != end-start {
			return nil, fmt.Errorf("%w: got %d for %d texts", ErrEmbeddingCount, len(chunk), end-start)
		}
		out = append(out, chunk...)
	}
	return out, nil
}

func (g *geminiClient) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: text}},
		}
	}

	resp, err := g.embed(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	out := make([][]float32, 0, len(resp.Embeddings))
	for _, emb := range resp.Embeddings {
		if emb == nil {
			out = append(out, nil)
			continue
		}
		out = append(out, emb.Values)
	}
	return out, nil
}
