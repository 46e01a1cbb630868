package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var providers = map[string]bool{"ollama": true, "openai": true, "gemini": true}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate embedding config
	if !providers[c.Embedding.Provider] {
		errors = append(errors, ValidationError{
			Field:   "embedding.provider",
			Message: fmt.Sprintf("unsupported provider %q", c.Embedding.Provider),
		})
	}
	if c.Embedding.Provider != "ollama" && c.Embedding.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "embedding.api_key",
			Message: "api_key is required for " + c.Embedding.Provider,
		})
	}
	if c.Embedding.BaseURL != "" && !validURL(c.Embedding.BaseURL) {
		errors = append(errors, ValidationError{
			Field:   "embedding.base_url",
			Message: "invalid base URL",
		})
	}
	if c.Embedding.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "embedding.timeout",
			Message: "timeout must be positive",
		})
	}
	if c.Embedding.RateLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "embedding.rate_limit",
			Message: "rate_limit cannot be negative",
		})
	}

	// Validate Database config
	if c.Database.URL != "" {
		if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}
	if c.Database.VectorDim < 0 {
		errors = append(errors, ValidationError{
			Field:   "database.vector_dim",
			Message: "vector_dim cannot be negative",
		})
	}

	// Validate build config
	if c.Build.BatchSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "build.batch_size",
			Message: "batch_size must be positive",
		})
	}
	if c.Build.MaxAttempts < 1 {
		errors = append(errors, ValidationError{
			Field:   "build.max_attempts",
			Message: "max_attempts must be positive",
		})
	}
	if c.Build.InitialBackoff < 0 {
		errors = append(errors, ValidationError{
			Field:   "build.initial_backoff",
			Message: "initial_backoff cannot be negative",
		})
	}

	if c.Classifier.TopK < 1 {
		errors = append(errors, ValidationError{
			Field:   "classifier.top_k",
			Message: "top_k must be positive",
		})
	}
	if c.Retrieval.TopN < 1 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.top_n",
			Message: "top_n must be positive",
		})
	}
	if c.Retrieval.SnippetLength < 1 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.snippet_length",
			Message: "snippet_length must be positive",
		})
	}

	// Validate LLM config
	if c.LLM.Provider != "ollama" && c.LLM.Provider != "openai" {
		errors = append(errors, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unsupported provider %q", c.LLM.Provider),
		})
	}
	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 4096 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 4096",
		})
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 1",
		})
	}
	if c.LLM.BaseURL != "" && !validURL(c.LLM.BaseURL) {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "invalid base URL",
		})
	}

	return errors
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
