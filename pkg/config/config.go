package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type EmbeddingConfig struct {
	Provider  string        `yaml:"provider"`
	BaseURL   string        `yaml:"base_url"`
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"api_key"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"`
}

type DatabaseConfig struct {
	URL        string `yaml:"url"`
	Collection string `yaml:"collection"`
	VectorDim  int    `yaml:"vector_dim"`
}

type BuildConfig struct {
	ProgrammesDir  string        `yaml:"programmes_dir"`
	BatchSize      int           `yaml:"batch_size"`
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
}

type ClassifierConfig struct {
	TopK int `yaml:"top_k"`
}

type RetrievalConfig struct {
	TopN          int `yaml:"top_n"`
	SnippetLength int `yaml:"snippet_length"`
}

type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

type LogConfig struct {
	JSON  bool `yaml:"json"`
	Debug bool `yaml:"debug"`
}

type Config struct {
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Database   DatabaseConfig   `yaml:"database"`
	Build      BuildConfig      `yaml:"build"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	LLM        LLMConfig        `yaml:"llm"`
	Log        LogConfig        `yaml:"log"`
}

func LoadConfig(path string) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/progmatch/config.yaml"),
			"/etc/progmatch/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Embedding.Provider == "" {
		config.Embedding.Provider = "ollama"
	}
	if config.Embedding.BaseURL == "" && config.Embedding.Provider == "ollama" {
		config.Embedding.BaseURL = "http://localhost:11434"
	}
	if config.Embedding.Model == "" {
		switch config.Embedding.Provider {
		case "openai":
			config.Embedding.Model = "text-embedding-3-small"
		case "gemini":
			config.Embedding.Model = "text-embedding-004"
		default:
			config.Embedding.Model = "nomic-embed-text:latest"
		}
	}
	if config.Embedding.Timeout == 0 {
		config.Embedding.Timeout = 60 * time.Second
	}

	if config.Database.Collection == "" {
		config.Database.Collection = "programmes"
	}

	if config.Build.ProgrammesDir == "" {
		config.Build.ProgrammesDir = "programme_pages"
	}
	if config.Build.BatchSize == 0 {
		config.Build.BatchSize = 20
	}
	if config.Build.MaxAttempts == 0 {
		config.Build.MaxAttempts = 3
	}
	if config.Build.InitialBackoff == 0 {
		config.Build.InitialBackoff = 2 * time.Second
	}

	if config.Classifier.TopK == 0 {
		config.Classifier.TopK = 3
	}

	if config.Retrieval.TopN == 0 {
		config.Retrieval.TopN = 10
	}
	if config.Retrieval.SnippetLength == 0 {
		config.Retrieval.SnippetLength = 400
	}

	if config.LLM.Provider == "" {
		config.LLM.Provider = "ollama"
	}
	if config.LLM.Model == "" {
		if config.LLM.Provider == "openai" {
			config.LLM.Model = "gpt-4o-mini"
		} else {
			config.LLM.Model = "mistral"
		}
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 1500
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.7
	}
	if config.LLM.BaseURL == "" && config.LLM.Provider == "ollama" {
		config.LLM.BaseURL = "http://localhost:11434"
	}
}

func mergeWithEnv(config *Config) {
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		if config.Embedding.Provider == "" || config.Embedding.Provider == "ollama" {
			config.Embedding.BaseURL = baseURL
		}
		if config.LLM.Provider == "" || config.LLM.Provider == "ollama" {
			config.LLM.BaseURL = baseURL
		}
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if config.Embedding.Provider == "openai" && config.Embedding.APIKey == "" {
			config.Embedding.APIKey = key
		}
		if config.LLM.Provider == "openai" && config.LLM.APIKey == "" {
			config.LLM.APIKey = key
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && config.Embedding.Provider == "gemini" && config.Embedding.APIKey == "" {
		config.Embedding.APIKey = key
	}
}
