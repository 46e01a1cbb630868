package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/xhad/progmatch/internal/logger"
	"github.com/xhad/progmatch/internal/types"
	cfgPkg "github.com/xhad/progmatch/pkg/config"
	"github.com/xhad/progmatch/pkg/index"
	"github.com/xhad/progmatch/pkg/llm"
	"github.com/xhad/progmatch/pkg/matcher"
	"github.com/xhad/progmatch/pkg/store"
	"go.uber.org/zap"
)

const app = "progmatch"

// flags shared by every command; empty values leave the config file untouched
var flags struct {
	configPath string
	debug      bool
	json       bool
	dbURL      string
	collection string
	provider   string
	model      string
	ollamaURL  string
}

var rootCmd = &cobra.Command{
	Use:           app,
	Short:         "progmatch matches candidates to executive-education programmes",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to config file")
	pf.BoolVarP(&flags.debug, "debug", "d", false, "verbose/debug output")
	pf.BoolVarP(&flags.json, "json", "j", false, "json format for logging")
	pf.StringVar(&flags.dbURL, "db-url", "", "PostgreSQL connection string (in-memory index when empty)")
	pf.StringVar(&flags.collection, "collection", "", "Vector collection name")
	pf.StringVar(&flags.provider, "provider", "", "Embedding provider: ollama, openai or gemini")
	pf.StringVar(&flags.model, "model", "", "Embedding model")
	pf.StringVar(&flags.ollamaURL, "ollama-url", "", "Ollama server URL")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func loadConfig() (*cfgPkg.Config, error) {
	cfg, err := cfgPkg.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}

	// Override config with command line flags if provided
	if flags.dbURL != "" {
		cfg.Database.URL = flags.dbURL
	}
	if flags.collection != "" {
		cfg.Database.Collection = flags.collection
	}
	if flags.provider != "" {
		cfg.Embedding.Provider = flags.provider
	}
	if flags.model != "" {
		cfg.Embedding.Model = flags.model
	}
	if flags.ollamaURL != "" {
		cfg.Embedding.BaseURL = flags.ollamaURL
		cfg.LLM.BaseURL = flags.ollamaURL
	}
	cfg.Log.Debug = cfg.Log.Debug || flags.debug
	cfg.Log.JSON = cfg.Log.JSON || flags.json

	if errs := cfg.Validate(); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return nil, fmt.Errorf("invalid config: %w", errors.Join(joined...))
	}
	return cfg, nil
}

// env is what every command needs: config, logger, and a matcher over the
// configured collection.
type env struct {
	cfg        *cfgPkg.Config
	log        *zap.Logger
	embedder   *llm.Embedder
	collection types.Collection
	matcher    *matcher.Matcher
}

type envOptions struct {
	synthesis bool
	onBatch   func(done, total int)
}

func newEnv(ctx context.Context, opts envOptions) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	embedder, err := llm.NewEmbedderWithConfig(ctx, llm.EmbedderConfig{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		BaseURL:   cfg.Embedding.BaseURL,
		APIKey:    cfg.Embedding.APIKey,
		Timeout:   cfg.Embedding.Timeout,
		RateLimit: cfg.Embedding.RateLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	var collection types.Collection
	if cfg.Database.URL != "" {
		vs, err := store.NewWithConfig(ctx, store.VectorStoreConfig{
			ConnString: cfg.Database.URL,
			Collection: cfg.Database.Collection,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vector store: %w", err)
		}
		collection = vs
	} else {
		log.Warn("no database configured, using an in-memory index for this process only")
		collection = store.NewMemory()
	}

	mopts := matcher.Options{
		Index: index.Config{
			BatchSize:      cfg.Build.BatchSize,
			MaxAttempts:    cfg.Build.MaxAttempts,
			InitialBackoff: cfg.Build.InitialBackoff,
			Dimension:      cfg.Database.VectorDim,
			OnBatch:        opts.onBatch,
		},
		TopK:          cfg.Classifier.TopK,
		TopN:          cfg.Retrieval.TopN,
		SnippetLength: cfg.Retrieval.SnippetLength,
		Logger:        log,
	}
	if opts.synthesis {
		chat, err := llm.NewWithConfig(llm.ChatConfig{
			Provider:    cfg.LLM.Provider,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
		})
		if err != nil {
			collection.Close()
			return nil, fmt.Errorf("failed to initialize chat engine: %w", err)
		}
		mopts.Extractor = llm.NewProfileExtractor(chat, log.Named("profile"))
		mopts.Selector = llm.NewSelector(chat, log.Named("selector"))
	}

	log.Debug("environment ready",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", embedder.Model()),
		zap.String("collection", cfg.Database.Collection),
		zap.Bool("persistent", cfg.Database.URL != ""))

	return &env{
		cfg:        cfg,
		log:        log,
		embedder:   embedder,
		collection: collection,
		matcher:    matcher.New(embedder, collection, mopts),
	}, nil
}

func (e *env) Close() {
	e.collection.Close()
	_ = e.log.Sync()
}

// attach serves the persisted collection, failing with a hint when there is none.
func (e *env) attach(ctx context.Context) error {
	_, err := e.matcher.Attach(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrCollectionMissing), errors.Is(err, index.ErrEmpty):
		return fmt.Errorf("%w: run `%s build` first", index.ErrNotReady, app)
	default:
		return err
	}
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// waitReady spins until a background build leaves the building state.
func waitReady(ctx context.Context, m *matcher.Matcher, done <-chan bool) error {
	spinner := getSpinner("Building index...")
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = spinner.Finish()
			return ctx.Err()
		case <-done:
			_ = spinner.Finish()
			fmt.Print("\r")
			if st := m.Status(); !st.Ready() {
				return fmt.Errorf("index build failed: %s", st.Error)
			}
			return nil
		case <-ticker.C:
			_ = spinner.Add(1)
		}
	}
}
