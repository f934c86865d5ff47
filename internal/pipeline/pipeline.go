package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/forPelevin/podask/internal/config"
	"github.com/forPelevin/podask/internal/domain/chunking"
	"github.com/forPelevin/podask/internal/episodes"
	"github.com/forPelevin/podask/internal/logging"
	"github.com/forPelevin/podask/internal/ports"
	"github.com/forPelevin/podask/internal/ports/adapters/frontmatter"
	"github.com/forPelevin/podask/internal/ports/adapters/openrouter"
	"github.com/forPelevin/podask/internal/ports/adapters/textindex"
	"github.com/forPelevin/podask/internal/usecase"
)

type Config struct {
	EpisodesDir string
	Window      chunking.WindowConfig
	Workers     int

	TopK          int
	MinGapSeconds int
	QueryTimeout  time.Duration

	LLMProvider     openrouter.Provider
	LLMAPIKey       string
	LLMModel        string
	LLMBaseURL      string
	LLMAllowedHosts []string
	LLMTimeout      time.Duration

	Logger *slog.Logger
}

// FromConfig maps the file/env configuration onto startup parameters.
func FromConfig(c *config.Config, log *slog.Logger) Config {
	return Config{
		EpisodesDir: c.Paths.EpisodesDir,
		Window: chunking.WindowConfig{
			WindowSeconds: c.Retrieval.WindowSeconds,
			StepSeconds:   c.Retrieval.StepSeconds,
		},
		Workers:         c.Retrieval.Workers,
		TopK:            c.Retrieval.TopK,
		MinGapSeconds:   c.Retrieval.MinGapSeconds,
		QueryTimeout:    c.QueryTimeout(),
		LLMProvider:     openrouter.Provider(c.LLM.Provider),
		LLMAPIKey:       c.LLM.APIKey,
		LLMModel:        c.LLM.Model,
		LLMBaseURL:      c.LLM.BaseURL,
		LLMAllowedHosts: c.LLM.AllowedHosts,
		LLMTimeout:      c.LLMTimeout(),
		Logger:          log,
	}
}

func (c Config) Validate() error {
	if c.EpisodesDir == "" {
		return errors.New("episodes dir is empty")
	}
	if _, err := os.Stat(c.EpisodesDir); err != nil {
		return fmt.Errorf("stat episodes dir: %w", err)
	}
	if c.TopK <= 0 {
		return errors.New("top-k must be > 0")
	}
	if c.MinGapSeconds < 0 {
		return errors.New("min gap must be >= 0")
	}
	p, err := openrouter.ParseProvider(string(c.LLMProvider))
	if err != nil {
		return err
	}
	if err := openrouter.CheckBaseURL(p, c.LLMBaseURL, c.LLMAllowedHosts); err != nil {
		return fmt.Errorf("llm base url: %w", err)
	}
	return nil
}

// llmEndpoint fills the base URL and model the provider implies when unset.
func (c Config) llmEndpoint() (baseURL, model string) {
	p, _ := openrouter.ParseProvider(string(c.LLMProvider))
	baseURL, model = c.LLMBaseURL, c.LLMModel
	if baseURL == "" {
		baseURL = p.DefaultBaseURL()
	}
	if model == "" {
		model = p.DefaultModel()
	}
	return baseURL, model
}

// App is everything a command needs after startup.
type App struct {
	Usecase  usecase.Usecase
	Episodes []episodes.EpisodeInfo
	Failed   []episodes.Failure
	Excerpts int
	Model    string
}

// Start loads the corpus, builds the index once and wires the answerer.
// Configuration and empty-corpus failures abort; per-document failures are
// reported in App.Failed.
func Start(ctx context.Context, cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}
	started := time.Now()

	// adapters
	var src ports.DocumentSource = frontmatter.New(cfg.EpisodesDir)
	var opts []openrouter.Option
	if cfg.LLMTimeout > 0 {
		opts = append(opts, openrouter.WithHTTPClient(&http.Client{Timeout: cfg.LLMTimeout}))
	}
	baseURL, model := cfg.llmEndpoint()
	llm := openrouter.New(cfg.LLMAPIKey, model, baseURL, opts...)

	docs, err := src.Documents(ctx)
	if err != nil {
		return nil, err
	}
	res, err := episodes.Load(ctx, docs, episodes.Options{
		Window:  cfg.Window,
		Workers: cfg.Workers,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	idx := textindex.Build(res.Excerpts)
	log.Info("index ready",
		"excerpts", idx.Len(),
		"documents", res.Documents,
		"failed", len(res.Failed),
		"elapsed", time.Since(started).Round(time.Millisecond),
	)

	uc := usecase.New(usecase.Deps{
		Index:  idx,
		LLM:    llm,
		Logger: log,
	}, usecase.Options{
		TopK:          cfg.TopK,
		MinGapSeconds: cfg.MinGapSeconds,
		QueryTimeout:  cfg.QueryTimeout,
	})

	return &App{
		Usecase:  uc,
		Episodes: episodes.Catalog(res.Excerpts),
		Failed:   res.Failed,
		Excerpts: idx.Len(),
		Model:    llm.Model(),
	}, nil
}

// ensure adapters implement ports
var _ ports.DocumentSource = (*frontmatter.Source)(nil)
var _ ports.Index = (*textindex.Index)(nil)
var _ ports.Answerer = (*openrouter.Adapter)(nil)
