package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/forPelevin/podask/internal/ports/adapters/openrouter"
)

// DefaultPath is read from the working directory when no --config is given.
const DefaultPath = "podask.toml"

type Config struct {
	Paths     Paths     `toml:"paths"`
	Retrieval Retrieval `toml:"retrieval"`
	LLM       LLM       `toml:"llm"`
	Logging   Logging   `toml:"logging"`

	from origin
}

// origin names the setting each LLM value came from, for error messages.
type origin struct {
	apiKey       string
	baseURL      string
	allowedHosts string
}

type Paths struct {
	EpisodesDir string `toml:"episodes_dir"`
}

type Retrieval struct {
	TopK                int `toml:"top_k"`
	MinGapSeconds       int `toml:"min_gap_seconds"`
	WindowSeconds       int `toml:"window_seconds"`
	StepSeconds         int `toml:"step_seconds"`
	QueryTimeoutSeconds int `toml:"query_timeout_seconds"`
	Workers             int `toml:"workers"`
}

type LLM struct {
	// Provider is openrouter or groq. Empty picks groq when the only key is
	// GROQ_API_KEY, otherwise openrouter.
	Provider       string   `toml:"provider"`
	APIKey         string   `toml:"api_key"`
	BaseURL        string   `toml:"base_url"`
	Model          string   `toml:"model"`
	AllowedHosts   []string `toml:"allowed_hosts"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func Default() Config {
	return Config{
		Paths: Paths{EpisodesDir: "episodes"},
		Retrieval: Retrieval{
			TopK:                5,
			MinGapSeconds:       30,
			WindowSeconds:       60,
			StepSeconds:         30,
			QueryTimeoutSeconds: 10,
			Workers:             4,
		},
		LLM: LLM{
			Provider:       string(openrouter.ProviderOpenRouter),
			BaseURL:        openrouter.ProviderOpenRouter.DefaultBaseURL(),
			Model:          openrouter.ProviderOpenRouter.DefaultModel(),
			TimeoutSeconds: 120,
		},
		Logging: Logging{Level: "info", Format: "console"},
	}
}

// Load reads the TOML file at path (or DefaultPath when path is empty),
// then applies environment overrides and validates the result. A missing
// default file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	cfg := Default()
	// Endpoint defaults depend on the provider, which is known only after
	// the file and environment are read.
	cfg.LLM.Provider, cfg.LLM.BaseURL, cfg.LLM.Model = "", "", ""

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := decodeFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg.from = fileOrigin(cfg.LLM)
	cfg.applyEnv()
	if err := cfg.resolveProvider(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func fileOrigin(l LLM) origin {
	var o origin
	if l.APIKey != "" {
		o.apiKey = "llm.api_key"
	}
	if l.BaseURL != "" {
		o.baseURL = "llm.base_url"
	}
	if len(l.AllowedHosts) > 0 {
		o.allowedHosts = "llm.allowed_hosts"
	}
	return o
}

// resolveProvider settles the provider and fills its endpoint defaults.
// A key taken from GROQ_API_KEY alone must never default to OpenRouter.
func (c *Config) resolveProvider() error {
	name := c.LLM.Provider
	if name == "" && c.from.apiKey == "GROQ_API_KEY" {
		name = string(openrouter.ProviderGroq)
	}
	p, err := openrouter.ParseProvider(name)
	if err != nil {
		return fmt.Errorf("llm.provider: %w", err)
	}
	c.LLM.Provider = string(p)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = p.DefaultBaseURL()
	}
	if c.LLM.Model == "" {
		c.LLM.Model = p.DefaultModel()
	}
	return nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c Config) QueryTimeout() time.Duration {
	return time.Duration(c.Retrieval.QueryTimeoutSeconds) * time.Second
}

func (c Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}
