package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/forPelevin/podask/internal/ports/adapters/openrouter"
)

// Validate ensures the configuration is usable for retrieval. The API key is
// checked separately by RequireAPIKey since search works without one.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.EpisodesDir) == "" {
		return errors.New("paths.episodes_dir must be set")
	}
	if err := c.validateRetrieval(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.LLM.TimeoutSeconds < 0 {
		return errors.New("llm.timeout_seconds must be >= 0")
	}
	return c.validateEndpoint()
}

// validateEndpoint checks the base URL against the provider's hosts and
// names whichever setting supplied the offending value.
func (c *Config) validateEndpoint() error {
	p, err := openrouter.ParseProvider(c.LLM.Provider)
	if err != nil {
		return fmt.Errorf("llm.provider: %w", err)
	}
	err = openrouter.CheckBaseURL(p, c.LLM.BaseURL, c.LLM.AllowedHosts)
	if err == nil {
		return nil
	}
	setting := c.from.baseURL
	if setting == "" {
		setting = "llm.base_url"
	}
	if errors.Is(err, openrouter.ErrHostNotAllowed) {
		hosts := c.from.allowedHosts
		if hosts == "" {
			hosts = "llm.allowed_hosts or OPENROUTER_ALLOWED_HOSTS"
		}
		return fmt.Errorf("%s: %w (list it in %s)", setting, err, hosts)
	}
	return fmt.Errorf("%s: %w", setting, err)
}

func (c *Config) validateRetrieval() error {
	r := c.Retrieval
	switch {
	case r.TopK <= 0:
		return errors.New("retrieval.top_k must be > 0")
	case r.MinGapSeconds < 0:
		return errors.New("retrieval.min_gap_seconds must be >= 0")
	case r.WindowSeconds <= 0:
		return errors.New("retrieval.window_seconds must be > 0")
	case r.StepSeconds <= 0:
		return errors.New("retrieval.step_seconds must be > 0")
	case r.QueryTimeoutSeconds < 0:
		return errors.New("retrieval.query_timeout_seconds must be >= 0")
	case r.Workers <= 0:
		return errors.New("retrieval.workers must be > 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	return nil
}

// RequireAPIKey reports a missing LLM key for commands that generate answers.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return errors.New("no LLM API key: set OPENROUTER_API_KEY or GROQ_API_KEY (in .env) or llm.api_key")
	}
	return nil
}
