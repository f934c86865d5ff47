package config

import (
	"os"
	"strings"
)

func (c *Config) applyEnv() {
	switch {
	case envStr("OPENROUTER_API_KEY", "") != "":
		c.LLM.APIKey, c.from.apiKey = envStr("OPENROUTER_API_KEY", ""), "OPENROUTER_API_KEY"
	case envStr("GROQ_API_KEY", "") != "":
		c.LLM.APIKey, c.from.apiKey = envStr("GROQ_API_KEY", ""), "GROQ_API_KEY"
	}
	c.LLM.Provider = envStr("PODASK_LLM_PROVIDER", c.LLM.Provider)
	if v := envStr("OPENROUTER_BASE_URL", ""); v != "" {
		c.LLM.BaseURL, c.from.baseURL = v, "OPENROUTER_BASE_URL"
	}
	c.LLM.Model = envStr("OPENROUTER_MODEL", c.LLM.Model)
	if v := envStr("OPENROUTER_ALLOWED_HOSTS", ""); v != "" {
		c.LLM.AllowedHosts, c.from.allowedHosts = splitList(v), "OPENROUTER_ALLOWED_HOSTS"
	}
	c.Paths.EpisodesDir = envStr("PODASK_EPISODES_DIR", c.Paths.EpisodesDir)
	c.Logging.Level = envStr("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = envStr("LOG_FORMAT", c.Logging.Format)
}

func envStr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
