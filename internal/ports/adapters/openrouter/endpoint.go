package openrouter

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Provider names an OpenAI-compatible chat completions service.
type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderGroq       Provider = "groq"
)

type endpoint struct {
	baseURL string
	model   string
	hosts   []string
}

var endpoints = map[Provider]endpoint{
	ProviderOpenRouter: {
		baseURL: "https://openrouter.ai",
		model:   "meta-llama/llama-3.1-8b-instruct",
		hosts:   []string{"openrouter.ai", "api.openrouter.ai"},
	},
	ProviderGroq: {
		baseURL: "https://api.groq.com/openai/v1",
		model:   "llama-3.1-8b-instant",
		hosts:   []string{"api.groq.com"},
	},
}

// ErrHostNotAllowed marks a base URL whose host is outside the allow list.
var ErrHostNotAllowed = errors.New("host is not allowed")

// ParseProvider maps a config value to a Provider; empty means OpenRouter.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return ProviderOpenRouter, nil
	}
	if _, ok := endpoints[p]; !ok {
		return "", fmt.Errorf("unknown provider %q (want %s or %s)", s, ProviderOpenRouter, ProviderGroq)
	}
	return p, nil
}

func (p Provider) spec() endpoint {
	if e, ok := endpoints[p]; ok {
		return e
	}
	return endpoints[ProviderOpenRouter]
}

func (p Provider) DefaultBaseURL() string { return p.spec().baseURL }

func (p Provider) DefaultModel() string { return p.spec().model }

// CheckBaseURL accepts only plain https URLs on an allowed host, so the API
// key never leaves for an unexpected endpoint. An empty allow list means the
// provider's own hosts.
func CheckBaseURL(p Provider, baseURL string, allowedHosts []string) error {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		raw = p.DefaultBaseURL()
	}

	u, err := url.Parse(raw)
	switch {
	case err != nil:
		return fmt.Errorf("parse %q: %w", raw, err)
	case !u.IsAbs() || u.Hostname() == "":
		return fmt.Errorf("%q: absolute URL with host is required", raw)
	case u.User != nil:
		return fmt.Errorf("%q: userinfo is not allowed", raw)
	case u.RawQuery != "" || u.Fragment != "" || u.ForceQuery:
		return fmt.Errorf("%q: query and fragment are not allowed", raw)
	case !strings.EqualFold(u.Scheme, "https"):
		return fmt.Errorf("%q: https is required", raw)
	}

	host := strings.ToLower(u.Hostname())
	if !slices.Contains(allowList(p, allowedHosts), host) {
		return fmt.Errorf("%w: %q for provider %s", ErrHostNotAllowed, host, p)
	}
	return nil
}

func allowList(p Provider, configured []string) []string {
	var out []string
	for _, h := range configured {
		if h = hostOnly(h); h != "" {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return p.spec().hosts
	}
	return out
}

// hostOnly reduces "https://Host:443/" style entries to "host".
func hostOnly(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, rest, ok := strings.Cut(s, "://"); ok {
		s = rest
	}
	s, _, _ = strings.Cut(s, "/")
	s, _, _ = strings.Cut(s, ":")
	return s
}

func trimBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = ProviderOpenRouter.DefaultBaseURL()
	}
	return strings.TrimRight(baseURL, "/")
}
