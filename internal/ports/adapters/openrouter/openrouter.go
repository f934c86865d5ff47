package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	requestTimeout = 90 * time.Second
	temperature    = 0.2
	maxTokens      = 600

	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

type Adapter struct {
	key     string
	model   string
	baseURL string
	client  *http.Client

	retryAttempts  int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
}

type Option func(*Adapter)

func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) {
		if c != nil {
			a.client = c
		}
	}
}

// WithRetry sets how many attempts a request gets and the backoff bounds.
func WithRetry(attempts int, baseDelay, maxDelay time.Duration) Option {
	return func(a *Adapter) {
		a.retryAttempts = attempts
		a.retryBaseDelay = baseDelay
		a.retryMaxDelay = maxDelay
	}
}

func withSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(a *Adapter) { a.sleep = fn }
}

func New(apiKey, model, baseURL string, opts ...Option) *Adapter {
	if model == "" {
		model = ProviderOpenRouter.DefaultModel()
	}
	a := &Adapter{
		key:            strings.TrimSpace(apiKey),
		model:          model,
		baseURL:        trimBaseURL(baseURL),
		client:         &http.Client{Timeout: 5 * time.Minute},
		retryAttempts:  defaultRetryAttempts,
		retryBaseDelay: defaultRetryBaseDelay,
		retryMaxDelay:  defaultRetryMaxDelay,
		sleep:          sleepCtx,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.retryAttempts < 1 {
		a.retryAttempts = 1
	}
	return a
}

func (a *Adapter) Model() string { return a.model }

// Answer sends the prompt as a single user message and returns the
// assistant's reply.
func (a *Adapter) Answer(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":  a.model,
		"stream": false,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= a.retryAttempts; attempt++ {
		out, retry, err := a.do(ctx, body)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retry || attempt == a.retryAttempts {
			break
		}
		if err := a.sleep(ctx, a.backoff(attempt)); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

// do performs one request. The bool reports whether the failure is worth
// retrying.
func (a *Adapter) do(ctx context.Context, body []byte) (string, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, chatURL(a.baseURL), bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", true, fmt.Errorf("openrouter timeout after %s (model=%s)", requestTimeout, a.model)
		}
		return "", true, fmt.Errorf("openrouter request: %s", redactSecrets(err.Error(), a.key))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", retry, fmt.Errorf("openrouter status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return "", retry, fmt.Errorf("openrouter status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), a.key), 400))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", false, fmt.Errorf("openrouter: decode response: %w", err)
	}
	if len(raw.Choices) == 0 {
		return "", false, errors.New("openrouter: response has no choices")
	}
	content, err := messageContentToString(raw.Choices[0].Message.Content)
	if err != nil {
		return "", false, err
	}
	return strings.TrimSpace(content), false, nil
}

func (a *Adapter) backoff(attempt int) time.Duration {
	d := a.retryBaseDelay << (attempt - 1)
	if d <= 0 || d > a.retryMaxDelay {
		d = a.retryMaxDelay
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// chatURL appends the completions path. A base URL that already carries a
// path (e.g. an OpenAI-compatible ".../openai/v1") only gets the final
// segment.
func chatURL(baseURL string) string {
	rest := strings.TrimPrefix(strings.TrimPrefix(baseURL, "https://"), "http://")
	if strings.Contains(rest, "/") {
		return baseURL + "/chat/completions"
	}
	return baseURL + "/api/v1/chat/completions"
}

func messageContentToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return "", errors.New("openrouter: empty content")
		}
		return x, nil
	case []any:
		// Some providers return an array of {type,text} parts.
		var b strings.Builder
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := m["text"].(string); ok {
				b.WriteString(t)
			}
		}
		s := b.String()
		if strings.TrimSpace(s) == "" {
			return "", errors.New("openrouter: empty content")
		}
		return s, nil
	default:
		return "", fmt.Errorf("openrouter: unexpected content type %T", v)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
