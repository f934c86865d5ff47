package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forPelevin/podask/internal/domain/prompt"
	"github.com/forPelevin/podask/internal/domain/retrieval"
	"github.com/forPelevin/podask/internal/ports"
	"github.com/forPelevin/podask/internal/types"
)

// NoMatches is shown when retrieval finds nothing for the question.
const NoMatches = "No relevant transcript segments found. Try rephrasing your question or check that the episode transcripts are loaded correctly."

var errEmptyQuestion = errors.New("question is empty")

type Deps struct {
	Index  ports.Index
	LLM    ports.Answerer
	Logger *slog.Logger
}

type Options struct {
	TopK          int
	MinGapSeconds int
	// QueryTimeout bounds the two index queries of one question.
	QueryTimeout time.Duration
}

type Usecase struct {
	d    Deps
	opts Options
	log  *slog.Logger
}

func New(d Deps, opts Options) Usecase {
	if opts.TopK == 0 {
		opts.TopK = retrieval.DefaultTopK
	}
	if opts.MinGapSeconds <= 0 {
		opts.MinGapSeconds = retrieval.DefaultMinGapSeconds
	}
	log := d.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return Usecase{d: d, opts: opts, log: log}
}

type Question struct {
	Text  string
	Scope types.ScopeFilter
	// TopK overrides Options.TopK when positive.
	TopK int
}

type Answer struct {
	RequestID string
	Text      string
	Citations []types.RetrievalResult
	Found     bool
	Prompt    string
}

func (u Usecase) normalize(q Question) (string, int, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return "", 0, errEmptyQuestion
	}
	topK := u.opts.TopK
	if q.TopK > 0 {
		topK = q.TopK
	}
	return text, topK, nil
}

func (u Usecase) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.opts.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, u.opts.QueryTimeout)
}

// Retrieve returns the fused, deduplicated citation set for a question
// without calling the language model.
func (u Usecase) Retrieve(ctx context.Context, q Question) ([]types.RetrievalResult, error) {
	text, topK, err := u.normalize(q)
	if err != nil {
		return nil, err
	}
	ctx, cancel := u.queryContext(ctx)
	defer cancel()

	excerpts, err := retrieval.Fuse(ctx, u.d.Index, text, q.Scope, retrieval.Options{
		TopK:          topK,
		MinGapSeconds: u.opts.MinGapSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	return retrieval.Rank(excerpts), nil
}

// Search runs a single index query with the scope exactly as given,
// skipping the header/window fusion.
func (u Usecase) Search(ctx context.Context, q Question) ([]types.RetrievalResult, error) {
	text, topK, err := u.normalize(q)
	if err != nil {
		return nil, err
	}
	ctx, cancel := u.queryContext(ctx)
	defer cancel()

	excerpts, err := u.d.Index.Search(ctx, text, q.Scope, topK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return retrieval.Rank(excerpts), nil
}

// Ask retrieves citations and asks the language model to answer from them.
// An empty citation set is not an error: the answer carries Found=false and
// the model is not called.
func (u Usecase) Ask(ctx context.Context, q Question) (Answer, error) {
	started := time.Now()
	ans := Answer{RequestID: uuid.NewString()}
	log := u.log.With("request_id", ans.RequestID)

	cites, err := u.Retrieve(ctx, q)
	if err != nil {
		return ans, err
	}
	log.Debug("ask: retrieved",
		"citations", len(cites),
		"source_id", q.Scope.SourceID,
		"season", q.Scope.Season,
		"elapsed", time.Since(started),
	)
	if len(cites) == 0 {
		ans.Text = NoMatches
		return ans, nil
	}

	excerpts := make([]types.Excerpt, 0, len(cites))
	for _, c := range cites {
		excerpts = append(excerpts, c.Excerpt)
	}
	ans.Citations = cites
	ans.Found = true
	ans.Prompt = prompt.Build(q.Text, excerpts)

	text, err := u.d.LLM.Answer(ctx, ans.Prompt)
	if err != nil {
		return ans, fmt.Errorf("generate answer: %w", err)
	}
	ans.Text = text
	log.Info("ask: answered",
		"citations", len(cites),
		"elapsed", time.Since(started),
	)
	return ans, nil
}
