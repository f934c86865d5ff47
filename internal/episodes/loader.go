package episodes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/podask/internal/domain/chunking"
	"github.com/forPelevin/podask/internal/domain/clips"
	"github.com/forPelevin/podask/internal/ports"
	"github.com/forPelevin/podask/internal/types"
)

// ErrEmptyCorpus is returned when nothing searchable could be loaded.
var ErrEmptyCorpus = errors.New("empty corpus")

var errNoTranscript = errors.New("no transcript found")

type Options struct {
	Window  chunking.WindowConfig
	Workers int
	Logger  *slog.Logger
}

type Failure struct {
	Name   string
	Reason error
}

type Result struct {
	Excerpts  []types.Excerpt
	Failed    []Failure
	Documents int
}

// Load chunks every document into header excerpts followed by window
// excerpts, keeping document order. Documents that failed to parse or carry
// no spoken lines are recorded in Failed and skipped.
func Load(ctx context.Context, docs []ports.LoadedDocument, opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if len(docs) == 0 {
		return Result{}, fmt.Errorf("%w: no documents", ErrEmptyCorpus)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	// One slot per document; concatenation below restores input order.
	slots := make([][]types.Excerpt, len(docs))
	reasons := make([]error, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i], reasons[i] = chunkDocument(docs[i], opts.Window)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Documents: len(docs)}
	for i, d := range docs {
		if reasons[i] != nil {
			log.Warn("episodes: skipping document", "name", d.Name, "error", reasons[i])
			res.Failed = append(res.Failed, Failure{Name: d.Name, Reason: reasons[i]})
			continue
		}
		log.Debug("episodes: chunked document", "name", d.Name, "excerpts", len(slots[i]))
		res.Excerpts = append(res.Excerpts, slots[i]...)
	}

	if len(res.Excerpts) == 0 {
		return res, fmt.Errorf("%w: no excerpts from %d documents", ErrEmptyCorpus, len(docs))
	}
	log.Info("episodes: loaded",
		"documents", len(docs),
		"excerpts", len(res.Excerpts),
		"failed", len(res.Failed),
	)
	return res, nil
}

func chunkDocument(d ports.LoadedDocument, window chunking.WindowConfig) ([]types.Excerpt, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	if len(d.Doc.Lines()) == 0 {
		return nil, errNoTranscript
	}
	headers := chunking.ByHeaders(d.Doc, clips.BuildLookup(d.Doc.Clips))
	windows := chunking.ByWindows(d.Doc, window)
	return append(headers, windows...), nil
}
