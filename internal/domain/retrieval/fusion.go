package retrieval

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/podask/internal/ports"
	"github.com/forPelevin/podask/internal/types"
)

const (
	DefaultTopK          = 5
	DefaultMinGapSeconds = 30
)

type Options struct {
	TopK          int
	MinGapSeconds int
}

// Fuse runs one header-only and one window-only query, interleaves the two
// rankings, drops near-duplicate timestamps and keeps the first TopK.
// A failure of either query fails the whole call.
func Fuse(ctx context.Context, idx ports.Index, question string, scope types.ScopeFilter, opts Options) ([]types.Excerpt, error) {
	if opts.TopK <= 0 {
		return nil, nil
	}

	var headers, windows []types.Excerpt
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := idx.Search(gctx, question, scope.WithKind(types.KindHeader), opts.TopK)
		if err != nil {
			return fmt.Errorf("search header excerpts: %w", err)
		}
		headers = res
		return nil
	})
	g.Go(func() error {
		res, err := idx.Search(gctx, question, scope.WithKind(types.KindWindow), opts.TopK)
		if err != nil {
			return fmt.Errorf("search window excerpts: %w", err)
		}
		windows = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := Dedupe(Interleave(headers, windows), opts.MinGapSeconds)
	if len(out) > opts.TopK {
		out = out[:opts.TopK]
	}
	return out, nil
}

// Interleave alternates a[0], b[0], a[1], b[1], ... and then appends the
// rest of the longer list in its original order.
func Interleave(a, b []types.Excerpt) []types.Excerpt {
	out := make([]types.Excerpt, 0, len(a)+len(b))
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		out = append(out, a[i], b[i])
	}
	out = append(out, a[n:]...)
	out = append(out, b[n:]...)
	return out
}

type anchor struct {
	sourceID string
	start    int
}

// Dedupe keeps excerpts in order, dropping any that start less than
// minGapSeconds away from an already kept excerpt of the same source.
func Dedupe(in []types.Excerpt, minGapSeconds int) []types.Excerpt {
	var (
		out  []types.Excerpt
		kept []anchor
	)
	for _, ex := range in {
		if isNear(kept, ex, minGapSeconds) {
			continue
		}
		out = append(out, ex)
		kept = append(kept, anchor{sourceID: ex.SourceID, start: ex.StartSeconds})
	}
	return out
}

func isNear(kept []anchor, ex types.Excerpt, minGap int) bool {
	for _, k := range kept {
		if k.sourceID == ex.SourceID && absInt(k.start-ex.StartSeconds) < minGap {
			return true
		}
	}
	return false
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Rank wraps excerpts with their 1-based position.
func Rank(in []types.Excerpt) []types.RetrievalResult {
	out := make([]types.RetrievalResult, 0, len(in))
	for i, ex := range in {
		out = append(out, types.RetrievalResult{Excerpt: ex, Rank: i + 1})
	}
	return out
}
