package retrieval

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/forPelevin/podask/internal/types"
)

type fakeIndex struct {
	mu     sync.Mutex
	byKind map[types.Kind][]types.Excerpt
	err    error
	calls  []types.ScopeFilter
	topKs  []int
}

func (f *fakeIndex) Search(_ context.Context, _ string, filter types.ScopeFilter, topK int) ([]types.Excerpt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, filter)
	f.topKs = append(f.topKs, topK)
	if f.err != nil && filter.Kind == types.KindWindow {
		return nil, f.err
	}
	res := f.byKind[filter.Kind]
	if len(res) > topK {
		res = res[:topK]
	}
	return res, nil
}

func ex(kind types.Kind, section, source string, start int) types.Excerpt {
	return types.Excerpt{Kind: kind, Section: section, SourceID: source, StartSeconds: start, Text: section}
}

func sections(in []types.Excerpt) []string {
	out := make([]string, 0, len(in))
	for _, e := range in {
		out = append(out, e.Section)
	}
	return out
}

func TestInterleave_UnevenLengths(t *testing.T) {
	a := []types.Excerpt{{Section: "a1"}, {Section: "a2"}, {Section: "a3"}}
	b := []types.Excerpt{{Section: "b1"}, {Section: "b2"}, {Section: "b3"}, {Section: "b4"}, {Section: "b5"}}

	got := sections(Interleave(a, b))
	want := []string{"a1", "b1", "a2", "b2", "a3", "b3", "b4", "b5"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Interleave = %v, want %v", got, want)
	}

	got = sections(Interleave(b, a))
	want = []string{"b1", "a1", "b2", "a2", "b3", "a3", "b4", "b5"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Interleave reversed = %v, want %v", got, want)
	}
}

func TestInterleave_Empty(t *testing.T) {
	b := []types.Excerpt{{Section: "b1"}}
	if got := sections(Interleave(nil, b)); !reflect.DeepEqual(got, []string{"b1"}) {
		t.Fatalf("unexpected: %v", got)
	}
	if got := Interleave(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestDedupe_ProximityPerSource(t *testing.T) {
	in := []types.Excerpt{
		ex(types.KindHeader, "h2139", "V1", 2139),
		ex(types.KindWindow, "w2150", "V1", 2150),
		ex(types.KindHeader, "h2160", "V1", 2160),
		ex(types.KindWindow, "other", "V2", 2150),
		ex(types.KindWindow, "w2169", "V1", 2169),
	}
	got := sections(Dedupe(in, 30))
	want := []string{"h2139", "other", "w2169"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Dedupe = %v, want %v", got, want)
	}
}

func TestDedupe_GapBoundaryIsExclusive(t *testing.T) {
	in := []types.Excerpt{
		ex(types.KindHeader, "a", "V1", 100),
		ex(types.KindWindow, "b", "V1", 130),
		ex(types.KindWindow, "c", "V1", 71),
	}
	got := sections(Dedupe(in, 30))
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Dedupe = %v", got)
	}
}

func TestDedupe_IdempotentAndOrderPreserving(t *testing.T) {
	in := []types.Excerpt{
		ex(types.KindHeader, "1", "V1", 0),
		ex(types.KindWindow, "2", "V1", 10),
		ex(types.KindWindow, "3", "V1", 60),
		ex(types.KindHeader, "4", "V2", 5),
		ex(types.KindWindow, "5", "V1", 75),
		ex(types.KindWindow, "6", "V1", 200),
	}
	once := Dedupe(in, 30)
	twice := Dedupe(once, 30)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("Dedupe not idempotent: %v vs %v", sections(once), sections(twice))
	}

	pos := map[string]int{}
	for i, e := range in {
		pos[e.Section] = i
	}
	for i := 1; i < len(once); i++ {
		if pos[once[i-1].Section] > pos[once[i].Section] {
			t.Fatalf("rank order not preserved: %v", sections(once))
		}
	}
}

func TestFuse_KeepsOneOfNearDuplicatesInRankOrder(t *testing.T) {
	idx := &fakeIndex{byKind: map[types.Kind][]types.Excerpt{
		types.KindHeader: {
			ex(types.KindHeader, "h2139", "V1", 2139),
			ex(types.KindHeader, "h2160", "V1", 2160),
		},
		types.KindWindow: {
			ex(types.KindWindow, "w2150", "V1", 2150),
		},
	}}

	got, err := Fuse(context.Background(), idx, "recommender", types.ScopeFilter{SourceID: "V1", Season: "8"}, Options{TopK: 5, MinGapSeconds: 30})
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	if !reflect.DeepEqual(sections(got), []string{"h2139"}) {
		t.Fatalf("unexpected fused result: %v", sections(got))
	}

	if len(idx.calls) != 2 {
		t.Fatalf("expected 2 index calls, got %d", len(idx.calls))
	}
	kinds := map[types.Kind]bool{}
	for i, c := range idx.calls {
		kinds[c.Kind] = true
		if c.SourceID != "V1" || c.Season != "8" {
			t.Fatalf("scope not forwarded: %+v", c)
		}
		if idx.topKs[i] != 5 {
			t.Fatalf("expected topK 5 per query, got %d", idx.topKs[i])
		}
	}
	if !kinds[types.KindHeader] || !kinds[types.KindWindow] {
		t.Fatalf("expected one header and one window query, got %+v", idx.calls)
	}
}

func TestFuse_TruncatesToTopK(t *testing.T) {
	var hs, ws []types.Excerpt
	for i := 0; i < 4; i++ {
		hs = append(hs, ex(types.KindHeader, "h", "V1", i*1000))
		ws = append(ws, ex(types.KindWindow, "w", "V1", i*1000+500))
	}
	idx := &fakeIndex{byKind: map[types.Kind][]types.Excerpt{types.KindHeader: hs, types.KindWindow: ws}}
	got, err := Fuse(context.Background(), idx, "q", types.ScopeFilter{}, Options{TopK: 3, MinGapSeconds: 30})
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	starts := []int{got[0].StartSeconds, got[1].StartSeconds, got[2].StartSeconds}
	if !reflect.DeepEqual(starts, []int{0, 500, 1000}) {
		t.Fatalf("unexpected order: %v", starts)
	}
}

func TestFuse_NonPositiveTopKSkipsQueries(t *testing.T) {
	idx := &fakeIndex{}
	got, err := Fuse(context.Background(), idx, "q", types.ScopeFilter{}, Options{TopK: 0})
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v, %v", got, err)
	}
	if len(idx.calls) != 0 {
		t.Fatalf("expected no index calls, got %d", len(idx.calls))
	}
}

func TestFuse_EmptyResults(t *testing.T) {
	got, err := Fuse(context.Background(), &fakeIndex{}, "q", types.ScopeFilter{}, Options{TopK: 5, MinGapSeconds: 30})
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no results, got %v", got)
	}
}

func TestFuse_QueryErrorFailsWholeCall(t *testing.T) {
	boom := errors.New("boom")
	idx := &fakeIndex{
		byKind: map[types.Kind][]types.Excerpt{types.KindHeader: {ex(types.KindHeader, "h", "V1", 0)}},
		err:    boom,
	}
	_, err := Fuse(context.Background(), idx, "q", types.ScopeFilter{}, Options{TopK: 5})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func TestFuse_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Fuse(ctx, &fakeIndex{}, "q", types.ScopeFilter{}, Options{TopK: 5})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRank(t *testing.T) {
	got := Rank([]types.Excerpt{{Section: "a"}, {Section: "b"}})
	if got[0].Rank != 1 || got[1].Rank != 2 || got[1].Excerpt.Section != "b" {
		t.Fatalf("unexpected ranks: %+v", got)
	}
}
