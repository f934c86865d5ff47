package episodes

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/forPelevin/podask/internal/domain/chunking"
	"github.com/forPelevin/podask/internal/ports"
	"github.com/forPelevin/podask/internal/types"
)

func doc(source string, secs ...int) types.Document {
	d := types.Document{Name: source + ".md", Meta: types.DocumentMeta{SourceID: source, Title: "Episode " + source}}
	d.Entries = append(d.Entries, types.Entry{Header: "Topic " + source})
	for _, s := range secs {
		d.Entries = append(d.Entries, types.Entry{Seconds: s, Speaker: "A", Text: fmt.Sprintf("line at %d", s)})
	}
	return d
}

func loaded(d types.Document) ports.LoadedDocument {
	return ports.LoadedDocument{Name: d.Name, Doc: d}
}

func TestLoad_OrderAndFailures(t *testing.T) {
	docs := []ports.LoadedDocument{
		loaded(doc("V1", 10, 40)),
		{Name: "broken.md", Err: errors.New("could not find YAML frontmatter")},
		loaded(types.Document{Name: "empty.md", Entries: []types.Entry{{Header: "only"}}}),
		loaded(doc("V2", 5)),
	}

	res, err := Load(context.Background(), docs, Options{Window: chunking.WindowConfig{WindowSeconds: 60, StepSeconds: 30}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Documents != 4 {
		t.Fatalf("expected 4 documents, got %d", res.Documents)
	}

	var got []string
	for _, ex := range res.Excerpts {
		got = append(got, fmt.Sprintf("%s/%s/%d", ex.SourceID, ex.Kind, ex.StartSeconds))
	}
	want := []string{
		"V1/header/10",
		"V1/window/0",
		"V1/window/30",
		"V2/header/5",
		"V2/window/0",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected excerpts:\n got %v\nwant %v", got, want)
	}

	if len(res.Failed) != 2 || res.Failed[0].Name != "broken.md" || res.Failed[1].Name != "empty.md" {
		t.Fatalf("unexpected failures: %+v", res.Failed)
	}
	if !errors.Is(res.Failed[1].Reason, errNoTranscript) {
		t.Fatalf("expected no transcript reason, got %v", res.Failed[1].Reason)
	}
}

func TestLoad_ParallelMatchesSequential(t *testing.T) {
	var docs []ports.LoadedDocument
	for i := 0; i < 20; i++ {
		docs = append(docs, loaded(doc(fmt.Sprintf("V%02d", i), 0, 15, 45, 90, 200+i)))
	}
	seq, err := Load(context.Background(), docs, Options{Workers: 1})
	if err != nil {
		t.Fatalf("sequential load: %v", err)
	}
	par, err := Load(context.Background(), docs, Options{Workers: 8})
	if err != nil {
		t.Fatalf("parallel load: %v", err)
	}
	if !reflect.DeepEqual(seq.Excerpts, par.Excerpts) {
		t.Fatalf("parallel chunking changed excerpt order")
	}
}

func TestLoad_EmptyCorpus(t *testing.T) {
	if _, err := Load(context.Background(), nil, Options{}); !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus for no documents, got %v", err)
	}

	docs := []ports.LoadedDocument{{Name: "bad.md", Err: errors.New("bad")}}
	res, err := Load(context.Background(), docs, Options{})
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus when nothing chunks, got %v", err)
	}
	if len(res.Failed) != 1 {
		t.Fatalf("expected failure to be reported, got %+v", res.Failed)
	}
}

func TestCatalog(t *testing.T) {
	excerpts := []types.Excerpt{
		{SourceID: "b", EpisodeTitle: "B", Season: "10", EpisodeNum: "1"},
		{SourceID: "a", EpisodeTitle: "A", Season: "9", EpisodeNum: "2"},
		{SourceID: "b", EpisodeTitle: "B", Season: "10", EpisodeNum: "1"},
		{SourceID: "c", EpisodeTitle: "C", Season: "9", EpisodeNum: "10"},
		{SourceID: "", EpisodeTitle: "no id"},
	}
	got := Catalog(excerpts)
	var ids []string
	for _, e := range got {
		ids = append(ids, e.SourceID)
	}
	if !reflect.DeepEqual(ids, []string{"a", "c", "b"}) {
		t.Fatalf("unexpected catalog order: %v", ids)
	}
	if got[0].Label() != "S9E2" || (EpisodeInfo{}).Label() != "" {
		t.Fatalf("unexpected label: %q", got[0].Label())
	}
}
