package chunking

import (
	"reflect"
	"strings"
	"testing"

	"github.com/forPelevin/podask/internal/domain/clips"
	"github.com/forPelevin/podask/internal/types"
)

func testMeta() types.DocumentMeta {
	return types.DocumentMeta{
		Title:      "AI in Healthcare",
		ShortTitle: "ML Healthcare",
		SourceID:   "V1",
		Season:     "8",
		EpisodeNum: "4",
	}
}

func line(sec int, who, text string) types.Entry {
	return types.Entry{Seconds: sec, Speaker: who, Text: text}
}

func header(h string) types.Entry { return types.Entry{Header: h} }

func TestByHeaders_GroupsLinesPerSection(t *testing.T) {
	doc := types.Document{
		Meta: testMeta(),
		Entries: []types.Entry{
			line(1, "Alexey", "Hello everyone."),
			line(5, "", "  (music)  "),
			header("Personalization"),
			line(2161, "Stefan", "Yes."),
			line(2200, "Alexey", "Go on."),
			line(2210, "Stefan", "Agenda-driven."),
			header("Empty section"),
			header("A/B Testing"),
			line(2400, "Stefan", "A/B tests first."),
		},
	}
	lookup := clips.BuildLookup([]types.Clip{
		{Name: "Personalization", StartSeconds: 2139, URL: "https://www.youtube.com/watch?v=V1&t=2139"},
	})

	got := ByHeaders(doc, lookup)
	if len(got) != 3 {
		t.Fatalf("expected 3 header excerpts, got %d: %+v", len(got), got)
	}

	intro := got[0]
	if intro.Section != IntroSection || intro.Text != "Alexey: Hello everyone. (music)" {
		t.Fatalf("unexpected intro excerpt: %+v", intro)
	}
	if intro.StartSeconds != 1 || intro.DeepLink != "https://www.youtube.com/watch?v=V1&t=1" || intro.Timestamp != "0:01" {
		t.Fatalf("unexpected intro timing: %+v", intro)
	}

	p := got[1]
	if p.Kind != types.KindHeader || p.Section != "Personalization" {
		t.Fatalf("unexpected section: %+v", p)
	}
	if p.Text != "Stefan: Yes. Alexey: Go on. Stefan: Agenda-driven." {
		t.Fatalf("unexpected text: %q", p.Text)
	}
	if p.Speakers != "Alexey, Stefan" {
		t.Fatalf("unexpected speakers: %q", p.Speakers)
	}
	if p.StartSeconds != 2139 || p.Timestamp != "35:39" || p.DeepLink != "https://www.youtube.com/watch?v=V1&t=2139" {
		t.Fatalf("expected clip timing to win, got %+v", p)
	}
	if p.EpisodeTitle != "AI in Healthcare" || p.ShortTitle != "ML Healthcare" || p.Season != "8" || p.EpisodeNum != "4" || p.SourceID != "V1" {
		t.Fatalf("metadata not propagated: %+v", p)
	}

	ab := got[2]
	if ab.Section != "A/B Testing" || ab.StartSeconds != 2400 || ab.Timestamp != "40:00" {
		t.Fatalf("unexpected fallback timing: %+v", ab)
	}
}

func TestByHeaders_NoIntroWhenHeaderComesFirst(t *testing.T) {
	doc := types.Document{
		Meta:    testMeta(),
		Entries: []types.Entry{header("Opening"), line(3, "A", "hi")},
	}
	got := ByHeaders(doc, nil)
	if len(got) != 1 || got[0].Section != "Opening" {
		t.Fatalf("expected only the Opening excerpt, got %+v", got)
	}
}

func TestByHeaders_ClipMatchIsExact(t *testing.T) {
	doc := types.Document{
		Meta:    testMeta(),
		Entries: []types.Entry{header("Opening"), line(42, "A", "hi")},
	}
	lookup := clips.BuildLookup([]types.Clip{{Name: "opening", StartSeconds: 1, URL: "x"}})
	got := ByHeaders(doc, lookup)
	if got[0].StartSeconds != 42 {
		t.Fatalf("case-different clip name must not match, got %+v", got[0])
	}
}

func TestByHeaders_NeverEmitsEmptyText(t *testing.T) {
	docs := []types.Document{
		{Meta: testMeta()},
		{Meta: testMeta(), Entries: []types.Entry{header("A"), header("B")}},
		{Meta: testMeta(), Entries: []types.Entry{header("A"), line(1, "", "   ")}},
		{Meta: testMeta(), Entries: []types.Entry{line(1, "", ""), header("B"), line(2, "", "x")}},
	}
	for i, doc := range docs {
		for _, ex := range ByHeaders(doc, nil) {
			if strings.TrimSpace(ex.Text) == "" {
				t.Fatalf("doc %d: emitted empty excerpt %+v", i, ex)
			}
		}
	}
}

func TestByWindows_Membership(t *testing.T) {
	doc := types.Document{
		Meta: testMeta(),
		Entries: []types.Entry{
			line(10, "A", "ten"),
			header("ignored"),
			line(40, "B", "forty"),
			line(70, "A", "seventy"),
			line(100, "", "hundred"),
		},
	}
	got := ByWindows(doc, WindowConfig{WindowSeconds: 60, StepSeconds: 30})

	type want struct {
		start   int
		section string
		text    string
	}
	wants := []want{
		{0, "~0:00", "A: ten B: forty"},
		{30, "~0:30", "B: forty A: seventy"},
		{60, "~1:00", "A: seventy hundred"},
		{90, "~1:30", "hundred"},
	}
	if len(got) != len(wants) {
		t.Fatalf("expected %d windows, got %d: %+v", len(wants), len(got), got)
	}
	for i, w := range wants {
		ex := got[i]
		if ex.StartSeconds != w.start || ex.Section != w.section || ex.Text != w.text {
			t.Fatalf("window %d: got start=%d section=%q text=%q, want %+v", i, ex.StartSeconds, ex.Section, ex.Text, w)
		}
		if ex.Kind != types.KindWindow {
			t.Fatalf("window %d: unexpected kind %q", i, ex.Kind)
		}
	}
	if got[0].Speakers != "A, B" || got[1].Speakers != "A, B" || got[2].Speakers != "A" || got[3].Speakers != "" {
		t.Fatalf("unexpected speakers: %q / %q / %q / %q", got[0].Speakers, got[1].Speakers, got[2].Speakers, got[3].Speakers)
	}
	if got[2].DeepLink != "https://www.youtube.com/watch?v=V1&t=60" || got[2].Timestamp != "1:00" {
		t.Fatalf("unexpected link/timestamp: %+v", got[2])
	}
}

func TestBlankLinesProduceNoExcerpt(t *testing.T) {
	doc := types.Document{
		Meta: testMeta(),
		Entries: []types.Entry{
			line(0, "", "   "),
			line(20, "", "\t"),
			header("Silence"),
			line(40, "", " "),
			line(50, "", ""),
			header("Talk"),
			line(90, "A", "words"),
			line(95, "", "  "),
		},
	}

	heads := ByHeaders(doc, nil)
	if len(heads) != 1 || heads[0].Section != "Talk" || heads[0].Text != "A: words" {
		t.Fatalf("expected only the Talk section, got %+v", heads)
	}

	wins := ByWindows(doc, WindowConfig{WindowSeconds: 60, StepSeconds: 30})
	for _, ex := range wins {
		if strings.TrimSpace(ex.Text) == "" || ex.Text != strings.TrimSpace(ex.Text) {
			t.Fatalf("window %d has blank or padded text %q", ex.StartSeconds, ex.Text)
		}
	}
	if len(wins) != 2 || wins[0].StartSeconds != 60 || wins[1].StartSeconds != 90 {
		t.Fatalf("expected windows at 60 and 90 only, got %+v", wins)
	}
}

func TestByWindows_EveryStepBoundaryUpToLastLine(t *testing.T) {
	var entries []types.Entry
	for s := 0; s <= 300; s += 7 {
		entries = append(entries, line(s, "A", "x"))
	}
	doc := types.Document{Meta: testMeta(), Entries: entries}
	got := ByWindows(doc, WindowConfig{WindowSeconds: 60, StepSeconds: 30})

	var starts []int
	for _, ex := range got {
		starts = append(starts, ex.StartSeconds)
	}
	want := []int{0, 30, 60, 90, 120, 150, 180, 210, 240, 270}
	if !reflect.DeepEqual(starts, want) {
		t.Fatalf("unexpected window starts: %v, want %v", starts, want)
	}
}

func TestByWindows_SkipsGaps(t *testing.T) {
	doc := types.Document{
		Meta:    testMeta(),
		Entries: []types.Entry{line(5, "A", "early"), line(200, "A", "late")},
	}
	got := ByWindows(doc, WindowConfig{})
	var starts []int
	for _, ex := range got {
		starts = append(starts, ex.StartSeconds)
	}
	if !reflect.DeepEqual(starts, []int{0, 150, 180}) {
		t.Fatalf("unexpected window starts: %v", starts)
	}
}

func TestByWindows_NoLines(t *testing.T) {
	doc := types.Document{Meta: testMeta(), Entries: []types.Entry{header("only")}}
	if got := ByWindows(doc, WindowConfig{}); len(got) != 0 {
		t.Fatalf("expected no windows, got %+v", got)
	}
}
