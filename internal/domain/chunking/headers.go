package chunking

import (
	"strings"

	"github.com/forPelevin/podask/internal/domain/clips"
	"github.com/forPelevin/podask/internal/domain/timecode"
	"github.com/forPelevin/podask/internal/types"
)

// IntroSection labels lines that appear before the first section header.
const IntroSection = "Introduction"

// ByHeaders groups spoken lines under their enclosing section header, one
// excerpt per section. Sections without spoken lines produce nothing.
func ByHeaders(doc types.Document, lookup clips.Lookup) []types.Excerpt {
	var (
		out     []types.Excerpt
		section = IntroSection
		acc     []types.Entry
	)

	flush := func() {
		if len(acc) == 0 {
			return
		}
		ex := newExcerpt(types.KindHeader, section, doc.Meta, acc)
		if strings.TrimSpace(ex.Text) == "" {
			return
		}
		// Curated clips carry better boundaries than the first line we saw.
		if info, ok := lookup[section]; ok {
			ex.StartSeconds = info.StartSeconds
			ex.DeepLink = info.DeepLink
			ex.Timestamp = info.Timestamp
		} else {
			ex.StartSeconds = max(acc[0].Seconds, 0)
			ex.DeepLink = timecode.DeepLink(doc.Meta.SourceID, ex.StartSeconds)
			ex.Timestamp = timecode.SecondsToTimestamp(ex.StartSeconds)
		}
		if ex.DeepLink == "" {
			ex.DeepLink = timecode.DeepLink(doc.Meta.SourceID, ex.StartSeconds)
		}
		out = append(out, ex)
	}

	for _, e := range doc.Entries {
		if e.IsHeader() {
			flush()
			section = e.Header
			acc = nil
			continue
		}
		acc = append(acc, e)
	}
	flush()
	return out
}
