package chunking

import (
	"sort"
	"strings"

	"github.com/forPelevin/podask/internal/types"
)

// joinLines renders lines as "speaker: text" (bare text without a speaker)
// separated by single spaces, and returns the sorted distinct speakers.
// Blank lines contribute neither text nor a speaker.
func joinLines(lines []types.Entry) (string, string) {
	parts := make([]string, 0, len(lines))
	seen := make(map[string]struct{})
	for _, l := range lines {
		text := strings.TrimSpace(l.Text)
		if text == "" {
			continue
		}
		if l.Speaker != "" {
			parts = append(parts, l.Speaker+": "+text)
			seen[l.Speaker] = struct{}{}
			continue
		}
		parts = append(parts, text)
	}

	speakers := make([]string, 0, len(seen))
	for s := range seen {
		speakers = append(speakers, s)
	}
	sort.Strings(speakers)
	return strings.Join(parts, " "), strings.Join(speakers, ", ")
}

func newExcerpt(kind types.Kind, section string, meta types.DocumentMeta, lines []types.Entry) types.Excerpt {
	text, speakers := joinLines(lines)
	return types.Excerpt{
		Kind:         kind,
		Section:      section,
		Text:         text,
		Speakers:     speakers,
		EpisodeTitle: meta.Title,
		ShortTitle:   meta.ShortTitle,
		SourceID:     meta.SourceID,
		Season:       meta.Season,
		EpisodeNum:   meta.EpisodeNum,
	}
}
