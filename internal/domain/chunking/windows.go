package chunking

import (
	"strings"

	"github.com/forPelevin/podask/internal/domain/timecode"
	"github.com/forPelevin/podask/internal/types"
)

const (
	DefaultWindowSeconds = 60
	DefaultStepSeconds   = 30
)

// WindowConfig sizes the sliding window. A step of half the window puts
// every moment of the transcript in two windows.
type WindowConfig struct {
	WindowSeconds int
	StepSeconds   int
}

func (c WindowConfig) normalized() WindowConfig {
	if c.WindowSeconds <= 0 {
		c.WindowSeconds = DefaultWindowSeconds
	}
	if c.StepSeconds <= 0 {
		c.StepSeconds = DefaultStepSeconds
	}
	return c
}

// ByWindows slides a fixed window over the spoken lines and emits one excerpt
// per window start that contains at least one non-blank line. Section markers are
// ignored.
func ByWindows(doc types.Document, cfg WindowConfig) []types.Excerpt {
	cfg = cfg.normalized()
	lines := doc.Lines()
	if len(lines) == 0 {
		return nil
	}

	total := lines[len(lines)-1].Seconds
	var out []types.Excerpt
	for start := 0; start <= total; start += cfg.StepSeconds {
		end := start + cfg.WindowSeconds
		var in []types.Entry
		for _, l := range lines {
			if l.Seconds >= start && l.Seconds < end {
				in = append(in, l)
			}
		}
		if len(in) == 0 {
			continue
		}

		ex := newExcerpt(types.KindWindow, "~"+timecode.SecondsToTimestamp(start), doc.Meta, in)
		if strings.TrimSpace(ex.Text) == "" {
			continue
		}
		ex.StartSeconds = start
		ex.Timestamp = timecode.SecondsToTimestamp(start)
		ex.DeepLink = timecode.DeepLink(doc.Meta.SourceID, start)
		out = append(out, ex)
	}
	return out
}
