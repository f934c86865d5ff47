package clips

import (
	"github.com/forPelevin/podask/internal/domain/timecode"
	"github.com/forPelevin/podask/internal/types"
)

type Info struct {
	StartSeconds int
	EndSeconds   int
	DeepLink     string
	Timestamp    string
}

// Lookup maps a clip name to its timing and link.
type Lookup map[string]Info

// BuildLookup indexes clips by name. A later clip with the same name
// replaces an earlier one.
func BuildLookup(cs []types.Clip) Lookup {
	out := make(Lookup, len(cs))
	for _, c := range cs {
		start := max(c.StartSeconds, 0)
		out[c.Name] = Info{
			StartSeconds: start,
			EndSeconds:   max(c.EndSeconds, 0),
			DeepLink:     c.URL,
			Timestamp:    timecode.SecondsToTimestamp(start),
		}
	}
	return out
}
