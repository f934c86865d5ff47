package episodes

import (
	"sort"
	"strconv"

	"github.com/forPelevin/podask/internal/types"
)

type EpisodeInfo struct {
	SourceID   string
	Title      string
	Season     string
	EpisodeNum string
}

// Label renders "S8E4" or "" when the season is unknown.
func (e EpisodeInfo) Label() string {
	if e.Season == "" {
		return ""
	}
	return "S" + e.Season + "E" + e.EpisodeNum
}

// Catalog lists each source once, ordered by season then episode number.
func Catalog(excerpts []types.Excerpt) []EpisodeInfo {
	seen := make(map[string]struct{})
	var out []EpisodeInfo
	for _, ex := range excerpts {
		if ex.SourceID == "" {
			continue
		}
		if _, ok := seen[ex.SourceID]; ok {
			continue
		}
		seen[ex.SourceID] = struct{}{}
		out = append(out, EpisodeInfo{
			SourceID:   ex.SourceID,
			Title:      ex.EpisodeTitle,
			Season:     ex.Season,
			EpisodeNum: ex.EpisodeNum,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := compareNumeric(out[i].Season, out[j].Season); c != 0 {
			return c < 0
		}
		return compareNumeric(out[i].EpisodeNum, out[j].EpisodeNum) < 0
	})
	return out
}

// compareNumeric orders numeric strings by value, numbers before text.
func compareNumeric(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai - bi
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
