package timecode

import (
	"fmt"
	"net/url"
	"strconv"
)

const watchURL = "https://www.youtube.com/watch"

// SecondsToTimestamp formats elapsed seconds as M:SS (150 -> "2:30").
func SecondsToTimestamp(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// BaseURL is the watch page for a source video, without a time offset.
func BaseURL(sourceID string) string {
	return watchURL + "?v=" + url.QueryEscape(sourceID)
}

// DeepLink points at the given second of a source video.
func DeepLink(sourceID string, seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return BaseURL(sourceID) + "&t=" + strconv.Itoa(seconds)
}
