// Package quality maps free-text source labels to coarse quality buckets.
package quality

import (
	"regexp"
	"strings"
)

// Quality tags.
const (
	Unknown        = "Unknown"
	VideoSegment   = "Video Segment"
	MasterPlaylist = "Master Playlist"
	Audio          = "Audio"
)

type rule struct {
	pattern *regexp.Regexp
	quality string
}

// rules are tried in order; the first match wins.
var rules = []rule{
	{regexp.MustCompile(`(?i)1080p|fullhd|fhd`), "1080p"},
	{regexp.MustCompile(`(?i)720p|hd`), "720p"},
	{regexp.MustCompile(`(?i)480p|sd`), "480p"},
	{regexp.MustCompile(`(?i)360p`), "360p"},
	{regexp.MustCompile(`(?i)240p`), "240p"},
	{regexp.MustCompile(`(?i)144p`), "144p"},
	{regexp.MustCompile(`(?i)master|playlist`), MasterPlaylist},
	{regexp.MustCompile(`(?i)audio|eng|english`), Audio},
}

// Classify returns the quality tag for a label. Network-captured labels
// ("Status: 200") that match no rule are reported as segments.
func Classify(label string) string {
	if label == "" {
		return Unknown
	}
	for _, r := range rules {
		if r.pattern.MatchString(label) {
			return r.quality
		}
	}
	if strings.Contains(label, "Status:") {
		return VideoSegment
	}
	return Unknown
}
