package extractor

import (
	"strconv"

	"github.com/use-agent/jwx/models"
	"github.com/use-agent/jwx/quality"
)

// Aggregate appends the network capture group to the DOM groups. The group
// is omitted entirely when nothing was captured. Sources are never
// deduplicated across groups.
func Aggregate(dom []models.RawSourceGroup, observations []models.NetworkObservation) []models.RawSourceGroup {
	out := make([]models.RawSourceGroup, 0, len(dom)+1)
	out = append(out, dom...)
	if len(observations) == 0 {
		return out
	}

	sources := make([]models.RawSource, 0, len(observations))
	for _, o := range observations {
		label := "Status: " + strconv.Itoa(o.StatusCode)
		if o.Provenance != "" {
			label += " (" + o.Provenance + ")"
		}
		sources = append(sources, models.RawSource{
			File:  o.URL,
			Type:  orDefault(o.ContentType, defaultMediaType),
			Label: label,
		})
	}
	return append(out, models.RawSourceGroup{Title: models.TitleNetwork, Sources: sources})
}

// Normalize converts raw groups to their public shape and returns the total
// number of videos. Quality is derived from the raw label, before the
// display default is applied.
func Normalize(groups []models.RawSourceGroup) ([]models.SourceGroup, int) {
	out := make([]models.SourceGroup, 0, len(groups))
	total := 0
	for _, g := range groups {
		videos := make([]models.NormalizedVideo, 0, len(g.Sources))
		for _, s := range g.Sources {
			videos = append(videos, models.NormalizedVideo{
				URL:     s.Locator(),
				Type:    orDefault(s.Type, defaultMediaType),
				Label:   orDefault(s.Label, "Video Source"),
				Quality: quality.Classify(s.Label),
			})
		}
		total += len(videos)
		out = append(out, models.SourceGroup{Type: g.Title, Videos: videos})
	}
	return out, total
}
