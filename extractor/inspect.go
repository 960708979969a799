package extractor

import "github.com/use-agent/jwx/models"

// Inspection is the outcome of running every DOM/script strategy over one
// snapshot. Failures are per-match diagnostics; they never empty Groups.
type Inspection struct {
	Groups   []models.RawSourceGroup
	Failures []ParseFailure
}

var (
	attrNameHints  = []string{"video", "src", "source"}
	attrValueHints = []string{".mp4", ".m3u8", "stream"}
)

const defaultMediaType = "video/mp4"

// Inspect applies the strategies in fixed order: player runtime, script
// literals, video elements, source elements, attribute heuristics. Each one
// appends independently and none short-circuits the rest.
func Inspect(snap PageSnapshot) Inspection {
	var res Inspection

	res.Groups = append(res.Groups, playerRuntimeGroups(snap.PlayerItems)...)

	for i, s := range snap.Scripts {
		if !isSetupCandidate(s.Text) {
			continue
		}
		groups, failures := scriptSetupGroups(i, s.Text)
		res.Groups = append(res.Groups, groups...)
		res.Failures = append(res.Failures, failures...)
	}

	res.Groups = append(res.Groups, videoElementGroups(snap.Videos)...)

	if g, ok := sourceElementGroup(snap.Sources); ok {
		res.Groups = append(res.Groups, g)
	}

	res.Groups = append(res.Groups, attributeGroups(snap.Attributes)...)

	return res
}

func playerRuntimeGroups(items []PlayerItem) []models.RawSourceGroup {
	var groups []models.RawSourceGroup
	for _, item := range items {
		if len(item.Sources) == 0 {
			continue
		}
		title := item.Title
		if title == "" {
			title = models.TitleUntitled
		}
		groups = append(groups, models.RawSourceGroup{Title: title, Sources: item.Sources})
	}
	return groups
}

func videoElementGroups(videos []MediaElement) []models.RawSourceGroup {
	var groups []models.RawSourceGroup
	for _, v := range videos {
		if v.Src == "" {
			continue
		}
		groups = append(groups, models.RawSourceGroup{
			Title:   models.TitleVideoElement,
			Sources: []models.RawSource{{File: v.Src, Type: orDefault(v.Type, defaultMediaType)}},
		})
	}
	return groups
}

func sourceElementGroup(sources []MediaElement) (models.RawSourceGroup, bool) {
	if len(sources) == 0 {
		return models.RawSourceGroup{}, false
	}
	out := make([]models.RawSource, 0, len(sources))
	for _, s := range sources {
		out = append(out, models.RawSource{
			File:  s.Src,
			Type:  orDefault(s.Type, defaultMediaType),
			Label: orDefault(s.Label, "Source"),
		})
	}
	return models.RawSourceGroup{Title: models.TitleVideoSources, Sources: out}, true
}

func attributeGroups(attrs []Attribute) []models.RawSourceGroup {
	var groups []models.RawSourceGroup
	for _, a := range attrs {
		if !containsAny(a.Name, attrNameHints) || !containsAny(a.Value, attrValueHints) {
			continue
		}
		groups = append(groups, models.RawSourceGroup{
			Title:   models.TitleDataAttribute + a.Name,
			Sources: []models.RawSource{{File: a.Value, Type: defaultMediaType}},
		})
	}
	return groups
}

// isMediaAttributeName reports whether an attribute name is collected into
// a snapshot at all.
func isMediaAttributeName(name string) bool {
	return containsAny(name, attrNameHints)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
