package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	scriptSel      = cascadia.MustCompile("script")
	videoSel       = cascadia.MustCompile("video")
	videoSourceSel = cascadia.MustCompile("video source")
)

// SnapshotFromHTML builds a PageSnapshot from raw, unrendered HTML. There is
// no player runtime, so PlayerItems is always empty. Element src values are
// resolved against pageURL the way a browser resolves the src property.
func SnapshotFromHTML(rawHTML, pageURL string) (PageSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return PageSnapshot{}, err
	}
	base, _ := url.Parse(pageURL)

	var snap PageSnapshot

	doc.FindMatcher(scriptSel).Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		snap.Scripts = append(snap.Scripts, Script{
			Src:  resolveRef(base, src),
			Text: s.Text(),
		})
	})

	doc.FindMatcher(videoSel).Each(func(_ int, s *goquery.Selection) {
		snap.Videos = append(snap.Videos, mediaElement(base, s))
	})

	doc.FindMatcher(videoSourceSel).Each(func(_ int, s *goquery.Selection) {
		snap.Sources = append(snap.Sources, mediaElement(base, s))
	})

	for _, n := range doc.Find("*").Nodes {
		snap.Attributes = append(snap.Attributes, mediaAttributes(n)...)
	}

	return snap, nil
}

func mediaElement(base *url.URL, s *goquery.Selection) MediaElement {
	src, _ := s.Attr("src")
	typ, _ := s.Attr("type")
	label, _ := s.Attr("label")
	return MediaElement{Src: resolveRef(base, src), Type: typ, Label: label}
}

// mediaAttributes returns the attributes of n whose name hints at media.
// Values are kept verbatim, unresolved.
func mediaAttributes(n *html.Node) []Attribute {
	if n.Type != html.ElementNode {
		return nil
	}
	var out []Attribute
	for _, a := range n.Attr {
		if a.Namespace != "" || !isMediaAttributeName(a.Key) {
			continue
		}
		out = append(out, Attribute{Name: a.Key, Value: a.Val})
	}
	return out
}

// resolveRef resolves ref against base. An empty ref stays empty.
func resolveRef(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if base == nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
