package extractor

import "github.com/use-agent/jwx/models"

// PageSnapshot is the serializable record produced by the single in-page
// evaluation (or built from raw HTML in static mode). It carries page facts
// only; every strategy decision is made in Go.
type PageSnapshot struct {
	// PlayerItems are playlist items read from live player instances.
	PlayerItems []PlayerItem `json:"playerItems"`

	// PlayerError is the message of a failure while querying the player runtime.
	PlayerError string `json:"playerError,omitempty"`

	// Scripts are all script elements in document order. Text is empty for
	// external scripts unless it was fetched separately.
	Scripts []Script `json:"scripts"`

	// Videos are the <video> elements.
	Videos []MediaElement `json:"videos"`

	// Sources are the <source> elements nested in a <video>.
	Sources []MediaElement `json:"sources"`

	// Attributes are element attributes whose name mentions video/src/source.
	Attributes []Attribute `json:"attributes"`
}

// PlayerItem is one playlist entry of a running player instance.
type PlayerItem struct {
	Title   string             `json:"title"`
	Sources []models.RawSource `json:"sources"`
}

// Script is one script element.
type Script struct {
	Src  string `json:"src"`
	Text string `json:"text"`
}

// MediaElement is a <video> or <source> element. Src is the resolved URL.
type MediaElement struct {
	Src   string `json:"src"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// Attribute is one element attribute.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
