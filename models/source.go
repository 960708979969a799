package models

import (
	"bytes"
	"encoding/json"
)

// Group titles used as provenance labels.
const (
	TitleUntitled      = "Untitled"
	TitleConfiguration = "Configuration Found"
	TitleDirect        = "Direct Sources"
	TitleSimpleSetup   = "Simple Setup Sources"
	TitleVideoElement  = "Video Element"
	TitleVideoSources  = "Video Sources"
	TitleDataAttribute = "Data Attribute: "
	TitleNetwork       = "Network Captured URLs"
)

// RawSource is one candidate media source as found on the page. Page data
// has no fixed shape, so every field is optional: a source may be an object
// with file/src/type/label, or a bare URL string.
type RawSource struct {
	File  string `json:"file,omitempty"`
	Src   string `json:"src,omitempty"`
	Type  string `json:"type,omitempty"`
	Label string `json:"label,omitempty"`

	// Bare holds the value when the page supplied a plain string instead of
	// an object.
	Bare string `json:"-"`
}

// Locator returns the media URL, preferring file over src over a bare string.
func (s RawSource) Locator() string {
	switch {
	case s.File != "":
		return s.File
	case s.Src != "":
		return s.Src
	default:
		return s.Bare
	}
}

// MarshalJSON writes bare sources back as strings so the legacy endpoint
// echoes page data in the shape it was found.
func (s RawSource) MarshalJSON() ([]byte, error) {
	if s.Bare != "" && s.File == "" && s.Src == "" && s.Type == "" && s.Label == "" {
		return json.Marshal(s.Bare)
	}
	type plain RawSource
	return json.Marshal(plain(s))
}

// UnmarshalJSON accepts a string, an object, or anything else. Unknown
// shapes decode to an empty source instead of failing the whole group.
func (s *RawSource) UnmarshalJSON(data []byte) error {
	*s = RawSource{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		return json.Unmarshal(data, &s.Bare)
	case '{':
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var fields map[string]any
		if err := dec.Decode(&fields); err != nil {
			return nil
		}
		s.File = scalarString(fields["file"])
		s.Src = scalarString(fields["src"])
		s.Type = scalarString(fields["type"])
		s.Label = scalarString(fields["label"])
	}
	return nil
}

// scalarString renders JSON scalars as text and drops everything else.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
	}
	return ""
}

// RawSourceGroup is a named bundle of sources found by one strategy.
// Titles are provenance tags, not identifiers; several groups may share one.
type RawSourceGroup struct {
	Title   string      `json:"title"`
	Sources []RawSource `json:"sources"`
}

// NetworkObservation is one intercepted response, captured at the moment it
// was received. Provenance is non-empty only for URLs found inside a JSON body.
type NetworkObservation struct {
	URL         string
	ContentType string
	StatusCode  int
	Provenance  string
}
