package models

// Extraction modes.
const (
	ModeBrowser = "browser"
	ModeStatic  = "static"
)

// ExtractRequest is the payload for POST /api/extract and POST /extract.
//
// URL is validated by the handler rather than by binding tags so that a
// missing URL and a malformed URL produce distinct error codes.
type ExtractRequest struct {
	// URL is the page embedding the player. Required.
	URL string `json:"url"`

	// Mode selects the pipeline.
	// "browser" (default): headless browser session with network capture.
	// "static": plain HTTP fetch, script/DOM strategies over the raw HTML.
	Mode string `json:"mode,omitempty" binding:"omitempty,oneof=browser static"`

	// MaxAge enables the result cache: a cached result younger than MaxAge
	// milliseconds is returned instead of running a new session.
	// Default: 0 (no caching).
	MaxAge int `json:"maxAge,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *ExtractRequest) Defaults() {
	if r.Mode == "" {
		r.Mode = ModeBrowser
	}
}
