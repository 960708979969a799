package engine

import (
	"context"
	"time"
)

// Fetcher retrieves a single resource without a browser.
type Fetcher interface {
	// Name returns the fetcher identifier (e.g. "http").
	Name() string

	// Fetch retrieves the resource for the given request.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything a fetcher needs for one GET.
type FetchRequest struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration

	// MaxBytes caps the body size; zero means DefaultMaxBody.
	MaxBytes int64

	// RequireHTML rejects responses that are not HTML, as for a page fetch.
	RequireHTML bool
}

// FetchResult is the output of a successful fetch.
type FetchResult struct {
	Body        string
	Title       string
	ContentType string
	StatusCode  int
	FinalURL    string
	Truncated   bool
}
