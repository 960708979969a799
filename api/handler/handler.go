package handler

import (
	"context"
	"net/url"
	"strings"

	"github.com/use-agent/jwx/models"
	"github.com/use-agent/jwx/scraper"
)

// Extractor runs the extraction pipeline. *scraper.Scraper implements it.
type Extractor interface {
	Extract(ctx context.Context, req *models.ExtractRequest) (*scraper.Result, error)
	Stats() models.SessionStats
}

// validateURL rejects a request before any session starts. Only absolute
// http(s) URLs with a host are accepted.
func validateURL(raw string) *models.ExtractError {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.NewExtractError(models.ErrCodeMissingURL, "URL parameter is required", nil)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return models.NewExtractError(models.ErrCodeInvalidURL, "Invalid URL format", err)
	}
	return nil
}
