package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/jwx/cache"
	"github.com/use-agent/jwx/config"
	"github.com/use-agent/jwx/extractor"
	"github.com/use-agent/jwx/models"
)

// Extract returns a handler for POST /api/extract.
//
// Orchestration flow:
//  1. Parse request, apply defaults.
//  2. Validate URL (MISSING_URL / INVALID_URL → 400, no session).
//  3. Cache lookup when maxAge > 0.
//  4. Extractor.Extract → raw groups.
//  5. Normalize groups, attach quality, count sources.
//  6. Cache store, return 200.
func Extract(ex Extractor, cc *cache.Cache, app config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// ── 1. Parse request (an empty body falls through to MISSING_URL)
		var req models.ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondInputError(c, models.NewExtractError(models.ErrCodeInvalidBody, err.Error(), err))
			return
		}
		req.Defaults()

		// ── 2. Validate URL ─────────────────────────────────────────
		if verr := validateURL(req.URL); verr != nil {
			respondInputError(c, verr)
			return
		}
		req.URL = strings.TrimSpace(req.URL)

		// ── 3. Cache lookup ─────────────────────────────────────────
		cacheKey := cache.Key(req.URL, req.Mode)
		if cc != nil && req.MaxAge > 0 {
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				c.JSON(http.StatusOK, models.ExtractResponse{
					Success:     true,
					Data:        cached,
					CacheStatus: "hit",
				})
				return
			}
		}

		// ── 4. Extract ──────────────────────────────────────────────
		start := time.Now()
		result, err := ex.Extract(c.Request.Context(), &req)
		if err != nil {
			slog.Error("extraction failed", "url", req.URL, "mode", req.Mode, "elapsed", time.Since(start).Round(time.Millisecond), "error", err)
			respondExtractionError(c, err, app)
			return
		}

		// ── 5. Normalize ────────────────────────────────────────────
		sources, total := extractor.Normalize(result.Groups)
		data := &models.ExtractData{
			URL:          req.URL,
			ExtractedAt:  time.Now().UTC(),
			Sources:      sources,
			TotalSources: total,
		}
		resp := models.ExtractResponse{Success: true, Data: data}

		// ── 6. Cache store ──────────────────────────────────────────
		if cc != nil && req.MaxAge > 0 {
			cc.Set(cacheKey, data)
			resp.CacheStatus = "miss"
		}

		c.JSON(http.StatusOK, resp)
	}
}

// LegacyExtract returns a handler for POST /extract. It answers with the
// raw group sequence and plain-string errors.
func LegacyExtract(ex Extractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, models.LegacyExtractResponse{Error: err.Error()})
			return
		}
		req.Defaults()

		if verr := validateURL(req.URL); verr != nil {
			msg := verr.Message
			if verr.Code == models.ErrCodeMissingURL {
				msg = "URL is required"
			}
			c.JSON(http.StatusBadRequest, models.LegacyExtractResponse{Error: msg})
			return
		}
		req.URL = strings.TrimSpace(req.URL)

		result, err := ex.Extract(c.Request.Context(), &req)
		if err != nil {
			slog.Error("legacy extraction failed", "url", req.URL, "error", err)
			c.JSON(http.StatusInternalServerError, models.LegacyExtractResponse{Error: err.Error()})
			return
		}

		groups := result.Groups
		if groups == nil {
			groups = []models.RawSourceGroup{}
		}
		c.JSON(http.StatusOK, models.LegacyExtractResponse{Success: true, Data: groups})
	}
}

// respondInputError writes a 400 for a request rejected before extraction.
func respondInputError(c *gin.Context, e *models.ExtractError) {
	c.JSON(http.StatusBadRequest, models.ExtractResponse{
		Success: false,
		Error:   e.ToDetail(),
	})
}

// respondExtractionError folds every pipeline failure into EXTRACTION_FAILED.
// The underlying error text is exposed only outside production.
func respondExtractionError(c *gin.Context, err error, app config.AppConfig) {
	detail := &models.ErrorDetail{
		Code:    models.ErrCodeExtraction,
		Message: "Failed to extract video sources",
	}
	if !app.IsProduction() {
		detail.Details = err.Error()
	}
	c.JSON(http.StatusInternalServerError, models.ExtractResponse{
		Success: false,
		Error:   detail,
	})
}
