package scraper

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/use-agent/jwx/config"
	"github.com/use-agent/jwx/engine"
	"github.com/use-agent/jwx/models"
	"golang.org/x/sync/semaphore"
)

// Scraper runs extraction sessions. Every browser-mode call owns a fresh
// browser process; the only shared state is configuration and the session
// limiter. It is safe for concurrent use.
type Scraper struct {
	browserCfg  config.BrowserConfig
	pipelineCfg config.PipelineConfig
	fetcher     engine.Fetcher

	sessions       *semaphore.Weighted
	maxSessions    int
	activeSessions atomic.Int32
}

// NewScraper creates a Scraper. No browser is started until a request
// needs one. fetcher serves static mode and external script fetches.
func NewScraper(browserCfg config.BrowserConfig, pipelineCfg config.PipelineConfig, fetcher engine.Fetcher) *Scraper {
	maxSessions := browserCfg.MaxSessions
	if maxSessions <= 0 {
		maxSessions = 1
	}
	return &Scraper{
		browserCfg:  browserCfg,
		pipelineCfg: pipelineCfg,
		fetcher:     fetcher,
		sessions:    semaphore.NewWeighted(int64(maxSessions)),
		maxSessions: maxSessions,
	}
}

// Stats returns a snapshot of the session limiter's state.
func (s *Scraper) Stats() models.SessionStats {
	return models.SessionStats{
		MaxSessions:    s.maxSessions,
		ActiveSessions: int(s.activeSessions.Load()),
	}
}

// Extract runs the pipeline for one validated request.
func (s *Scraper) Extract(ctx context.Context, req *models.ExtractRequest) (*Result, error) {
	if req.Mode == models.ModeStatic {
		return s.runStatic(ctx, req.URL)
	}

	// ── Session limiter: wait for a free slot, honoring cancellation ──
	if err := s.sessions.Acquire(ctx, 1); err != nil {
		return nil, models.NewExtractError(models.ErrCodeCanceled, "gave up waiting for a browser session", err)
	}
	defer s.sessions.Release(1)

	s.activeSessions.Add(1)
	defer s.activeSessions.Add(-1)

	slog.Debug("browser session acquired", "url", req.URL, "active", s.activeSessions.Load())
	return s.runSession(ctx, req.URL)
}
