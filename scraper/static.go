package scraper

import (
	"context"
	"log/slog"

	"github.com/use-agent/jwx/engine"
	"github.com/use-agent/jwx/extractor"
	"github.com/use-agent/jwx/models"
	"golang.org/x/sync/errgroup"
)

// runStatic inspects the raw HTML of a page without a browser. There is no
// player runtime and no network capture, so only the script and DOM
// strategies contribute.
func (s *Scraper) runStatic(ctx context.Context, targetURL string) (*Result, error) {
	res, err := s.fetcher.Fetch(ctx, &engine.FetchRequest{
		URL:         targetURL,
		Timeout:     s.pipelineCfg.HTTPTimeout,
		RequireHTML: true,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, categorizeError(ctx.Err(), "page fetch timed out")
		}
		return nil, models.NewExtractError(models.ErrCodeFetch, "failed to fetch page", err)
	}

	if res.Truncated {
		slog.Warn("page body truncated at size cap", "url", targetURL, "bytes", len(res.Body))
	}

	pageURL := res.FinalURL
	if pageURL == "" {
		pageURL = targetURL
	}
	snap, err := extractor.SnapshotFromHTML(res.Body, pageURL)
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeInspection, "failed to parse page HTML", err)
	}
	s.fillExternalScripts(ctx, &snap)

	inspection := extractor.Inspect(snap)
	groups := extractor.Aggregate(inspection.Groups, nil)

	logFailures(targetURL, inspection.Failures)
	slog.Info("static extraction finished",
		"url", targetURL,
		"title", res.Title,
		"groups", len(groups),
		"parseFailures", len(inspection.Failures),
	)

	return &Result{
		Groups:   groups,
		Failures: inspection.Failures,
		Mode:     models.ModeStatic,
	}, nil
}

// fillExternalScripts fetches the text of external scripts so the
// script-literal strategy can see setup calls that live outside the page.
// Fetches run in parallel; scripts keep their document order, and a failed
// fetch leaves that script empty.
func (s *Scraper) fillExternalScripts(ctx context.Context, snap *extractor.PageSnapshot) {
	if !s.pipelineCfg.ScanExternalScripts || s.fetcher == nil {
		return
	}

	var targets []int
	for i, sc := range snap.Scripts {
		if len(targets) >= s.pipelineCfg.MaxExternalScripts {
			break
		}
		if sc.Src != "" && sc.Text == "" {
			targets = append(targets, i)
		}
	}
	if len(targets) == 0 {
		return
	}

	texts := make([]string, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for n, idx := range targets {
		src := snap.Scripts[idx].Src
		g.Go(func() error {
			res, err := s.fetcher.Fetch(gctx, &engine.FetchRequest{
				URL:     src,
				Timeout: s.pipelineCfg.HTTPTimeout,
			})
			if err != nil {
				slog.Debug("external script fetch failed", "src", src, "error", err)
				return nil
			}
			if res.Truncated {
				slog.Warn("external script truncated at size cap", "src", src, "bytes", len(res.Body))
			}
			texts[n] = res.Body
			return nil
		})
	}
	_ = g.Wait()

	for n, idx := range targets {
		snap.Scripts[idx].Text = texts[n]
	}
	slog.Debug("external scripts fetched", "count", len(targets))
}
