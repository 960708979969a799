package scraper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/jwx/extractor"
	"github.com/use-agent/jwx/models"
	"github.com/ysmood/gson"
)

// runSession drives one headless browser through a single page.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Launch                 – fresh browser process with the hardened flag set
//  2. DEFER: teardown        – close browser, kill process, remove profile dir
//  3. Open page + identity   – one tab, desktop user agent, optional stealth
//  4. Network hook           – MUST be installed before Navigate
//  5. Idle listener setup    – MUST be registered before Navigate
//  6. Navigate + idle        – bounded by the navigation timeout
//  7. Dwell + diagnostics    – initial dwell, diagnostic read, settle dwell
//  8. Inspect                – one in-page evaluation returning a PageSnapshot
//  9. Aggregate              – strategies in Go, network capture group last
//
// Once step 1 succeeds, step 2 runs on every exit path, including panics
// and timeouts.
func (s *Scraper) runSession(ctx context.Context, targetURL string) (*Result, error) {
	// Event listeners and body fetches stop when the session returns.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// ── 1. Launch ─────────────────────────────────────────────────────
	// Launch kills the process itself when it fails.
	l := newLauncher(s.browserCfg)
	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeBrowserLaunch, "failed to launch browser", err)
	}

	// ── 2. DEFER: teardown ────────────────────────────────────────────
	// Cleanup blocks until the process exits, so Kill must run first.
	defer l.Cleanup()
	defer l.Kill()
	slog.Debug("browser launched", "url", targetURL, "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewExtractError(models.ErrCodeBrowserLaunch, "failed to connect to browser", err)
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			slog.Debug("browser close failed", "error", closeErr)
		}
		slog.Debug("browser session closed", "url", targetURL)
	}()

	// ── 3. Open page + identity ───────────────────────────────────────
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeBrowserLaunch, "failed to open page", err)
	}
	if s.browserCfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: s.browserCfg.UserAgent}); err != nil {
		slog.Warn("failed to set user agent", "error", err)
	}

	p := page.Context(ctx)

	// ── 4. Network hook ───────────────────────────────────────────────
	collector := extractor.NewCollector()
	hook := newNetworkHook(p, collector)
	if err := hook.install(); err != nil {
		return nil, models.NewExtractError(models.ErrCodeBrowserLaunch, "failed to enable network capture", err)
	}
	if err := (proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(pageHeaders)}).Call(p); err != nil {
		slog.Warn("failed to set extra headers", "error", err)
	}

	// ── 5. Idle listener setup ────────────────────────────────────────
	navCtx, navCancel := context.WithTimeout(ctx, s.pipelineCfg.NavigationTimeout)
	defer navCancel()
	pn := p.Context(navCtx)
	waitIdle := pn.WaitRequestIdle(500*time.Millisecond, nil, idleExcludes, idleExcludeTypes)

	// ── 6. Navigate + idle ────────────────────────────────────────────
	start := time.Now()
	if err := pn.Navigate(targetURL); err != nil {
		return nil, categorizeError(err, "navigation to target URL failed")
	}
	waitIdle()
	if err := navCtx.Err(); err != nil {
		return nil, categorizeError(err, "page did not reach network idle")
	}
	navCancel()
	slog.Info("page settled", "url", targetURL, "elapsed", time.Since(start).Round(time.Millisecond), "captured", collector.Len())

	// ── 7 + 8. Dwell, diagnostics, inspect ────────────────────────────
	snap, err := s.settleAndInspect(ctx, rodEvaluator{page: p}, targetURL)
	if err != nil {
		return nil, err
	}
	s.fillExternalScripts(ctx, &snap)

	drainCtx, drainCancel := context.WithTimeout(ctx, 2*time.Second)
	hook.drain(drainCtx)
	drainCancel()

	// ── 9. Aggregate ──────────────────────────────────────────────────
	inspection := extractor.Inspect(snap)
	observations := collector.Observations()
	groups := extractor.Aggregate(inspection.Groups, observations)

	logFailures(targetURL, inspection.Failures)
	slog.Info("extraction finished",
		"url", targetURL,
		"groups", len(groups),
		"captured", len(observations),
		"parseFailures", len(inspection.Failures),
	)

	return &Result{
		Groups:   groups,
		Failures: inspection.Failures,
		Captured: len(observations),
		Mode:     models.ModeBrowser,
	}, nil
}

// settleAndInspect waits for the player to settle, logs a diagnostic read
// and runs the inspection. Both page reads are bounded by InspectTimeout.
func (s *Scraper) settleAndInspect(ctx context.Context, ev evaluator, targetURL string) (extractor.PageSnapshot, error) {
	if err := dwell(ctx, s.pipelineCfg.InitialDwell); err != nil {
		return extractor.PageSnapshot{}, categorizeError(err, "request canceled during dwell")
	}
	logDiagnostics(ctx, ev, s.pipelineCfg.InspectTimeout, targetURL)
	if err := dwell(ctx, s.pipelineCfg.SettleDwell); err != nil {
		return extractor.PageSnapshot{}, categorizeError(err, "request canceled during dwell")
	}
	return s.inspectPage(ctx, ev)
}

// inspectPage runs the in-page evaluation once, bounded by InspectTimeout.
func (s *Scraper) inspectPage(ctx context.Context, ev evaluator) (extractor.PageSnapshot, error) {
	evalCtx, cancel := context.WithTimeout(ctx, s.pipelineCfg.InspectTimeout)
	defer cancel()

	var snap extractor.PageSnapshot
	value, err := ev.Eval(evalCtx, inspectJS)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return snap, models.NewExtractError(models.ErrCodeInspection, "page inspection timed out", err)
		}
		return snap, models.NewExtractError(models.ErrCodeInspection, "page inspection failed", err)
	}
	if err := value.Unmarshal(&snap); err != nil {
		return snap, models.NewExtractError(models.ErrCodeInspection, "malformed inspection result", err)
	}
	if snap.PlayerError != "" {
		slog.Debug("player runtime query failed", "error", snap.PlayerError)
	}
	return snap, nil
}

// pageHeaders accompany every request the page makes.
var pageHeaders = map[string]string{
	"Accept-Language": "en-US,en;q=0.9",
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// dwell waits for d unless ctx ends first.
func dwell(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func logFailures(targetURL string, failures []extractor.ParseFailure) {
	for _, f := range failures {
		slog.Debug("setup config parse failed", "url", targetURL, "script", f.Script, "pass", f.Pass, "error", f.Err)
	}
}

// categorizeError wraps raw errors into typed ExtractErrors so the API layer
// can log and report them.
func categorizeError(err error, msg string) *models.ExtractError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewExtractError(models.ErrCodeNavTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewExtractError(models.ErrCodeCanceled, "request canceled", err)
	default:
		return models.NewExtractError(models.ErrCodeNavigation, msg, err)
	}
}
