package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/jwx/config"
	"github.com/use-agent/jwx/engine"
	"github.com/use-agent/jwx/extractor"
	"github.com/use-agent/jwx/models"
	"github.com/ysmood/gson"
)

// fakeFetcher serves canned bodies by URL.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) Fetch(_ context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.URL)
	f.mu.Unlock()
	body, ok := f.pages[req.URL]
	if !ok {
		return nil, fmt.Errorf("not found: %s", req.URL)
	}
	return &engine.FetchResult{Body: body, StatusCode: 200, FinalURL: req.URL}, nil
}

func newTestScraper(f engine.Fetcher, scan bool) *Scraper {
	return NewScraper(
		config.BrowserConfig{MaxSessions: 2},
		config.PipelineConfig{
			HTTPTimeout:         time.Second,
			ScanExternalScripts: scan,
			MaxExternalScripts:  2,
		},
		f,
	)
}

func TestExtract_Static(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://example.com/watch": `<html><body><video src="/a.mp4"></video></body></html>`,
	}}
	s := newTestScraper(f, false)

	res, err := s.Extract(context.Background(), &models.ExtractRequest{URL: "https://example.com/watch", Mode: models.ModeStatic})
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if res.Mode != models.ModeStatic || res.Captured != 0 {
		t.Errorf("unexpected result meta: %+v", res)
	}
	if len(res.Groups) == 0 || res.Groups[0].Title != models.TitleVideoElement {
		t.Fatalf("unexpected groups: %+v", res.Groups)
	}
	if res.Groups[0].Sources[0].File != "https://example.com/a.mp4" {
		t.Errorf("unexpected source: %+v", res.Groups[0].Sources[0])
	}
	for _, g := range res.Groups {
		if g.Title == models.TitleNetwork {
			t.Error("static mode has no network capture group")
		}
	}
}

func TestExtract_StaticFetchFailure(t *testing.T) {
	s := newTestScraper(&fakeFetcher{pages: map[string]string{}}, false)
	_, err := s.Extract(context.Background(), &models.ExtractRequest{URL: "https://example.com/missing", Mode: models.ModeStatic})

	var ee *models.ExtractError
	if !errors.As(err, &ee) || ee.Code != models.ErrCodeFetch {
		t.Fatalf("expected FETCH_FAILED, got %v", err)
	}
}

func TestExtract_ExternalScripts(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://example.com/watch": `<html><head>
			<script src="/js/one.js"></script>
			<script src="/js/two.js"></script>
			<script src="/js/three.js"></script>
		</head></html>`,
		"https://example.com/js/one.js": `var a = 1;`,
		"https://example.com/js/two.js": `jwplayer("p").setup({"sources":[{"file":"https://cdn/x.m3u8"}]});`,
	}}
	s := newTestScraper(f, true)

	res, err := s.Extract(context.Background(), &models.ExtractRequest{URL: "https://example.com/watch", Mode: models.ModeStatic})
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(res.Groups) != 2 || res.Groups[0].Title != models.TitleDirect || res.Groups[1].Title != models.TitleSimpleSetup {
		t.Fatalf("unexpected groups: %+v", res.Groups)
	}
	for _, c := range f.calls {
		if strings.HasSuffix(c, "three.js") {
			t.Error("external script cap exceeded")
		}
	}
}

func TestExtract_SessionLimiterHonorsCancellation(t *testing.T) {
	s := newTestScraper(nil, false)
	// Occupy every slot so the request has to wait.
	if err := s.sessions.Acquire(context.Background(), int64(s.maxSessions)); err != nil {
		t.Fatal(err)
	}
	defer s.sessions.Release(int64(s.maxSessions))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Extract(ctx, &models.ExtractRequest{URL: "https://example.com", Mode: models.ModeBrowser})

	var ee *models.ExtractError
	if !errors.As(err, &ee) || ee.Code != models.ErrCodeCanceled {
		t.Fatalf("expected REQUEST_CANCELED, got %v", err)
	}
	if st := s.Stats(); st.ActiveSessions != 0 || st.MaxSessions != 2 {
		t.Errorf("unexpected stats: %+v", st)
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{context.DeadlineExceeded, models.ErrCodeNavTimeout},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), models.ErrCodeNavTimeout},
		{context.Canceled, models.ErrCodeCanceled},
		{errors.New("net::ERR_NAME_NOT_RESOLVED"), models.ErrCodeNavigation},
	}
	for _, tt := range tests {
		if got := categorizeError(tt.err, "x"); got.Code != tt.code {
			t.Errorf("categorizeError(%v) = %s, want %s", tt.err, got.Code, tt.code)
		}
	}
}

func TestDwell(t *testing.T) {
	if err := dwell(context.Background(), 0); err != nil {
		t.Errorf("zero dwell: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := dwell(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("dwell must return promptly on cancellation")
	}
}

func TestParseLaunchFlag(t *testing.T) {
	tests := []struct {
		in     string
		name   string
		values []string
		ok     bool
	}{
		{"--mute-audio", "mute-audio", nil, true},
		{"--proxy-server=http://p:8080", "proxy-server", []string{"http://p:8080"}, true},
		{" --lang=en-US ", "lang", []string{"en-US"}, true},
		{"--", "", nil, false},
		{"", "", nil, false},
		{"--=x", "", nil, false},
	}
	for _, tt := range tests {
		f, ok := parseLaunchFlag(tt.in)
		if ok != tt.ok {
			t.Errorf("parseLaunchFlag(%q) ok = %v", tt.in, ok)
			continue
		}
		if !ok {
			continue
		}
		if string(f.name) != tt.name || len(f.values) != len(tt.values) {
			t.Errorf("parseLaunchFlag(%q) = %+v", tt.in, f)
			continue
		}
		for i := range tt.values {
			if f.values[i] != tt.values[i] {
				t.Errorf("parseLaunchFlag(%q) value = %q", tt.in, f.values[i])
			}
		}
	}
}

func TestIdleExcludes(t *testing.T) {
	media := []string{
		"https://cdn/hls/seg-001.ts",
		"https://cdn/hls/index.m3u8?token=1",
		"https://cdn/dash/chunk.m4s",
		"https://cdn/segment/12",
	}
	for _, u := range media {
		if !matchesAny(u, idleExcludes) {
			t.Errorf("%q should be excluded from idle tracking", u)
		}
	}
	if matchesAny("https://example.com/api/player.json", idleExcludes) {
		t.Error("api calls must count toward idle")
	}
}

func matchesAny(u string, patterns []string) bool {
	for _, p := range patterns {
		if regexp.MustCompile(p).MatchString(u) {
			return true
		}
	}
	return false
}

func TestToHeadersMap(t *testing.T) {
	m := toHeadersMap(map[string]string{"Accept-Language": "en-US"})
	if got := m["Accept-Language"].Str(); got != "en-US" {
		t.Errorf("header value = %q", got)
	}
}

// stuckEvaluator models a page whose main thread never yields: every
// evaluation blocks until its context ends.
type stuckEvaluator struct {
	mu    sync.Mutex
	calls int
}

func (e *stuckEvaluator) Eval(ctx context.Context, _ string) (gson.JSON, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	<-ctx.Done()
	return gson.JSON{}, ctx.Err()
}

// cannedEvaluator answers every evaluation with the same JSON.
type cannedEvaluator struct {
	value string
}

func (e cannedEvaluator) Eval(context.Context, string) (gson.JSON, error) {
	return gson.NewFrom(e.value), nil
}

func TestSettleAndInspect_StuckPageHitsDeadline(t *testing.T) {
	s := NewScraper(config.BrowserConfig{}, config.PipelineConfig{
		InitialDwell:   10 * time.Millisecond,
		SettleDwell:    10 * time.Millisecond,
		InspectTimeout: 50 * time.Millisecond,
	}, nil)
	ev := &stuckEvaluator{}

	start := time.Now()
	_, err := s.settleAndInspect(context.Background(), ev, "https://example.com")
	elapsed := time.Since(start)

	var ee *models.ExtractError
	if !errors.As(err, &ee) || ee.Code != models.ErrCodeInspection {
		t.Fatalf("expected %s, got %v", models.ErrCodeInspection, err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("sequence took %v, want it bounded by the inspect timeout", elapsed)
	}
	// The diagnostic read timed out without stopping the inspection.
	if ev.calls != 2 {
		t.Errorf("expected diagnostic and inspection evaluations, got %d", ev.calls)
	}
}

func TestSettleAndInspect_DecodesSnapshot(t *testing.T) {
	s := NewScraper(config.BrowserConfig{}, config.PipelineConfig{InspectTimeout: time.Second}, nil)
	ev := cannedEvaluator{value: `{"scripts":[{"src":"","text":"x"}],"videos":[{"src":"https://cdn/v.mp4","type":"","label":""}]}`}

	snap, err := s.settleAndInspect(context.Background(), ev, "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := extractor.MediaElement{Src: "https://cdn/v.mp4"}
	if len(snap.Scripts) != 1 || len(snap.Videos) != 1 || snap.Videos[0] != want {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestSettleAndInspect_CanceledDuringDwell(t *testing.T) {
	s := NewScraper(config.BrowserConfig{}, config.PipelineConfig{
		InitialDwell:   time.Hour,
		InspectTimeout: time.Second,
	}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ev := &stuckEvaluator{}

	_, err := s.settleAndInspect(ctx, ev, "https://example.com")
	var ee *models.ExtractError
	if !errors.As(err, &ee) || ee.Code != models.ErrCodeNavTimeout {
		t.Fatalf("expected %s, got %v", models.ErrCodeNavTimeout, err)
	}
	if ev.calls != 0 {
		t.Errorf("page was read %d times after the deadline", ev.calls)
	}
}

func TestNetworkHook_NoFetchAfterDrain(t *testing.T) {
	h := newNetworkHook(nil, extractor.NewCollector())
	h.onResponse(&proto.NetworkResponseReceived{
		RequestID: "1",
		Response: &proto.NetworkResponse{
			URL:      "https://cdn/player/config.json",
			MIMEType: "application/json",
			Status:   200,
		},
	})
	if len(h.pending) != 1 {
		t.Fatalf("expected one pending body, got %d", len(h.pending))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	h.drain(ctx)

	if h.onFinished(&proto.NetworkLoadingFinished{RequestID: "1"}) {
		t.Error("body fetch started after drain")
	}
	if len(h.pending) != 0 {
		t.Errorf("pending entry not cleared: %v", h.pending)
	}
}

func TestNetworkHook_UnknownRequestIgnored(t *testing.T) {
	h := newNetworkHook(nil, extractor.NewCollector())
	if h.onFinished(&proto.NetworkLoadingFinished{RequestID: "missing"}) {
		t.Error("fetch started for a request that was never pending")
	}
}

// truncatingFetcher reports every body as cut at the size cap.
type truncatingFetcher struct {
	pages map[string]string
}

func (f truncatingFetcher) Name() string { return "truncating" }

func (f truncatingFetcher) Fetch(_ context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	body, ok := f.pages[req.URL]
	if !ok {
		return nil, fmt.Errorf("not found: %s", req.URL)
	}
	return &engine.FetchResult{Body: body, StatusCode: 200, FinalURL: req.URL, Truncated: true}, nil
}

func TestExtract_TruncatedBodiesLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	f := truncatingFetcher{pages: map[string]string{
		"https://site.test/page": `<html><script src="https://site.test/app.js"></script></html>`,
		"https://site.test/app.js": `var x = 1;`,
	}}
	s := newTestScraper(f, true)

	if _, err := s.Extract(context.Background(), &models.ExtractRequest{URL: "https://site.test/page", Mode: models.ModeStatic}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logs := buf.String()
	if !strings.Contains(logs, "page body truncated") {
		t.Errorf("missing page truncation warning in %q", logs)
	}
	if !strings.Contains(logs, "external script truncated") {
		t.Errorf("missing script truncation warning in %q", logs)
	}
}
