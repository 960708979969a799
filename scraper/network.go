package scraper

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/jwx/extractor"
)

// networkHook feeds every response of a page into a Collector. JSON bodies
// that may embed media URLs are fetched once loading finishes.
type networkHook struct {
	page      *rod.Page
	collector *extractor.Collector

	mu      sync.Mutex
	pending map[proto.NetworkRequestID]string // request ID -> URL
	closed  bool                              // set by drain; no new fetches start
	bodies  sync.WaitGroup
}

func newNetworkHook(page *rod.Page, collector *extractor.Collector) *networkHook {
	return &networkHook{
		page:      page,
		collector: collector,
		pending:   make(map[proto.NetworkRequestID]string),
	}
}

// install enables the Network domain and starts consuming events. It must
// run before navigation so no early response is missed. Events stop when
// the page's context ends.
func (h *networkHook) install() error {
	if err := (proto.NetworkEnable{}).Call(h.page); err != nil {
		return err
	}
	wait := h.page.EachEvent(
		func(e *proto.NetworkResponseReceived) {
			h.onResponse(e)
		},
		func(e *proto.NetworkLoadingFinished) {
			h.onFinished(e)
		},
	)
	go wait()
	return nil
}

func (h *networkHook) onResponse(e *proto.NetworkResponseReceived) {
	if e.Response == nil {
		return
	}
	u := e.Response.URL
	ct := responseContentType(e.Response)

	if h.collector.Observe(u, ct, e.Response.Status) {
		slog.Debug("captured video response", "url", u, "status", e.Response.Status)
	}
	if extractor.WantsJSONBody(u, ct) {
		h.mu.Lock()
		h.pending[e.RequestID] = u
		h.mu.Unlock()
	}
}

// onFinished starts the body fetch for a pending JSON response and reports
// whether it did. Nothing starts once drain has begun.
func (h *networkHook) onFinished(e *proto.NetworkLoadingFinished) bool {
	h.mu.Lock()
	u, ok := h.pending[e.RequestID]
	delete(h.pending, e.RequestID)
	if !ok || h.closed {
		h.mu.Unlock()
		return false
	}
	h.bodies.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.bodies.Done()
		body, err := proto.NetworkGetResponseBody{RequestID: e.RequestID}.Call(h.page)
		if err != nil {
			slog.Debug("json body unavailable", "url", u, "error", err)
			return
		}
		data := []byte(body.Body)
		if body.Base64Encoded {
			if data, err = base64.StdEncoding.DecodeString(body.Body); err != nil {
				return
			}
		}
		if n := h.collector.ObserveJSON(data); n > 0 {
			slog.Debug("captured media urls from json", "url", u, "count", n)
		}
	}()
	return true
}

// drain stops new body fetches and waits for in-flight ones, giving up
// when ctx ends.
func (h *networkHook) drain(ctx context.Context) {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.bodies.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// responseContentType reads the content-type header case-insensitively,
// falling back to the reported MIME type.
func responseContentType(r *proto.NetworkResponse) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, "content-type") {
			return v.Str()
		}
	}
	return r.MIMEType
}

// idleExcludes keep streaming traffic from holding the network-idle wait
// open: players keep fetching segments for as long as they buffer.
var idleExcludes = []string{
	`\.(ts|m4s|m4a|m4v|aac|mp4)(\?|$)`,
	`\.m3u8?(\?|$)`,
	`/segment`,
}

var idleExcludeTypes = []proto.NetworkResourceType{
	proto.NetworkResourceTypeMedia,
	proto.NetworkResourceTypeWebSocket,
	proto.NetworkResourceTypeEventSource,
}
