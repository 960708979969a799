package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"
)

// inspectJS is the single in-page evaluation. It only reads page facts and
// returns them as a serializable record; strategy decisions happen in Go.
const inspectJS = `() => {
	const out = { playerItems: [], playerError: '', scripts: [], videos: [], sources: [], attributes: [] };
	const str = (v) => (typeof v === 'string' ? v : '');

	try {
		if (typeof window.jwplayer === 'function') {
			let players = [];
			const all = window.jwplayer();
			if (Array.isArray(all)) {
				players = all;
			} else {
				for (let i = 0; i < 32; i++) {
					const p = window.jwplayer(i);
					if (!p || typeof p.getPlaylist !== 'function' || players.includes(p)) break;
					players.push(p);
				}
			}
			players.forEach((p) => {
				if (!p || typeof p.getPlaylist !== 'function') return;
				const playlist = p.getPlaylist() || [];
				playlist.forEach((item) => {
					if (!item || !Array.isArray(item.sources)) return;
					out.playerItems.push({
						title: str(item.title),
						sources: item.sources.map((s) => (s && typeof s === 'object')
							? { file: s.file, src: s.src, type: s.type, label: s.label }
							: s),
					});
				});
			});
		}
	} catch (e) {
		out.playerError = String((e && e.message) || e);
	}

	document.querySelectorAll('script').forEach((s) => {
		out.scripts.push({ src: s.src || '', text: s.textContent || s.innerHTML || '' });
	});
	document.querySelectorAll('video').forEach((v) => {
		out.videos.push({ src: v.src || '', type: v.getAttribute('type') || '', label: '' });
	});
	document.querySelectorAll('video source').forEach((s) => {
		out.sources.push({ src: s.src || '', type: s.type || '', label: s.getAttribute('label') || '' });
	});
	document.querySelectorAll('*').forEach((el) => {
		for (const a of el.attributes) {
			if (a.name.includes('video') || a.name.includes('src') || a.name.includes('source')) {
				out.attributes.push({ name: a.name, value: a.value });
			}
		}
	});
	return out;
}`

// diagnosticsJS reads a snapshot of the page for the logs.
const diagnosticsJS = `() => ({
	title: document.title,
	hasPlayer: typeof window.jwplayer !== 'undefined',
	scripts: Array.from(document.querySelectorAll('script[src]')).map((s) => s.src),
	videos: Array.from(document.querySelectorAll('video')).map((v) => v.currentSrc || v.src || ''),
	iframes: Array.from(document.querySelectorAll('iframe')).map((f) => f.src || ''),
	bodyText: document.body ? document.body.innerText.substring(0, 1000) : '',
})`

type diagnostics struct {
	Title     string   `json:"title"`
	HasPlayer bool     `json:"hasPlayer"`
	Scripts   []string `json:"scripts"`
	Videos    []string `json:"videos"`
	Iframes   []string `json:"iframes"`
	BodyText  string   `json:"bodyText"`
}

// evaluator runs a script in the page and returns its result value.
type evaluator interface {
	Eval(ctx context.Context, js string) (gson.JSON, error)
}

// rodEvaluator evaluates on a live page, bounded by ctx.
type rodEvaluator struct {
	page *rod.Page
}

func (r rodEvaluator) Eval(ctx context.Context, js string) (gson.JSON, error) {
	res, err := r.page.Context(ctx).Eval(js)
	if err != nil {
		return gson.JSON{}, err
	}
	return res.Value, nil
}

// logDiagnostics logs what the page looks like before inspection. It never
// affects control flow: a failed or timed-out read is only logged.
func logDiagnostics(ctx context.Context, ev evaluator, timeout time.Duration, targetURL string) {
	diagCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	value, err := ev.Eval(diagCtx, diagnosticsJS)
	if err != nil {
		slog.Debug("diagnostic read failed", "url", targetURL, "error", err)
		return
	}
	var d diagnostics
	if err := value.Unmarshal(&d); err != nil {
		slog.Debug("diagnostic read malformed", "url", targetURL, "error", err)
		return
	}
	slog.Info("page diagnostics",
		"url", targetURL,
		"title", d.Title,
		"hasPlayer", d.HasPlayer,
		"scripts", d.Scripts,
		"videos", d.Videos,
		"iframes", d.Iframes,
		"bodyText", d.BodyText,
	)
}
