package scraper

import (
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/use-agent/jwx/config"
)

// launchFlag is one browser command-line switch.
type launchFlag struct {
	name   flags.Flag
	values []string
}

// baselineFlags disable sandboxing, GPU and background throttling so the
// browser runs unattended inside containers.
var baselineFlags = []launchFlag{
	{name: "no-sandbox"},
	{name: "disable-setuid-sandbox"},
	{name: "disable-dev-shm-usage"},
	{name: "disable-gpu"},
	{name: "disable-software-rasterizer"},
	{name: "disable-background-timer-throttling"},
	{name: "disable-backgrounding-occluded-windows"},
	{name: "disable-renderer-backgrounding"},
	{name: "disable-features", values: []string{"TranslateUI"}},
	{name: "disable-ipc-flooding-protection"},
	{name: "no-first-run"},
	{name: "disable-blink-features", values: []string{"AutomationControlled"}},
}

// parseLaunchFlag turns an operator-supplied switch such as
// "--proxy-server=http://p:8080" or "--mute-audio" into a launchFlag.
func parseLaunchFlag(arg string) (launchFlag, bool) {
	arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
	if arg == "" {
		return launchFlag{}, false
	}
	name, value, hasValue := strings.Cut(arg, "=")
	if name == "" {
		return launchFlag{}, false
	}
	f := launchFlag{name: flags.Flag(name)}
	if hasValue {
		f.values = []string{value}
	}
	return f, true
}

// newLauncher builds the launcher for one session: baseline flags first,
// then operator extras, which may override a baseline value.
func newLauncher(cfg config.BrowserConfig) *launcher.Launcher {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(true)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}

	l.Delete(flags.Flag("enable-automation"))
	for _, f := range baselineFlags {
		l.Set(f.name, f.values...)
	}
	for _, arg := range cfg.ExtraArgs {
		if f, ok := parseLaunchFlag(arg); ok {
			l.Set(f.name, f.values...)
		}
	}
	return l
}
