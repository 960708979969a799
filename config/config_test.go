package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"JWX_PORT", "PORT", "JWX_ENV", "NODE_ENV", "JWX_BROWSER_ARGS", "PUPPETEER_ARGS", "JWX_MAX_SESSIONS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Server.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.App.Environment != "development" || cfg.App.IsProduction() {
		t.Errorf("Environment = %q", cfg.App.Environment)
	}
	if cfg.Pipeline.NavigationTimeout != 30*time.Second || cfg.Pipeline.InitialDwell != 5*time.Second || cfg.Pipeline.SettleDwell != 3*time.Second {
		t.Errorf("unexpected pipeline timings: %+v", cfg.Pipeline)
	}
	if len(cfg.Browser.ExtraArgs) != 0 {
		t.Errorf("ExtraArgs = %v, want none", cfg.Browser.ExtraArgs)
	}
	if cfg.Browser.MaxSessions != 4 {
		t.Errorf("MaxSessions = %d, want 4", cfg.Browser.MaxSessions)
	}
}

func TestLoad_FallbackNames(t *testing.T) {
	t.Setenv("JWX_PORT", "")
	t.Setenv("PORT", "8081")
	t.Setenv("JWX_ENV", "")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("JWX_BROWSER_ARGS", "")
	t.Setenv("PUPPETEER_ARGS", "--lang=en-US, --window-size=1280,720")

	cfg := Load()
	if cfg.Server.Port != 8081 {
		t.Errorf("Port = %d, want 8081", cfg.Server.Port)
	}
	if !cfg.App.IsProduction() {
		t.Error("expected production environment")
	}
	want := []string{"--lang=en-US", "--window-size=1280", "720"}
	if !reflect.DeepEqual(cfg.Browser.ExtraArgs, want) {
		t.Errorf("ExtraArgs = %v, want %v", cfg.Browser.ExtraArgs, want)
	}
}

func TestLoad_PrimaryNameWins(t *testing.T) {
	t.Setenv("JWX_PORT", "9000")
	t.Setenv("PORT", "8081")
	if got := Load().Server.Port; got != 9000 {
		t.Errorf("Port = %d, want 9000", got)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" , ,", []string{}},
		{"--a, --b=1 ,--c", []string{"--a", "--b=1", "--c"}},
	}
	for _, tt := range tests {
		got := splitList(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitList(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
