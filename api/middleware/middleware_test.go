package middleware

import (
	"testing"
	"time"

	"github.com/use-agent/jwx/config"
)

func TestKnownKey(t *testing.T) {
	keys := [][]byte{[]byte("alpha"), []byte("beta")}
	tests := []struct {
		key  string
		want bool
	}{
		{"alpha", true},
		{"beta", true},
		{"alph", false},
		{"gamma", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := knownKey(keys, []byte(tt.key)); got != tt.want {
			t.Errorf("knownKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestLimiterStore(t *testing.T) {
	s := newLimiterStore(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 2})
	now := time.Now()

	a := s.get("1.2.3.4", now)
	if a != s.get("1.2.3.4", now) {
		t.Fatal("same identity must share a limiter")
	}
	if !a.Allow() || !a.Allow() {
		t.Fatal("burst of 2 should be allowed")
	}
	if a.Allow() {
		t.Error("third immediate request should be limited")
	}

	s.get("5.6.7.8", now.Add(-2*time.Hour))
	s.sweep(now.Add(-time.Hour))
	if len(s.limiters) != 1 {
		t.Errorf("expected stale entry to be swept, have %d", len(s.limiters))
	}
}
