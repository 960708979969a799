package main

import (
	"strings"
	"testing"
	"time"

	"github.com/use-agent/jwx/models"
)

func TestFormatSources(t *testing.T) {
	d := &models.ExtractData{
		URL:         "https://example.com/watch",
		ExtractedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Sources: []models.SourceGroup{{
			Type: "Network Captured URLs",
			Videos: []models.NormalizedVideo{
				{URL: "https://cdn/master.m3u8", Type: "application/vnd.apple.mpegurl", Label: "Status: 200", Quality: "Video Segment"},
			},
		}},
		TotalSources: 1,
	}

	out := formatSources(d)
	for _, want := range []string{
		"Source: https://example.com/watch",
		"Total sources: 1",
		"## Network Captured URLs (1)",
		"- [Video Segment] https://cdn/master.m3u8",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatSources_Empty(t *testing.T) {
	out := formatSources(&models.ExtractData{URL: "https://example.com"})
	if !strings.Contains(out, "No video sources found.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
