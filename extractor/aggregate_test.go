package extractor

import (
	"testing"

	"github.com/use-agent/jwx/models"
)

func TestAggregate_NetworkGroupLast(t *testing.T) {
	dom := []models.RawSourceGroup{
		{Title: "A", Sources: []models.RawSource{{File: "https://cdn/a.mp4"}}},
		{Title: "B", Sources: []models.RawSource{{File: "https://cdn/a.mp4"}}},
	}
	obs := []models.NetworkObservation{
		{URL: "https://cdn/a.mp4", ContentType: "video/mp4", StatusCode: 206},
	}

	got := Aggregate(dom, obs)
	if len(got) != 3 || got[0].Title != "A" || got[1].Title != "B" || got[2].Title != models.TitleNetwork {
		t.Fatalf("unexpected order: %v", titles(got))
	}
	if got[2].Sources[0].Label != "Status: 206" {
		t.Errorf("unexpected label: %q", got[2].Sources[0].Label)
	}
}

func TestAggregate_NoObservations(t *testing.T) {
	dom := []models.RawSourceGroup{{Title: "A"}, {Title: "B"}}
	got := Aggregate(dom, nil)
	if len(got) != 2 {
		t.Fatalf("network group must be absent, got %v", titles(got))
	}
}

func TestAggregate_JSONOnlySignal(t *testing.T) {
	c := NewCollector()
	url, ct := "https://api.example.com/stream/42", "application/json"
	if c.Observe(url, ct, 200) {
		t.Fatal("JSON response itself is not a video")
	}
	if !WantsJSONBody(url, ct) {
		t.Fatal("stream JSON should be walked")
	}
	c.ObserveJSON([]byte(`{"stream":{"hls":"https://x/a.m3u8"}}`))

	got := Aggregate(Inspect(PageSnapshot{}).Groups, c.Observations())
	if len(got) != 1 || got[0].Title != models.TitleNetwork {
		t.Fatalf("expected only the network group, got %v", titles(got))
	}
	if len(got[0].Sources) != 1 {
		t.Fatalf("expected one source, got %d", len(got[0].Sources))
	}
	src := got[0].Sources[0]
	if src.File != "https://x/a.m3u8" || src.Label != "Status: 200 (JSON response)" {
		t.Errorf("unexpected source: %+v", src)
	}
}

func TestNormalize(t *testing.T) {
	groups := []models.RawSourceGroup{
		{Title: "Configuration Found", Sources: []models.RawSource{
			{File: "https://cdn/1080.mp4", Label: "1080p"},
			{Src: "https://cdn/src.m3u8", Type: "application/x-mpegURL"},
			{Bare: "https://cdn/bare.mp4"},
		}},
		{Title: models.TitleNetwork, Sources: []models.RawSource{
			{File: "https://cdn/seg.ts", Type: "video/mp2t", Label: "Status: 200"},
		}},
		{Title: "Empty"},
	}

	out, total := Normalize(groups)
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
	if len(out) != 3 || len(out[2].Videos) != 0 {
		t.Fatalf("unexpected groups: %+v", out)
	}

	tests := []struct {
		got  models.NormalizedVideo
		want models.NormalizedVideo
	}{
		{out[0].Videos[0], models.NormalizedVideo{URL: "https://cdn/1080.mp4", Type: "video/mp4", Label: "1080p", Quality: "1080p"}},
		{out[0].Videos[1], models.NormalizedVideo{URL: "https://cdn/src.m3u8", Type: "application/x-mpegURL", Label: "Video Source", Quality: "Unknown"}},
		{out[0].Videos[2], models.NormalizedVideo{URL: "https://cdn/bare.mp4", Type: "video/mp4", Label: "Video Source", Quality: "Unknown"}},
		{out[1].Videos[0], models.NormalizedVideo{URL: "https://cdn/seg.ts", Type: "video/mp2t", Label: "Status: 200", Quality: "Video Segment"}},
	}
	for i, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("video %d = %+v, want %+v", i, tt.got, tt.want)
		}
	}
	if out[1].Type != models.TitleNetwork {
		t.Errorf("group type = %q", out[1].Type)
	}
}
