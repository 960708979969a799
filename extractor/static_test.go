package extractor

import (
	"testing"

	"github.com/use-agent/jwx/models"
)

const staticPage = `<!doctype html>
<html><head>
<script src="/js/jwplayer.js"></script>
<script>
  jwplayer("player").setup({
    playlist: [{ sources: [{ file: "https://cdn.example.com/hls/master.m3u8", label: "Auto" }] }],
  });
</script>
</head><body>
<div id="player" data-video-url="https://cdn.example.com/alt.mp4"></div>
<video src="clips/intro.mp4"></video>
<video controls>
  <source src="/media/720.mp4" type="video/mp4" label="720p">
  <source src="https://cdn.example.com/480.mp4">
</video>
<img src="/logo.png">
</body></html>`

func TestSnapshotFromHTML(t *testing.T) {
	snap, err := SnapshotFromHTML(staticPage, "https://example.com/watch/1")
	if err != nil {
		t.Fatalf("SnapshotFromHTML() error: %v", err)
	}

	if len(snap.Scripts) != 2 || snap.Scripts[0].Src != "https://example.com/js/jwplayer.js" {
		t.Errorf("unexpected scripts: %+v", snap.Scripts)
	}
	if len(snap.Videos) != 2 || snap.Videos[0].Src != "https://example.com/watch/clips/intro.mp4" || snap.Videos[1].Src != "" {
		t.Errorf("unexpected videos: %+v", snap.Videos)
	}
	if len(snap.Sources) != 2 || snap.Sources[0].Src != "https://example.com/media/720.mp4" || snap.Sources[0].Label != "720p" {
		t.Errorf("unexpected sources: %+v", snap.Sources)
	}
	if len(snap.PlayerItems) != 0 {
		t.Error("static snapshot has no player runtime")
	}

	var sawDataAttr bool
	for _, a := range snap.Attributes {
		if a.Name == "data-video-url" {
			sawDataAttr = true
		}
	}
	if !sawDataAttr {
		t.Errorf("data-video-url not collected: %+v", snap.Attributes)
	}
}

func TestSnapshotFromHTML_Inspect(t *testing.T) {
	snap, err := SnapshotFromHTML(staticPage, "https://example.com/watch/1")
	if err != nil {
		t.Fatalf("SnapshotFromHTML() error: %v", err)
	}
	res := Inspect(snap)

	want := []string{
		models.TitleConfiguration,
		models.TitleVideoElement,
		models.TitleVideoSources,
		"Data Attribute: data-video-url",
		"Data Attribute: src",
		"Data Attribute: src",
		"Data Attribute: src",
	}
	got := titles(res.Groups)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("group %d = %q, want %q", i, got[i], want[i])
		}
	}
	if f := res.Groups[0].Sources[0].File; f != "https://cdn.example.com/hls/master.m3u8" {
		t.Errorf("unexpected playlist source: %q", f)
	}
}
