package extractor

import (
	"encoding/json"
	"strings"

	"github.com/buger/jsonparser"
)

// JSONProvenance labels URLs found by walking a JSON response body.
const JSONProvenance = "JSON response"

var (
	videoSuffixes     = []string{".mp4", ".m3u8", ".m3u"}
	videoContentTypes = []string{"video/", "application/vnd.apple.mpegurl"}
	jsonHints         = []string{"video", "stream", "player"}
	jsonLeafMarkers   = []string{".mp4", ".m3u8"}
)

// IsVideoResponse reports whether a response denotes a video resource,
// judged by URL or content type.
func IsVideoResponse(rawURL, contentType string) bool {
	return containsAny(rawURL, videoSuffixes) || containsAny(contentType, videoContentTypes)
}

// WantsJSONBody reports whether a response is JSON that may embed media URLs:
// the content type must be JSON, and the URL or content type must hint at
// video/stream/player data.
func WantsJSONBody(rawURL, contentType string) bool {
	if !strings.Contains(contentType, "application/json") {
		return false
	}
	return containsAny(rawURL, jsonHints) || containsAny(contentType, jsonHints)
}

// MediaURLsInJSON walks a JSON document depth-first, object members in
// document order, and returns every string leaf that mentions .mp4 or .m3u8.
// Malformed bodies yield nil.
func MediaURLsInJSON(body []byte) []string {
	if !json.Valid(body) {
		return nil
	}
	value, dataType, _, err := jsonparser.Get(body)
	if err != nil {
		return nil
	}

	var found []string
	err = walkJSON(value, dataType, func(s string) {
		if containsAny(s, jsonLeafMarkers) {
			found = append(found, s)
		}
	})
	if err != nil {
		return nil
	}
	return found
}

func walkJSON(value []byte, dataType jsonparser.ValueType, visit func(string)) error {
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return err
		}
		visit(s)
	case jsonparser.Object:
		return jsonparser.ObjectEach(value, func(_ []byte, v []byte, t jsonparser.ValueType, _ int) error {
			return walkJSON(v, t, visit)
		})
	case jsonparser.Array:
		var walkErr error
		_, err := jsonparser.ArrayEach(value, func(v []byte, t jsonparser.ValueType, _ int, _ error) {
			if walkErr == nil {
				walkErr = walkJSON(v, t, visit)
			}
		})
		if err != nil {
			return err
		}
		return walkErr
	}
	return nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
