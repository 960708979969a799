package extractor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/use-agent/jwx/models"
)

var (
	// setupCallRe matches jwplayer("<id>").setup({...}). The body capture is
	// non-greedy and ends at the first "}" followed by ")".
	setupCallRe = regexp.MustCompile("jwplayer\\s*\\(\\s*['\"`]([^'\"`]+)['\"`]\\s*\\)\\s*\\.setup\\s*\\(\\s*(\\{[\\s\\S]*?\\})\\s*\\)")

	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_$][A-Za-z0-9_$]*)\s*:`)
)

// Script-literal passes.
const (
	PassGlobal = "global"
	PassSimple = "simple"
)

// ParseFailure records one setup-call match that could not be turned into
// sources. Failures never abort the other matches.
type ParseFailure struct {
	Script int
	Pass   string
	Err    error
}

func (f ParseFailure) String() string {
	return fmt.Sprintf("script %d (%s pass): %v", f.Script, f.Pass, f.Err)
}

var (
	errPlaylistNotArray = errors.New("playlist is not an array")
	errNotObject        = errors.New("setup config is not an object")
)

// isSetupCandidate reports whether a script is worth pattern matching.
func isSetupCandidate(text string) bool {
	return strings.Contains(text, "jwplayer") || strings.Contains(text, "setup")
}

// scriptSetupGroups runs both script-literal passes over one script text.
// The global pass visits every setup call; the simple pass looks at the
// first call only and may duplicate a global-pass group.
func scriptSetupGroups(index int, text string) ([]models.RawSourceGroup, []ParseFailure) {
	var groups []models.RawSourceGroup
	var failures []ParseFailure

	for _, m := range setupCallRe.FindAllStringSubmatch(text, -1) {
		g, ok, err := configGroup(m[2])
		if err != nil {
			failures = append(failures, ParseFailure{Script: index, Pass: PassGlobal, Err: err})
			continue
		}
		if ok {
			groups = append(groups, g)
		}
	}

	if m := setupCallRe.FindStringSubmatch(text); m != nil {
		cfg, err := parseSetupConfig(m[2])
		if err != nil {
			failures = append(failures, ParseFailure{Script: index, Pass: PassSimple, Err: err})
		} else if sources, ok := topLevelSources(cfg["sources"]); ok {
			groups = append(groups, models.RawSourceGroup{Title: models.TitleSimpleSetup, Sources: sources})
		}
	}

	return groups, failures
}

// configGroup turns one setup config literal into a group. A non-empty
// playlist wins over top-level sources.
func configGroup(literal string) (models.RawSourceGroup, bool, error) {
	cfg, err := parseSetupConfig(literal)
	if err != nil {
		return models.RawSourceGroup{}, false, err
	}

	if raw, present := cfg["playlist"]; present && nonEmpty(raw) {
		items, ok := rawArray(raw)
		if !ok {
			return models.RawSourceGroup{}, false, errPlaylistNotArray
		}
		sources := make([]models.RawSource, 0, len(items))
		for _, item := range items {
			sources = append(sources, playlistItemSources(item)...)
		}
		return models.RawSourceGroup{Title: models.TitleConfiguration, Sources: sources}, true, nil
	}

	if sources, ok := topLevelSources(cfg["sources"]); ok {
		return models.RawSourceGroup{Title: models.TitleDirect, Sources: sources}, true, nil
	}
	return models.RawSourceGroup{}, false, nil
}

// playlistItemSources flattens one playlist item: its own sources when it
// has any truthy "sources" value, otherwise the item itself.
func playlistItemSources(item json.RawMessage) []models.RawSource {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err == nil && fields != nil {
		if raw, present := fields["sources"]; present && truthy(raw) {
			if list, ok := sourceList(raw); ok {
				return list
			}
		}
	}
	var s models.RawSource
	_ = json.Unmarshal(item, &s)
	return []models.RawSource{s}
}

// sourceList decodes a "sources" value. Arrays decode element-wise; a lone
// string or object becomes a single source.
func sourceList(raw json.RawMessage) ([]models.RawSource, bool) {
	if !truthy(raw) {
		return nil, false
	}
	if items, ok := rawArray(raw); ok {
		out := make([]models.RawSource, 0, len(items))
		for _, item := range items {
			var s models.RawSource
			_ = json.Unmarshal(item, &s)
			out = append(out, s)
		}
		return out, true
	}
	var s models.RawSource
	_ = json.Unmarshal(raw, &s)
	return []models.RawSource{s}, true
}

// topLevelSources decodes a config's own "sources". Only values with a
// length count: a non-empty array or string. An object has none.
func topLevelSources(raw json.RawMessage) ([]models.RawSource, bool) {
	if !nonEmpty(raw) {
		return nil, false
	}
	return sourceList(raw)
}

// parseSetupConfig repairs near-JSON object text and parses it. The strict
// repair (quotes, trailing commas) is tried first; quoting bare keys is only
// a fallback when the strict form does not parse.
func parseSetupConfig(literal string) (map[string]json.RawMessage, error) {
	repaired := repairNearJSON(literal)
	cfg, err := decodeObject(repaired)
	if err == nil {
		return cfg, nil
	}
	if fallback, ferr := decodeObject(bareKeyRe.ReplaceAllString(repaired, `$1"$2":`)); ferr == nil {
		return fallback, nil
	}
	return nil, err
}

// repairNearJSON converts single quotes to double quotes and drops trailing
// commas before a closing bracket.
func repairNearJSON(s string) string {
	s = strings.ReplaceAll(s, "'", `"`)
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

func decodeObject(s string) (map[string]json.RawMessage, error) {
	var cfg map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &cfg); err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, errNotObject
	}
	return cfg, nil
}

func rawArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// truthy mirrors script truthiness for JSON values.
func truthy(raw json.RawMessage) bool {
	v := string(bytes.TrimSpace(raw))
	switch v {
	case "", "null", "false", "0", `""`, "-0":
		return false
	}
	return true
}

// nonEmpty reports a truthy value with a non-zero length: a non-empty array
// or string. Objects and numbers have no length.
func nonEmpty(raw json.RawMessage) bool {
	if !truthy(raw) {
		return false
	}
	if items, ok := rawArray(raw); ok {
		return len(items) > 0
	}
	var s string
	return json.Unmarshal(raw, &s) == nil && s != ""
}
