package models

import "time"

// NormalizedVideo is the public shape of one source. Quality is always set.
type NormalizedVideo struct {
	URL     string `json:"url"`
	Type    string `json:"type"`
	Label   string `json:"label"`
	Quality string `json:"quality"`
}

// SourceGroup is a normalized RawSourceGroup; Type carries the group title.
type SourceGroup struct {
	Type   string            `json:"type"`
	Videos []NormalizedVideo `json:"videos"`
}

// ExtractData is the data payload of a successful /api/extract call.
type ExtractData struct {
	URL          string        `json:"url"`
	ExtractedAt  time.Time     `json:"extractedAt"`
	Sources      []SourceGroup `json:"sources"`
	TotalSources int           `json:"totalSources"`
}

// ExtractResponse is the response for POST /api/extract.
type ExtractResponse struct {
	// Success indicates whether the extraction completed without errors.
	// Zero sources found is still a success.
	Success bool `json:"success"`

	Data *ExtractData `json:"data,omitempty"`

	// CacheStatus is "hit", "miss", or empty when caching was not requested.
	CacheStatus string `json:"cacheStatus,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// LegacyExtractResponse is the response for POST /extract. Data is the raw
// group sequence; Error is a plain message.
type LegacyExtractResponse struct {
	Success bool             `json:"success"`
	// Data holds a []RawSourceGroup. It is an interface so that an empty
	// result still serializes as [] while failures omit the field.
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// InfoResponse is the response for GET /api/info.
type InfoResponse struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Environment      string            `json:"environment"`
	Description      string            `json:"description"`
	Endpoints        map[string]string `json:"endpoints"`
	SupportedFormats []string          `json:"supportedFormats"`
	Uptime           float64           `json:"uptime"`
	Timestamp        time.Time         `json:"timestamp"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status    string       `json:"status"` // "healthy" or "degraded"
	Timestamp time.Time    `json:"timestamp"`
	Uptime    float64      `json:"uptime"`
	Memory    MemoryStats  `json:"memory"`
	Sessions  SessionStats `json:"sessions"`
	Version   string       `json:"version"`
}

// MemoryStats is a subset of runtime.MemStats, in bytes.
type MemoryStats struct {
	HeapAlloc uint64 `json:"heapAlloc"`
	HeapSys   uint64 `json:"heapSys"`
	Sys       uint64 `json:"sys"`
	NumGC     uint32 `json:"numGC"`
}

// SessionStats reports browser session utilisation.
type SessionStats struct {
	MaxSessions    int `json:"maxSessions"`
	ActiveSessions int `json:"activeSessions"`
}
