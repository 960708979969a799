package extractor

import (
	"sync"

	"github.com/use-agent/jwx/models"
)

// Collector accumulates network observations for one session in arrival
// order. It is append-only, never deduplicates, and is safe for concurrent use.
type Collector struct {
	mu           sync.Mutex
	observations []models.NetworkObservation
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Observe records the response if it denotes a video resource and reports
// whether it did.
func (c *Collector) Observe(rawURL, contentType string, status int) bool {
	if !IsVideoResponse(rawURL, contentType) {
		return false
	}
	c.append(models.NetworkObservation{
		URL:         rawURL,
		ContentType: contentType,
		StatusCode:  status,
	})
	return true
}

// ObserveJSON records every media URL embedded in a JSON body and returns
// how many were found. Non-JSON bodies are ignored.
func (c *Collector) ObserveJSON(body []byte) int {
	urls := MediaURLsInJSON(body)
	for _, u := range urls {
		c.append(models.NetworkObservation{
			URL:         u,
			ContentType: "video/mp4",
			StatusCode:  200,
			Provenance:  JSONProvenance,
		})
	}
	return len(urls)
}

// Observations returns a copy of everything captured so far.
func (c *Collector) Observations() []models.NetworkObservation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.NetworkObservation, len(c.observations))
	copy(out, c.observations)
	return out
}

// Len returns the number of observations captured so far.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.observations)
}

func (c *Collector) append(o models.NetworkObservation) {
	c.mu.Lock()
	c.observations = append(c.observations, o)
	c.mu.Unlock()
}
