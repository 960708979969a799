package scraper

import (
	"github.com/use-agent/jwx/extractor"
	"github.com/use-agent/jwx/models"
)

// Result is the outcome of one extraction.
type Result struct {
	// Groups is the aggregated source group sequence, network capture last.
	Groups []models.RawSourceGroup

	// Failures are per-match script parse failures. They never fail the run.
	Failures []extractor.ParseFailure

	// Captured is the number of network observations in the session.
	Captured int

	// Mode records how the page was inspected: "browser" or "static".
	Mode string
}
