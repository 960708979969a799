package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:3000", "jwx API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per URL for averaging")
	mode   = flag.String("mode", "browser", "Extraction mode: browser or static")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Pages covering the main embed styles.
var testURLs = []struct {
	Label string
	URL   string
}{
	{"Player", "https://www.jwplayer.com/developers/web-player-demos/"},
	{"Playlist", "https://www.jwplayer.com/developers/web-player-demos/playlist-shelf/"},
	{"HTML5", "https://www.w3schools.com/html/html5_video.asp"},
	{"None", "https://example.com"},
}

// --- Request / Response types (mirrors models package) ---

type extractRequest struct {
	URL  string `json:"url"`
	Mode string `json:"mode,omitempty"`
}

type extractResponse struct {
	Success bool         `json:"success"`
	Data    *extractData `json:"data,omitempty"`
	Error   *errorDetail `json:"error,omitempty"`
}

type extractData struct {
	Sources      []sourceGroup `json:"sources"`
	TotalSources int           `json:"totalSources"`
}

type sourceGroup struct {
	Type   string `json:"type"`
	Videos []struct {
		URL string `json:"url"`
	} `json:"videos"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Benchmark result types ---

type runResult struct {
	Run          int    `json:"run"`
	TotalMs      int64  `json:"total_ms"`
	Groups       int    `json:"groups"`
	TotalSources int    `json:"total_sources"`
	HasNetwork   bool   `json:"has_network"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

type urlAverages struct {
	TotalMs      float64 `json:"total_ms"`
	Groups       float64 `json:"groups"`
	TotalSources float64 `json:"total_sources"`
}

type urlResult struct {
	URL      string       `json:"url"`
	Label    string       `json:"label"`
	Runs     []runResult  `json:"runs"`
	Averages *urlAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	Mode       string      `json:"mode"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== jwx Benchmark Suite ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Mode:      %s\n", *mode)
	fmt.Printf("Runs/URL:  %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure jwx is running (e.g. make run)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		Mode:       *mode,
		RunsPerURL: *runs,
	}

	for _, t := range testURLs {
		fmt.Printf("Benchmarking [%s] %s ...\n", t.Label, t.URL)
		ur := urlResult{URL: t.URL, Label: t.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkURL(t.URL, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %d sources\n", rr.TotalMs, rr.TotalSources)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Averages = computeAverages(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkURL(url string, run int) runResult {
	rr := runResult{Run: run}

	bodyBytes, err := json.Marshal(extractRequest{URL: url, Mode: *mode})
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest("POST", *apiURL+"/api/extract", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	// A browser session dwells for several seconds before inspecting.
	client := &http.Client{Timeout: 120 * time.Second}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	var er extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}
	rr.TotalMs = time.Since(start).Milliseconds()
	rr.Success = er.Success

	if er.Data != nil {
		rr.Groups = len(er.Data.Sources)
		rr.TotalSources = er.Data.TotalSources
		for _, g := range er.Data.Sources {
			if strings.HasPrefix(g.Type, "Network") {
				rr.HasNetwork = true
			}
		}
	}
	if er.Error != nil {
		rr.Error = er.Error.Code + ": " + er.Error.Message
	}

	return rr
}

func computeAverages(runs []runResult) *urlAverages {
	var successCount int
	var avg urlAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.TotalMs += float64(r.TotalMs)
		avg.Groups += float64(r.Groups)
		avg.TotalSources += float64(r.TotalSources)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.TotalMs /= n
	avg.Groups /= n
	avg.TotalSources /= n
	return &avg
}

func printTable(results []urlResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tAvg Latency\tGroups\tSources\tNetwork\n")
	fmt.Fprintf(w, "───\t───────────\t──────\t───────\t───────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\n", truncateURL(r.URL, 40))
			continue
		}

		fmt.Fprintf(w, "%s\t%dms\t%.1f\t%.1f\t%s\n",
			truncateURL(r.URL, 40),
			int64(r.Averages.TotalMs),
			r.Averages.Groups,
			r.Averages.TotalSources,
			networkRatio(r.Runs),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

// networkRatio reports how many successful runs saw a network group.
func networkRatio(runs []runResult) string {
	var ok, seen int
	for _, r := range runs {
		if !r.Success {
			continue
		}
		ok++
		if r.HasNetwork {
			seen++
		}
	}
	return fmt.Sprintf("%d/%d", seen, ok)
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
