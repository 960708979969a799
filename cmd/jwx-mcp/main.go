package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/jwx/models"
)

func main() {
	apiURL := os.Getenv("JWX_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3000"
	}
	apiURL = strings.TrimRight(apiURL, "/")
	// Only needed when the service runs with JWX_AUTH_ENABLED.
	apiKey := os.Getenv("JWX_API_KEY")

	s := server.NewMCPServer(
		"jwx",
		"2.0.0",
		server.WithToolCapabilities(false),
	)

	extractTool := mcp.NewTool("extract_video_sources",
		mcp.WithDescription("Extract playable video source URLs (HLS/M3U8, MP4) from a web page that embeds JW Player. Renders the page in a headless browser and watches its network traffic."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page embedding the player"),
		),
		mcp.WithString("mode",
			mcp.Description("'browser' (default) renders the page and captures network traffic; 'static' only scans the raw HTML"),
			mcp.Enum(models.ModeBrowser, models.ModeStatic),
		),
		mcp.WithNumber("max_age",
			mcp.Description("Accept a cached result younger than this many milliseconds (default: 0, no cache)"),
		),
	)
	s.AddTool(extractTool, handleExtract(apiURL, apiKey))

	infoTool := mcp.NewTool("api_info",
		mcp.WithDescription("Describe the extraction service: name, version, environment, endpoints and supported formats."),
	)
	s.AddTool(infoTool, handleGetJSON(apiURL, apiKey, "/api/info"))

	healthTool := mcp.NewTool("health",
		mcp.WithDescription("Report service health: uptime, memory use and browser session utilisation."),
	)
	s.AddTool(healthTool, handleGetJSON(apiURL, apiKey, "/health"))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiCall sends a request to the extraction API and returns the response body.
func apiCall(ctx context.Context, client *http.Client, method, url, apiKey string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func handleExtract(apiURL, apiKey string) server.ToolHandlerFunc {
	// Navigation, dwell and inspection can take close to a minute.
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		payload := models.ExtractRequest{
			URL:    url,
			Mode:   request.GetString("mode", ""),
			MaxAge: request.GetInt("max_age", 0),
		}

		respBody, err := apiCall(ctx, client, http.MethodPost, apiURL+"/api/extract", apiKey, payload)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp models.ExtractResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success || resp.Data == nil {
			errMsg := "extraction failed"
			if resp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
				if resp.Error.Details != "" {
					errMsg += ": " + resp.Error.Details
				}
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		return mcp.NewToolResultText(formatSources(resp.Data)), nil
	}
}

func handleGetJSON(apiURL, apiKey, path string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 10 * time.Second}

	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		respBody, err := apiCall(ctx, client, http.MethodGet, apiURL+path, apiKey, nil)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, respBody, "", "  "); err != nil {
			return mcp.NewToolResultText(string(respBody)), nil
		}
		return mcp.NewToolResultText(pretty.String()), nil
	}
}

// formatSources renders an extraction result as plain text, one group per
// block, one video per line.
func formatSources(d *models.ExtractData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\nExtracted: %s\nTotal sources: %d\n", d.URL, d.ExtractedAt.Format(time.RFC3339), d.TotalSources)
	if d.TotalSources == 0 {
		b.WriteString("\nNo video sources found.")
		return b.String()
	}
	for _, g := range d.Sources {
		fmt.Fprintf(&b, "\n## %s (%d)\n", g.Type, len(g.Videos))
		for _, v := range g.Videos {
			fmt.Fprintf(&b, "- [%s] %s (%s, %s)\n", v.Quality, v.URL, v.Type, v.Label)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
