package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/jwx/config"
	"github.com/use-agent/jwx/models"
)

// Health returns a handler for GET /health.
//
// Reports session utilisation and degrades status when every browser
// session slot is busy. Always answers 200 so liveness probes pass.
func Health(ex Extractor, app config.AppConfig, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := ex.Stats()

		status := "healthy"
		if stats.MaxSessions > 0 && stats.ActiveSessions >= stats.MaxSessions {
			status = "degraded"
		}

		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC(),
			Uptime:    time.Since(startTime).Seconds(),
			Memory: models.MemoryStats{
				HeapAlloc: ms.HeapAlloc,
				HeapSys:   ms.HeapSys,
				Sys:       ms.Sys,
				NumGC:     ms.NumGC,
			},
			Sessions: stats,
			Version:  app.Version,
		})
	}
}

// Info returns a handler for GET /api/info.
func Info(app config.AppConfig, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.InfoResponse{
			Name:        app.Name,
			Version:     app.Version,
			Environment: app.Environment,
			Description: "Extract video sources from JW Player embedded pages",
			Endpoints: map[string]string{
				"POST /api/extract": "Extract video sources from a JW Player page",
				"POST /extract":     "Legacy extraction endpoint returning raw source groups",
				"GET /api/info":     "Get API information",
				"GET /health":       "Health check endpoint",
			},
			SupportedFormats: []string{"HLS (M3U8)", "MP4", "MPEG-TS"},
			Uptime:           time.Since(startTime).Seconds(),
			Timestamp:        time.Now().UTC(),
		})
	}
}
