package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/jwx/api/handler"
	"github.com/use-agent/jwx/api/middleware"
	"github.com/use-agent/jwx/cache"
	"github.com/use-agent/jwx/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:      Recovery → Logger
//	/api:        CORS
//	extraction:  Auth (if enabled) → RateLimit
//
// Health and info stay outside auth so monitoring probes always work.
func NewRouter(ex handler.Extractor, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/health", handler.Health(ex, cfg.App, startTime))

	var guard []gin.HandlerFunc
	if cfg.Auth.Enabled {
		guard = append(guard, middleware.Auth(cfg.Auth.APIKeys))
	}
	guard = append(guard, middleware.RateLimit(cfg.RateLimit))
	guarded := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, guard...), h)
	}

	apiGroup := r.Group("/api", middleware.CORS())
	// Preflight requests never reach a route; CORS answers them.
	apiGroup.OPTIONS("/*path", func(*gin.Context) {})
	apiGroup.GET("/info", handler.Info(cfg.App, startTime))
	apiGroup.POST("/extract", guarded(handler.Extract(ex, cc, cfg.App))...)

	// Legacy endpoint.
	r.POST("/extract", guarded(handler.LegacyExtract(ex))...)

	return r
}
