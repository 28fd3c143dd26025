// Package httpapi wires the web-facing surface of the bridge: the gateway
// webhook endpoint plus the operational endpoints (health, metrics). All
// cross-cutting concerns live in middleware; dependencies are injected.
package httpapi

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-support-bridge/internal/bridge"
	"github.com/tbourn/go-support-bridge/internal/config"
	"github.com/tbourn/go-support-bridge/internal/http/handlers"
	"github.com/tbourn/go-support-bridge/internal/http/middleware"
)

// RegisterRoutes attaches middleware and endpoints to the Gin engine.
//
// Middleware order:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: panics become JSON 500s, after the logger so they carry
//     request context
//  5. Body size limiter
//  6. Metrics
//  7. gzip on responses
func RegisterRoutes(r *gin.Engine, d *bridge.Dispatcher, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))
	r.Use(middleware.Metrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "message": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"code": "method_not_allowed", "message": "method not allowed"})
	})

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := &handlers.EventsHandler{Dispatcher: d, Secret: cfg.HookSecret}
	r.POST("/hook/events", h.Post)
}

// limitBody caps the request body via http.MaxBytesReader; oversized bodies
// fail on read downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
