// Package httpapi wires the HTTP transport (Gin) for webhook deployments.
// It mounts the Telegram webhook endpoint behind a secret path segment and
// centralizes cross-cutting concerns: correlation IDs, structured logging,
// panic recovery, metrics, body limits, and edge rate limiting.
//
// Middleware order matters:
//  1. RequestID: generate/propagate correlation id
//  2. Logger: structured access logs
//  3. Recovery: capture panics after logger
//  4. Body size limiter
//  5. Metrics
//  6. Rate limiter (per IP)
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jacklul/e621-telegram-bot/internal/config"
	"github.com/jacklul/e621-telegram-bot/internal/http/middleware"
	"github.com/jacklul/e621-telegram-bot/internal/store"
)

// UpdateHandler consumes one decoded Telegram update. Failures are contained
// by the handler itself; the webhook always acknowledges receipt so Telegram
// does not redeliver.
type UpdateHandler interface {
	Handle(ctx context.Context, update tgbotapi.Update)
}

// Deps carries the collaborators the router needs.
type Deps struct {
	Updates UpdateHandler
	Store   store.Store
}

// RegisterRoutes attaches all middleware and endpoints to the given Gin
// engine: the webhook receiver, /metrics, and /health.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())

	// Telegram update payloads are small; 1 MiB is generous.
	r.Use(limitBody(1 << 20))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.RateRPS > 0 {
		rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
		r.Use(rl.Handler())
	}

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "not_found", "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		fail(c, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	r.POST("/webhook/:secret", webhookHandler(deps, cfg))
}

// fail writes the standard JSON error envelope carrying the request ID.
func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       code,
		"message":    message,
	})
}

// limitBody caps the request body size using http.MaxBytesReader. Requests
// exceeding the cap make downstream body reads error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
