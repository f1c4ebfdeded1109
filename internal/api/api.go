package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/pageza/snapcook/backend/internal/middleware"
	"github.com/pageza/snapcook/backend/internal/service"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// Handlers carries the collaborators the HTTP surface needs.
type Handlers struct {
	Analysis     service.IAnalysisService
	Conversation service.IConversationService
	// Checks is keyed by dependency name. A nil checker reports "disabled".
	Checks      map[string]HealthChecker
	RateLimiter *middleware.RateLimiter
}

// RegisterRoutes wires every endpoint onto router.
func RegisterRoutes(router *gin.Engine, h *Handlers) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/metrics", Metrics())

	group := router.Group("/api")
	{
		analyze := []gin.HandlerFunc{}
		if h.RateLimiter != nil {
			analyze = append(analyze, h.RateLimiter.Middleware("analyze"))
		}
		analyze = append(analyze, h.Analyze)
		group.POST("/analyze", analyze...)
		group.POST("/start_cooking", h.StartCooking)
		group.POST("/chat", h.Chat)
	}
}
