package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pageza/snapcook/backend/internal/types"
)

const healthTimeout = 3 * time.Second

// Root handles GET /.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, types.StatusResponse{Message: "SnapCook API is running"})
}

// Health handles GET /health. Any failing check turns the response into 503.
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := types.HealthResponse{Status: "healthy", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		checker := h.Checks[name]
		if checker == nil {
			resp.Checks[name] = "disabled"
			continue
		}
		if err := checker.Ping(ctx); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("check", name).Msg("health check failed")
			resp.Checks[name] = "unhealthy"
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "healthy"
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// Metrics exposes the default Prometheus registry.
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
