package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/snapcook/backend/internal/service"
	"github.com/pageza/snapcook/backend/internal/types"
)

// respondError maps a service error onto a status code and JSON body.
// Upstream details are logged, not returned.
func respondError(c *gin.Context, err error) {
	logger := zerolog.Ctx(c.Request.Context())

	var inputErr *service.InputError
	var upstreamErr *service.UpstreamError
	switch {
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid_input", Detail: inputErr.Message})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid_input", Detail: err.Error()})
	case errors.Is(err, service.ErrRecipeNotFound):
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "not_found", Detail: "Recipe not found"})
	case errors.As(err, &upstreamErr):
		logger.Error().Err(upstreamErr.Err).Str("service", upstreamErr.Service).Msg("upstream failure")
		c.JSON(http.StatusBadGateway, types.ErrorResponse{
			Error:  "upstream_error",
			Detail: upstreamErr.Service + " service unavailable",
		})
	default:
		logger.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal_error", Detail: "Internal Server Error"})
	}
}

func badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid_input", Detail: detail})
}
