package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/snapcook/backend/internal/types"
)

// ErrorHandler recovers panics and turns them into a JSON 500 response. If
// the response has already started only the connection state is logged.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				zerolog.Ctx(c.Request.Context()).Error().
					Interface("panic", err).
					Str("path", c.Request.URL.Path).
					Msg("recovered from panic")

				if c.Writer.Written() {
					c.Abort()
					return
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{
					Error:  "internal_error",
					Detail: "Internal Server Error",
				})
			}
		}()

		c.Next()
	}
}
