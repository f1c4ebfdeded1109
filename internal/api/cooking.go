package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/snapcook/backend/internal/middleware"
	"github.com/pageza/snapcook/backend/internal/service"
	"github.com/pageza/snapcook/backend/internal/types"
)

// StartCooking handles POST /api/start_cooking.
func (h *Handlers) StartCooking(c *gin.Context) {
	var req types.StartCookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "recipe_id is required.")
		return
	}

	threadID, stream, err := h.Conversation.StartConversation(c.Request.Context(), req.RecipeID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	streamFragments(c, threadID, stream)
}

// Chat handles POST /api/chat.
func (h *Handlers) Chat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "message and thread_id are required.")
		return
	}

	stream, err := h.Conversation.ContinueConversation(c.Request.Context(), req.ThreadID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	streamFragments(c, req.ThreadID, stream)
}

// streamFragments pulls the first fragment before committing to a status so
// a model that fails immediately still yields a JSON error. Later failures
// can only end the body early.
func streamFragments(c *gin.Context, threadID string, stream service.FragmentStream) {
	defer stream.Close()

	logger := zerolog.Ctx(c.Request.Context()).With().Str("thread_id", threadID).Logger()

	first := stream.Next()
	if !first {
		if err := stream.Err(); err != nil {
			respondError(c, err)
			return
		}
	}

	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Header(middleware.ThreadIDHeader, threadID)
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	for ok := first; ok; ok = stream.Next() {
		if _, err := c.Writer.WriteString(stream.Current()); err != nil {
			logger.Warn().Err(err).Msg("client went away mid-stream")
			return
		}
		c.Writer.Flush()
	}

	if err := stream.Err(); err != nil {
		logger.Error().Err(err).Msg("stream ended with error")
	}
}
