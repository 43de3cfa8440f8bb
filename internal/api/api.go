package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/forkful/backend/internal/service"
)

// currentUserID extracts the authenticated user ID set by the auth
// middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}

// respondAIError maps a classified generation error to an HTTP response.
// Rate limiting surfaces as 429; everything else is a 500 with the
// user-facing message and machine-readable kind.
func respondAIError(c *gin.Context, err error) {
	var aiErr *service.AIError
	if !errors.As(err, &aiErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusInternalServerError
	if aiErr.Kind == service.ErrRateLimited {
		status = http.StatusTooManyRequests
	}

	c.JSON(status, gin.H{
		"error":     aiErr.UserMessage(),
		"code":      string(aiErr.Kind),
		"retryable": aiErr.Retryable(),
	})
}
