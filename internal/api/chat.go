package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/forkful/backend/internal/service"
	"github.com/forkful/backend/internal/types"
)

// ChatHandler handles conversational recipe requests
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new ChatHandler instance
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// RegisterRoutes registers the chat routes
func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup) {
	chat := router.Group("/chat")
	{
		chat.POST("", h.Chat)
		chat.GET("/history/:session_id", h.History)
		chat.DELETE("/session/:session_id", h.ClearSession)
	}
}

type ChatRequest struct {
	Message     string                 `json:"message" binding:"required"`
	SessionID   string                 `json:"session_id"`
	Preferences *types.UserPreferences `json:"preferences"`
}

type ChatResponse struct {
	SessionID     string               `json:"session_id"`
	Content       string               `json:"content"`
	QuickReplies  []string             `json:"quick_replies"`
	RecipeOptions []types.RecipeOption `json:"recipe_options"`
}

// Chat runs one conversation turn and returns the assistant reply.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	var userID *uuid.UUID
	if id, ok := currentUserID(c); ok {
		userID = &id
	}

	result, err := h.chatService.Chat(c.Request.Context(), sessionID, userID, req.Message, req.Preferences)
	if err != nil {
		respondAIError(c, err)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		SessionID:     sessionID,
		Content:       result.Content,
		QuickReplies:  result.QuickReplies,
		RecipeOptions: result.RecipeOptions,
	})
}

// History returns the stored messages for a session, oldest first.
func (h *ChatHandler) History(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	messages, err := h.chatService.History(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// ClearSession deletes a session's stored history.
func (h *ChatHandler) ClearSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	if err := h.chatService.ClearSession(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
