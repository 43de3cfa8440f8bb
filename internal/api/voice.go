package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/forkful/backend/internal/service"
)

// VoiceHandler handles speech synthesis for cooking mode
type VoiceHandler struct {
	voiceService *service.VoiceService
}

// NewVoiceHandler creates a new VoiceHandler instance
func NewVoiceHandler(voiceService *service.VoiceService) *VoiceHandler {
	return &VoiceHandler{voiceService: voiceService}
}

// RegisterRoutes registers the voice routes
func (h *VoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	voice := router.Group("/voice")
	{
		voice.POST("", h.Synthesize)
		voice.GET("/voices", h.ListVoices)
	}
}

// Synthesize returns MP3 audio for the request's spoken text.
func (h *VoiceHandler) Synthesize(c *gin.Context) {
	var req service.VoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.voiceService.Synthesize(c.Request.Context(), req)
	if err != nil {
		respondAIError(c, err)
		return
	}

	c.Header("X-Character-Count", strconv.Itoa(result.CharCount))
	c.Data(http.StatusOK, result.MimeType, result.Audio)
}

// ListVoices returns the voices available for synthesis.
func (h *VoiceHandler) ListVoices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"voices": h.voiceService.ListVoices()})
}
