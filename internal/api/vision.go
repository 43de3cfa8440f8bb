package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forkful/backend/internal/service"
)

// VisionHandler handles food photo analysis
type VisionHandler struct {
	visionService *service.VisionService
}

// NewVisionHandler creates a new VisionHandler instance
func NewVisionHandler(visionService *service.VisionService) *VisionHandler {
	return &VisionHandler{visionService: visionService}
}

// RegisterRoutes registers the vision routes
func (h *VisionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/vision", h.Analyze)
}

type VisionAnalyzeRequest struct {
	Image       string `json:"image_base64" binding:"required"`
	Description string `json:"description"`
	Mode        string `json:"mode"`
}

// Analyze identifies a dish or its ingredients from a base64 photo.
func (h *VisionHandler) Analyze(c *gin.Context) {
	var req VisionAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := service.VisionMode(req.Mode)
	switch mode {
	case "":
		mode = service.VisionModeDish
	case service.VisionModeDish, service.VisionModeIngredients:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be dish or ingredients"})
		return
	}

	result, err := h.visionService.Analyze(c.Request.Context(), req.Image, req.Description, mode)
	if err != nil {
		respondAIError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
