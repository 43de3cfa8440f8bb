package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forkful/backend/internal/service"
)

// ImageHandler handles recipe image generation
type ImageHandler struct {
	imageService *service.ImageService
}

// NewImageHandler creates a new ImageHandler instance
func NewImageHandler(imageService *service.ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

// RegisterRoutes registers the image routes
func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/images", h.Generate)
}

type GenerateImageRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Generate returns a renderable image URL for the recipe. Generation
// failures degrade to a fallback URL rather than an error status.
func (h *ImageHandler) Generate(c *gin.Context) {
	var req GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.imageService.GenerateRecipeImage(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondAIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
