package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkful/backend/internal/service"
	"github.com/forkful/backend/internal/types"
)

// FavoritesHandler handles saved recipe requests
type FavoritesHandler struct {
	favoritesService *service.FavoritesService
	imageService     *service.ImageService
}

// NewFavoritesHandler creates a new FavoritesHandler instance. imageService
// may be nil; favorites are then saved without a generated image.
func NewFavoritesHandler(favoritesService *service.FavoritesService, imageService *service.ImageService) *FavoritesHandler {
	return &FavoritesHandler{
		favoritesService: favoritesService,
		imageService:     imageService,
	}
}

// RegisterRoutes registers the favorites routes
func (h *FavoritesHandler) RegisterRoutes(router *gin.RouterGroup) {
	favorites := router.Group("/favorites")
	{
		favorites.POST("", h.Save)
		favorites.GET("", h.List)
		favorites.DELETE("/:id", h.Delete)
		favorites.GET("/:id/similar", h.FindSimilar)
	}
}

type SaveFavoriteRequest struct {
	Recipe   types.RecipeDetail `json:"recipe" binding:"required"`
	ImageURL string             `json:"image_url"`
}

// Save persists a recipe as a favorite, generating an image when the
// client did not supply one.
func (h *FavoritesHandler) Save(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req SaveFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Recipe.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipe name is required"})
		return
	}

	imageURL := req.ImageURL
	if imageURL == "" && h.imageService != nil {
		if url, err := h.imageService.GenerateRecipeImage(c.Request.Context(), req.Recipe.Name, req.Recipe.Description); err == nil {
			imageURL = url
		}
	}

	favorite, err := h.favoritesService.Save(c.Request.Context(), userID, &req.Recipe, imageURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save favorite"})
		return
	}

	c.JSON(http.StatusCreated, favorite)
}

// List returns the user's favorites, newest first.
func (h *FavoritesHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	favorites, err := h.favoritesService.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list favorites"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

// Delete removes one favorite owned by the user.
func (h *FavoritesHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	favoriteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid favorite id"})
		return
	}

	if err := h.favoritesService.Delete(c.Request.Context(), userID, favoriteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "favorite not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// FindSimilar returns saved recipes nearest to the given one.
func (h *FavoritesHandler) FindSimilar(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	favoriteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid favorite id"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	similar, err := h.favoritesService.FindSimilar(c.Request.Context(), userID, favoriteID, limit)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "favorite not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to find similar favorites"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": similar})
}
