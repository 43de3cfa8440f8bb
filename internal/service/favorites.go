package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/forkful/backend/internal/models"
	"github.com/forkful/backend/internal/types"
)

// FavoritesService stores recipes the user saved from the assistant.
type FavoritesService struct {
	db *gorm.DB
}

func NewFavoritesService(db *gorm.DB) *FavoritesService {
	return &FavoritesService{db: db}
}

// Save persists a recipe detail as a favorite for the user.
func (s *FavoritesService) Save(ctx context.Context, userID uuid.UUID, detail *types.RecipeDetail, imageURL string) (*models.FavoriteRecipe, error) {
	ingredients := make(models.JSONStringArray, 0, len(detail.Ingredients))
	for _, ing := range detail.Ingredients {
		ingredients = append(ingredients, formatIngredient(ing))
	}

	favorite := &models.FavoriteRecipe{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         detail.Name,
		Description:  detail.Description,
		Ingredients:  ingredients,
		Instructions: models.JSONStringArray(detail.Instructions),
		ImageURL:     imageURL,
		Difficulty:   detail.Difficulty,
		Embedding:    GenerateEmbedding(detail.Name + " " + detail.Description),
	}

	if err := s.db.WithContext(ctx).Create(favorite).Error; err != nil {
		return nil, fmt.Errorf("failed to save favorite: %w", err)
	}
	return favorite, nil
}

// List returns the user's favorites, newest first.
func (s *FavoritesService) List(ctx context.Context, userID uuid.UUID) ([]models.FavoriteRecipe, error) {
	var favorites []models.FavoriteRecipe
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error; err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return favorites, nil
}

// Delete removes one favorite owned by the user.
func (s *FavoritesService) Delete(ctx context.Context, userID, favoriteID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", favoriteID, userID).
		Delete(&models.FavoriteRecipe{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindSimilar returns the user's saved recipes nearest to the given one by
// embedding distance.
func (s *FavoritesService) FindSimilar(ctx context.Context, userID, favoriteID uuid.UUID, limit int) ([]models.FavoriteRecipe, error) {
	if limit <= 0 {
		limit = 5
	}

	var favorite models.FavoriteRecipe
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", favoriteID, userID).
		First(&favorite).Error; err != nil {
		return nil, fmt.Errorf("failed to load favorite: %w", err)
	}

	var similar []models.FavoriteRecipe
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND id <> ?", userID, favoriteID).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "embedding <-> ?",
			Vars:               []interface{}{favorite.Embedding},
			WithoutParentheses: true,
		}}).
		Limit(limit).
		Find(&similar).Error; err != nil {
		return nil, fmt.Errorf("failed to find similar favorites: %w", err)
	}
	return similar, nil
}

func formatIngredient(ing types.RecipeIngredient) string {
	switch {
	case ing.Quantity != "" && ing.Unit != "":
		return ing.Quantity + " " + ing.Unit + " " + ing.Name
	case ing.Quantity != "":
		return ing.Quantity + " " + ing.Name
	default:
		return ing.Name
	}
}
