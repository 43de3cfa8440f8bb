package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/forkful/backend/internal/models"
)

// Migrate applies the schema for all application models.
func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to enable pgvector extension: %w", err)
	}

	return db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.DietaryPreference{},
		&models.Allergen{},
		&models.CuisinePreference{},
		&models.FavoriteRecipe{},
	)
}
