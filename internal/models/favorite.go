package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// FavoriteRecipe is a recipe the user saved from the assistant, stored
// with an embedding so similar saved recipes can be surfaced.
type FavoriteRecipe struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string          `gorm:"size:200;not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Ingredients  JSONStringArray `gorm:"type:jsonb" json:"ingredients"`
	Instructions JSONStringArray `gorm:"type:jsonb" json:"instructions"`
	ImageURL     string          `gorm:"size:512" json:"image_url"`
	Difficulty   string          `gorm:"size:20" json:"difficulty"`
	Embedding    pgvector.Vector `gorm:"type:vector(3)" json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (FavoriteRecipe) TableName() string {
	return "favorite_recipes"
}
