package types

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile represents a user's profile
type UserProfile struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	Username          string    `json:"username"`
	Bio               string    `json:"bio"`
	ProfilePictureURL string    `json:"profile_picture_url"`
	CookingSkill      string    `json:"cooking_skill"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// UserPreferences represents a user's cooking preferences. It is a
// read-only input to prompt construction.
type UserPreferences struct {
	DietaryPrefs []string `json:"dietary_prefs"`
	Allergies    []string `json:"allergies"`
	Cuisines     []string `json:"cuisines"`
	CookingSkill string   `json:"cooking_skill"`
}

// UpdateProfileRequest represents a request to update a user's profile
type UpdateProfileRequest struct {
	Username          string  `json:"username,omitempty"`
	Bio               *string `json:"bio,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
	CookingSkill      *string `json:"cooking_skill,omitempty"`
}
