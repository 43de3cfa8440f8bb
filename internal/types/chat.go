package types

import (
	"time"
)

// Message roles within a chat session.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Delivery status of a conversation message.
const (
	MessageStatusSent    = "sent"
	MessageStatusPending = "pending"
	MessageStatusFailed  = "failed"
)

// ChatMessage is a single turn in a conversation session.
type ChatMessage struct {
	ID            string         `json:"id"`
	Role          string         `json:"role"`
	Content       string         `json:"content"`
	Status        string         `json:"status"`
	QuickReplies  []string       `json:"quick_replies,omitempty"`
	RecipeOptions []RecipeOption `json:"recipe_options,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// RecipeOption is a lightweight recipe candidate surfaced after an
// assistant turn, before full detail is fetched.
type RecipeOption struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	ShortDescription string `json:"short_description"`
	EstimatedTime    string `json:"estimated_time"`
	Difficulty       string `json:"difficulty"`
}

// RecipeIngredient is one entry in a recipe's ingredient list.
type RecipeIngredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

// RecipeDetail is the full recipe payload parsed from a provider reply.
type RecipeDetail struct {
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Ingredients  []RecipeIngredient `json:"ingredients"`
	Instructions []string           `json:"instructions"`
	PrepTime     string             `json:"prep_time"`
	CookTime     string             `json:"cook_time"`
	Servings     string             `json:"servings"`
	Difficulty   string             `json:"difficulty"`
	Calories     float64            `json:"calories"`
	Protein      float64            `json:"protein"`
	Carbs        float64            `json:"carbs"`
	Fat          float64            `json:"fat"`
}
