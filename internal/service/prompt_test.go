package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/backend/internal/types"
)

func TestBuildSystemPrompt(t *testing.T) {
	builder := NewPromptBuilder(0)

	t.Run("should include persona without preferences", func(t *testing.T) {
		prompt := builder.BuildSystemPrompt(nil)
		assert.Contains(t, prompt, "friendly professional chef")
		assert.Contains(t, prompt, "quick_replies")
	})

	t.Run("should append constraint tags verbatim", func(t *testing.T) {
		prefs := &types.UserPreferences{
			DietaryPrefs: []string{"vegetarian", "low-carb"},
			Allergies:    []string{"peanuts", "shellfish"},
			Cuisines:     []string{"Thai"},
			CookingSkill: "beginner",
		}

		prompt := builder.BuildSystemPrompt(prefs)
		assert.Contains(t, prompt, "vegetarian, low-carb")
		assert.Contains(t, prompt, "peanuts, shellfish")
		assert.Contains(t, prompt, "Never include these ingredients")
		assert.Contains(t, prompt, "Thai")
		assert.Contains(t, prompt, "beginner")
	})

	t.Run("should omit sections for empty preference lists", func(t *testing.T) {
		prompt := builder.BuildSystemPrompt(&types.UserPreferences{})
		assert.NotContains(t, prompt, "allergic")
		assert.NotContains(t, prompt, "dietary preferences")
	})
}

func TestBuildUserPrompt(t *testing.T) {
	t.Run("new message alone when no history", func(t *testing.T) {
		builder := NewPromptBuilder(0)
		prompt := builder.BuildUserPrompt("What can I make with chicken and rice?", nil)
		assert.Equal(t, "What can I make with chicken and rice?", prompt)
	})

	t.Run("includes history before the new message", func(t *testing.T) {
		builder := NewPromptBuilder(0)
		history := []types.ChatMessage{
			{Role: types.RoleUser, Content: "What can I make with chicken and rice?"},
			{Role: types.RoleAssistant, Content: "How about a stir fry?"},
		}

		prompt := builder.BuildUserPrompt("Something spicier", history)
		assert.Contains(t, prompt, "User: What can I make with chicken and rice?")
		assert.Contains(t, prompt, "Assistant: How about a stir fry?")
		assert.True(t, strings.HasSuffix(prompt, "Something spicier"))

		userIdx := strings.Index(prompt, "User:")
		assistantIdx := strings.Index(prompt, "Assistant:")
		assert.Less(t, userIdx, assistantIdx, "history should keep chronological order")
	})

	t.Run("drops oldest turns when over budget", func(t *testing.T) {
		builder := NewPromptBuilder(60)
		history := []types.ChatMessage{
			{Role: types.RoleUser, Content: "oldest message that should be dropped"},
			{Role: types.RoleAssistant, Content: "middle reply"},
			{Role: types.RoleUser, Content: "newest question"},
		}

		prompt := builder.BuildUserPrompt("and the follow-up", history)
		assert.NotContains(t, prompt, "oldest message")
		assert.Contains(t, prompt, "newest question")
	})

	t.Run("newest message always included verbatim", func(t *testing.T) {
		builder := NewPromptBuilder(10)
		long := strings.Repeat("tell me about pasta ", 50)

		history := make([]types.ChatMessage, 20)
		for i := range history {
			history[i] = types.ChatMessage{Role: types.RoleUser, Content: fmt.Sprintf("turn %d with some padding text", i)}
		}

		prompt := builder.BuildUserPrompt(long, history)
		assert.Contains(t, prompt, long)
	})

	t.Run("empty history never grows output", func(t *testing.T) {
		builder := NewPromptBuilder(5)
		prompt := builder.BuildUserPrompt("hi", []types.ChatMessage{})
		require.Equal(t, "hi", prompt)
	})
}
