package service

import (
	"fmt"
	"strings"

	"github.com/forkful/backend/internal/types"
)

// DefaultHistoryBudget is the character budget for conversation history
// included in a prompt. History beyond the budget is dropped oldest-first.
const DefaultHistoryBudget = 6000

const systemPersona = `You are a friendly professional chef helping a home cook decide what to eat. Suggest recipes that fit the user's constraints and answer cooking questions conversationally.

When suggesting recipes, respond in JSON format with the following structure:
{
    "content": "A short conversational reply",
    "quick_replies": ["Show me more", "Something faster"],
    "recipes": [
        {
            "name": "Recipe name",
            "short_description": "One sentence description",
            "estimated_time": "30 minutes",
            "difficulty": "Easy/Medium/Hard"
        }
    ]
}

Offer at most three recipes per reply. If the user is not asking for recipes, leave the recipes array empty and just answer in the content field.`

// PromptBuilder turns preferences, conversation history and a new message
// into provider request strings. It performs no I/O.
type PromptBuilder struct {
	historyBudget int
}

// NewPromptBuilder creates a PromptBuilder with the given history character
// budget. A non-positive budget falls back to DefaultHistoryBudget.
func NewPromptBuilder(historyBudget int) *PromptBuilder {
	if historyBudget <= 0 {
		historyBudget = DefaultHistoryBudget
	}
	return &PromptBuilder{historyBudget: historyBudget}
}

// BuildSystemPrompt returns the persona and formatting instructions,
// with the user's constraint tags appended verbatim when present.
func (b *PromptBuilder) BuildSystemPrompt(prefs *types.UserPreferences) string {
	var sb strings.Builder
	sb.WriteString(systemPersona)

	if prefs == nil {
		return sb.String()
	}
	if len(prefs.DietaryPrefs) > 0 {
		sb.WriteString(fmt.Sprintf("\n\nThe user follows these dietary preferences: %s.", strings.Join(prefs.DietaryPrefs, ", ")))
	}
	if len(prefs.Allergies) > 0 {
		sb.WriteString(fmt.Sprintf("\nThe user is allergic to: %s. Never include these ingredients.", strings.Join(prefs.Allergies, ", ")))
	}
	if len(prefs.Cuisines) > 0 {
		sb.WriteString(fmt.Sprintf("\nPreferred cuisines: %s.", strings.Join(prefs.Cuisines, ", ")))
	}
	if prefs.CookingSkill != "" {
		sb.WriteString(fmt.Sprintf("\nCooking skill level: %s.", prefs.CookingSkill))
	}
	return sb.String()
}

// BuildUserPrompt combines truncated history with the new message. The
// newest message is always included verbatim; when history exceeds the
// budget, oldest turns are dropped first.
func (b *PromptBuilder) BuildUserPrompt(message string, history []types.ChatMessage) string {
	kept := b.truncateHistory(history)

	var sb strings.Builder
	if len(kept) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, m := range kept {
			sb.WriteString(renderTurn(m))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(message)
	return sb.String()
}

// truncateHistory keeps the newest turns that fit in the budget, walking
// backwards so the oldest turns fall off first.
func (b *PromptBuilder) truncateHistory(history []types.ChatMessage) []types.ChatMessage {
	used := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		cost := len(renderTurn(history[i])) + 1
		if used+cost > b.historyBudget {
			break
		}
		used += cost
		start = i
	}
	return history[start:]
}

func renderTurn(m types.ChatMessage) string {
	label := "User"
	if m.Role == types.RoleAssistant {
		label = "Assistant"
	}
	return label + ": " + m.Content
}
