package service

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/forkful/backend/internal/types"
)

// ParsedReply is the structured content extracted from a provider's raw
// textual output. Absence of structure is a valid, empty result.
type ParsedReply struct {
	Content       string
	QuickReplies  []string
	RecipeOptions []types.RecipeOption
	Detail        *types.RecipeDetail
}

// replyEnvelope mirrors the JSON shape the system prompt asks for.
type replyEnvelope struct {
	Content      string               `json:"content"`
	QuickReplies []string             `json:"quick_replies"`
	Recipes      []types.RecipeOption `json:"recipes"`
}

// RecipeParser extracts recipe structures from free-text/JSON-hybrid model
// output. It never fails: malformed input degrades to plain text.
type RecipeParser struct{}

// NewRecipeParser creates a RecipeParser.
func NewRecipeParser() *RecipeParser {
	return &RecipeParser{}
}

// Parse strips code fences and attempts a strict JSON parse of the reply.
// Non-JSON content comes back as plain text with an empty recipe list.
func (p *RecipeParser) Parse(raw string) *ParsedReply {
	content := StripFences(raw)

	if !json.Valid([]byte(content)) {
		return &ParsedReply{Content: content}
	}

	// Envelope shape first: {content, quick_replies, recipes}.
	var env replyEnvelope
	if err := json.Unmarshal([]byte(content), &env); err == nil {
		if env.Content != "" || len(env.Recipes) > 0 || len(env.QuickReplies) > 0 {
			for i := range env.Recipes {
				if env.Recipes[i].ID == "" {
					env.Recipes[i].ID = uuid.New().String()
				}
			}
			text := env.Content
			if text == "" {
				text = content
			}
			return &ParsedReply{
				Content:       text,
				QuickReplies:  env.QuickReplies,
				RecipeOptions: env.Recipes,
			}
		}
	}

	// Bare recipe object: {"name": ..., ...}.
	var detail types.RecipeDetail
	if err := json.Unmarshal([]byte(content), &detail); err == nil && detail.Name != "" {
		option := types.RecipeOption{
			ID:               uuid.New().String(),
			Name:             detail.Name,
			ShortDescription: detail.Description,
			EstimatedTime:    detail.CookTime,
			Difficulty:       detail.Difficulty,
		}
		return &ParsedReply{
			Content:       content,
			RecipeOptions: []types.RecipeOption{option},
			Detail:        &detail,
		}
	}

	return &ParsedReply{Content: content}
}

// ParseDetail parses a full recipe object from the reply, falling back to
// a heuristic name guess when the content is not valid JSON.
func (p *RecipeParser) ParseDetail(raw string) *types.RecipeDetail {
	content := StripFences(raw)

	var detail types.RecipeDetail
	if err := json.Unmarshal([]byte(content), &detail); err == nil && detail.Name != "" {
		return &detail
	}

	return &types.RecipeDetail{
		Name:        HeuristicName(content),
		Description: strings.TrimSpace(content),
	}
}

// StripFences removes a wrapping markdown code fence, with or without a
// language marker, leaving the inner content.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. "json").
		first := strings.TrimSpace(s[:idx])
		if first == "" || isFenceTag(first) {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isFenceTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// HeuristicName guesses a recipe name from non-JSON provider output by
// taking the first non-empty line. This is deliberately best-effort: it is
// only reached when the provider ignored the formatting instructions.
func HeuristicName(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "#*- ")
		if line == "" {
			continue
		}
		if len(line) > 80 {
			line = strings.TrimSpace(line[:80])
		}
		return line
	}
	return ""
}
