package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/forkful/backend/internal/types"
)

const (
	defaultDeepSeekURL   = "https://api.deepseek.com/v1/chat/completions"
	defaultDeepSeekModel = "deepseek-chat"
)

// DeepSeekProvider is the primary text-generation backend.
type DeepSeekProvider struct {
	apiKey  string
	apiURL  string
	model   string
	client  *http.Client
	prompts *PromptBuilder
	parser  *RecipeParser
}

// NewDeepSeekProvider creates a DeepSeek chat-completions client.
func NewDeepSeekProvider(apiKey, apiURL string, timeout time.Duration) (*DeepSeekProvider, error) {
	if apiKey == "" {
		return nil, NewAIError(ErrAPIKeyMissing, fmt.Errorf("DeepSeek API key must be set"))
	}
	if apiURL == "" {
		apiURL = defaultDeepSeekURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &DeepSeekProvider{
		apiKey:  apiKey,
		apiURL:  apiURL,
		model:   defaultDeepSeekModel,
		client:  &http.Client{Timeout: timeout},
		prompts: NewPromptBuilder(DefaultHistoryBudget),
		parser:  NewRecipeParser(),
	}, nil
}

func (p *DeepSeekProvider) Name() string {
	return "deepseek"
}

// GenerateResponse performs one chat-completions call and normalizes the
// reply. Failures surface as classified errors; no retries happen here.
func (p *DeepSeekProvider) GenerateResponse(ctx context.Context, message string, history []types.ChatMessage, prefs *types.UserPreferences) (*ChatResult, error) {
	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: p.prompts.BuildSystemPrompt(prefs)},
			{Role: "user", Content: p.prompts.BuildUserPrompt(message, history)},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.9,
	}

	content, err := postChatCompletion(ctx, p.client, p.apiURL, p.apiKey, reqBody)
	if err != nil {
		return nil, err
	}

	parsed := p.parser.Parse(content)
	return &ChatResult{
		Content:       parsed.Content,
		QuickReplies:  parsed.QuickReplies,
		RecipeOptions: parsed.RecipeOptions,
	}, nil
}

// HealthCheck probes the provider's model listing endpoint.
func (p *DeepSeekProvider) HealthCheck(ctx context.Context) error {
	return probeModels(ctx, p.client, modelsURL(p.apiURL), p.apiKey)
}

// modelsURL derives the models endpoint from a chat-completions URL.
func modelsURL(chatURL string) string {
	if idx := strings.Index(chatURL, "/chat/completions"); idx >= 0 {
		return chatURL[:idx] + "/models"
	}
	return strings.TrimSuffix(chatURL, "/") + "/models"
}
