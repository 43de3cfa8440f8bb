package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/forkful/backend/internal/types"
)

const (
	defaultOpenAIURL   = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel = "gpt-4o-mini"
)

// OpenAIProvider is the secondary text-generation backend, used when the
// primary provider fails with a terminal error.
type OpenAIProvider struct {
	apiKey  string
	apiURL  string
	model   string
	client  *http.Client
	prompts *PromptBuilder
	parser  *RecipeParser
}

// NewOpenAIProvider creates an OpenAI chat-completions client.
func NewOpenAIProvider(apiKey, apiURL string, timeout time.Duration) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, NewAIError(ErrAPIKeyMissing, fmt.Errorf("OpenAI API key must be set"))
	}
	if apiURL == "" {
		apiURL = defaultOpenAIURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIProvider{
		apiKey:  apiKey,
		apiURL:  apiURL,
		model:   defaultOpenAIModel,
		client:  &http.Client{Timeout: timeout},
		prompts: NewPromptBuilder(DefaultHistoryBudget),
		parser:  NewRecipeParser(),
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

// GenerateResponse performs one chat-completions call and normalizes the
// reply into the common result shape.
func (p *OpenAIProvider) GenerateResponse(ctx context.Context, message string, history []types.ChatMessage, prefs *types.UserPreferences) (*ChatResult, error) {
	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: p.prompts.BuildSystemPrompt(prefs)},
			{Role: "user", Content: p.prompts.BuildUserPrompt(message, history)},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.7,
		MaxTokens:      1500,
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
func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
	return probeModels(ctx, p.client, modelsURL(p.apiURL), p.apiKey)
}
