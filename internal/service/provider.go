package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/forkful/backend/internal/types"
)

// ChatResult is the normalized output of a text-generation provider.
type ChatResult struct {
	Content       string               `json:"content"`
	QuickReplies  []string             `json:"quick_replies,omitempty"`
	RecipeOptions []types.RecipeOption `json:"recipe_options,omitempty"`
}

// TextProvider is a text-generation backend. Implementations perform one
// HTTP call per request, surface failures as classified errors, and never
// retry internally; retry is a caller decision.
type TextProvider interface {
	Name() string
	GenerateResponse(ctx context.Context, message string, history []types.ChatMessage, prefs *types.UserPreferences) (*ChatResult, error)
	HealthCheck(ctx context.Context) error
}

// Chat-completions wire types, shared by the DeepSeek and OpenAI clients.

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
	Temperature    float64           `json:"temperature,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// postChatCompletion performs one chat-completions call and returns the
// first choice's content. All failures come back classified.
func postChatCompletion(ctx context.Context, client *http.Client, apiURL, apiKey string, reqBody chatRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", NewAIError(ErrAPIError, fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", NewAIError(ErrAPIError, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return "", Classify(fmt.Errorf("failed to send request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Classify(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, body)
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", NewAIError(ErrInvalidResponse, fmt.Errorf("failed to decode response: %w", err))
	}
	if len(result.Choices) == 0 {
		return "", NewAIError(ErrInvalidResponse, fmt.Errorf("no choices in response"))
	}
	if result.Choices[0].FinishReason == "content_filter" {
		return "", NewAIError(ErrGenerationFailed, fmt.Errorf("response blocked by content filter"))
	}

	return result.Choices[0].Message.Content, nil
}

// classifyStatus maps a non-2xx provider status onto the error taxonomy.
func classifyStatus(status int, body []byte) *AIError {
	err := fmt.Errorf("API request failed with status %d: %s", status, bytes.TrimSpace(body))
	switch {
	case status == http.StatusTooManyRequests:
		return NewAIError(ErrRateLimited, err)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return NewAIError(ErrAPIKeyMissing, err)
	case status >= 500:
		return NewAIError(ErrServerError, err)
	default:
		return NewAIError(ErrAPIError, err)
	}
}

// probeModels is a lightweight liveness check against a provider's model
// listing endpoint.
func probeModels(ctx context.Context, client *http.Client, modelsURL, apiKey string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, modelsURL, nil)
	if err != nil {
		return NewAIError(ErrAPIError, err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return Classify(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(resp.StatusCode, nil)
	}
	return nil
}
