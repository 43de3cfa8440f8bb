package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultVisionModel = "gpt-4o-mini"

// VisionMode selects what the vision analysis should extract.
type VisionMode string

const (
	VisionModeDish        VisionMode = "dish"
	VisionModeIngredients VisionMode = "ingredients"
)

// VisionResult is the structured output of an image analysis.
type VisionResult struct {
	Name        string   `json:"name,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
}

const dishVisionPrompt = `You are a culinary expert. Look at the photo of a dish and respond with ONLY a JSON object: {"name": "dish name", "summary": "one or two sentences about the dish"}.`

const ingredientsVisionPrompt = `You are a culinary expert. Look at the photo and list the food ingredients you can identify. Respond with ONLY a JSON object: {"ingredients": ["ingredient", ...]}.`

// VisionService analyzes food photos through a vision-capable chat
// completion endpoint.
type VisionService struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
	parser *RecipeParser
}

// NewVisionService creates a VisionService.
func NewVisionService(apiKey, apiURL string) (*VisionService, error) {
	if apiKey == "" {
		return nil, NewAIError(ErrAPIKeyMissing, fmt.Errorf("vision API key must be set"))
	}
	if apiURL == "" {
		apiURL = defaultOpenAIURL
	}

	return &VisionService{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  defaultVisionModel,
		client: &http.Client{Timeout: 45 * time.Second},
		parser: NewRecipeParser(),
	}, nil
}

// visionContentPart is one element of a multimodal user message.
type visionContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

type visionMessage struct {
	Role    string              `json:"role"`
	Content []visionContentPart `json:"content"`
}

type visionRequest struct {
	Model     string          `json:"model"`
	Messages  []visionMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

// Analyze identifies a dish or its ingredients from a base64 photo. The
// reply is parsed with the same strip-fences-then-parse strategy as chat
// replies, falling back to a heuristic name guess for non-JSON output.
func (s *VisionService) Analyze(ctx context.Context, imageBase64, description string, mode VisionMode) (*VisionResult, error) {
	prompt := dishVisionPrompt
	if mode == VisionModeIngredients {
		prompt = ingredientsVisionPrompt
	}
	if description != "" {
		prompt += " Additional context from the user: " + description
	}

	imagePart := visionContentPart{Type: "image_url"}
	imagePart.ImageURL = &struct {
		URL string `json:"url"`
	}{URL: "data:image/jpeg;base64," + imageBase64}

	reqBody := visionRequest{
		Model: s.model,
		Messages: []visionMessage{
			{
				Role: "user",
				Content: []visionContentPart{
					{Type: "text", Text: prompt},
					imagePart,
				},
			},
		},
		MaxTokens: 500,
	}

	content, err := s.callVisionAPI(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	return s.parseVisionReply(content, mode), nil
}

// parseVisionReply extracts the structured result from the model output.
// Malformed output degrades to a best-effort name/summary, never an error.
func (s *VisionService) parseVisionReply(raw string, mode VisionMode) *VisionResult {
	content := StripFences(raw)

	var result VisionResult
	if err := json.Unmarshal([]byte(content), &result); err == nil {
		if result.Name != "" || result.Summary != "" || len(result.Ingredients) > 0 {
			return &result
		}
	}

	fallback := &VisionResult{Summary: strings.TrimSpace(content)}
	if mode == VisionModeDish {
		fallback.Name = HeuristicName(content)
	}
	return fallback
}

func (s *VisionService) callVisionAPI(ctx context.Context, reqBody visionRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", NewAIError(ErrAPIError, fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", NewAIError(ErrAPIError, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
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
	return result.Choices[0].Message.Content, nil
}

// HealthCheck probes the vision endpoint's model listing.
func (s *VisionService) HealthCheck(ctx context.Context) error {
	return probeModels(ctx, s.client, modelsURL(s.apiURL), s.apiKey)
}

// Name identifies the service for health reporting.
func (s *VisionService) Name() string {
	return "vision"
}
