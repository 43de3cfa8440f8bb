package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/forkful/backend/config"
)

const (
	defaultImagesURL      = "https://api.openai.com/v1/images/generations"
	imageCacheTTL         = 24 * time.Hour
	imageLastKnownTTL     = 7 * 24 * time.Hour
	defaultPlaceholderURL = "/static/images/recipe-placeholder.png"
)

// ImageGenerationRequest represents a request to the image generation API
type ImageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
}

// ImageGenerationResponse represents the response from the image API
type ImageGenerationResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url,omitempty"`
		B64JSON       string `json:"b64_json,omitempty"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

// ImageService generates recipe images behind a content cache and a
// rolling-window rate limiter. The image path never hard-fails: on
// generation failure it falls back to the last known image for the same
// content, then to a static placeholder.
type ImageService struct {
	apiKey         string
	apiURL         string
	client         *http.Client
	s3Config       *config.S3Config
	cache          ContentCache
	limiter        *MediaRateLimiter
	placeholderURL string
}

// NewImageService creates an ImageService. s3Config may be nil, in which
// case generated provider URLs are returned directly.
func NewImageService(apiKey, apiURL string, s3Config *config.S3Config, cache ContentCache, limiter *MediaRateLimiter) (*ImageService, error) {
	if apiKey == "" {
		return nil, NewAIError(ErrAPIKeyMissing, fmt.Errorf("image generation API key must be set"))
	}
	if apiURL == "" {
		apiURL = defaultImagesURL
	}

	return &ImageService{
		apiKey:         apiKey,
		apiURL:         apiURL,
		client:         &http.Client{Timeout: 60 * time.Second},
		s3Config:       s3Config,
		cache:          cache,
		limiter:        limiter,
		placeholderURL: defaultPlaceholderURL,
	}, nil
}

// GenerateRecipeImage returns a renderable image URL for the recipe,
// serving from cache when the same (name, description) was generated
// within the TTL.
func (s *ImageService) GenerateRecipeImage(ctx context.Context, name, description string) (string, error) {
	key := CacheKey(name, description)

	if url, err := s.cache.Get(ctx, key); err == nil {
		return url, nil
	}

	var url string
	genErr := s.limiter.Execute(ctx, func() error {
		var err error
		url, err = s.generateImage(ctx, buildRecipeImagePrompt(name, description))
		return err
	})

	if genErr != nil {
		log.Printf("[ImageService] generation failed for %q: %v", name, genErr)
		return s.fallbackImage(ctx, key), nil
	}

	// A superseded request must not populate the cache.
	if ctx.Err() != nil {
		return s.fallbackImage(ctx, key), nil
	}

	if err := s.cache.Set(ctx, key, url, imageCacheTTL); err != nil {
		log.Printf("[ImageService] failed to cache image for %q: %v", name, err)
	}
	if err := s.cache.Set(ctx, key+":last", url, imageLastKnownTTL); err != nil {
		log.Printf("[ImageService] failed to store last-known image for %q: %v", name, err)
	}

	return url, nil
}

// fallbackImage returns the last known image for the key, or the static
// placeholder when there is none.
func (s *ImageService) fallbackImage(ctx context.Context, key string) string {
	if url, err := s.cache.Get(ctx, key+":last"); err == nil {
		return url
	}
	return s.placeholderURL
}

// generateImage performs one image-generation call, uploading the result
// to S3 when storage is configured.
func (s *ImageService) generateImage(ctx context.Context, prompt string) (string, error) {
	reqBody := ImageGenerationRequest{
		Model:          "dall-e-3",
		Prompt:         prompt,
		N:              1,
		Size:           "1024x1024",
		Quality:        "standard",
		ResponseFormat: "url",
	}

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

	var result ImageGenerationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", NewAIError(ErrInvalidResponse, fmt.Errorf("failed to decode response: %w", err))
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return "", NewAIError(ErrInvalidResponse, fmt.Errorf("no image data in API response"))
	}

	imageURL := result.Data[0].URL
	if s.s3Config == nil {
		return imageURL, nil
	}

	s3URL, err := s.downloadAndUploadToS3(ctx, imageURL)
	if err != nil {
		log.Printf("[ImageService] failed to upload to S3, returning original URL: %v", err)
		return imageURL, nil
	}
	return s3URL, nil
}

// downloadAndUploadToS3 downloads an image from URL and uploads it to S3
func (s *ImageService) downloadAndUploadToS3(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image, status: %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}

	fileName := fmt.Sprintf("recipe-images/%s.png", uuid.New().String())

	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName), nil
}

// buildRecipeImagePrompt creates a food-photography prompt for a recipe.
func buildRecipeImagePrompt(name, description string) string {
	prompt := "A professional food photography shot of " + name
	if description != "" {
		prompt += ", " + description
	}
	prompt += ", shot with natural lighting, shallow depth of field, restaurant quality presentation, appetizing colors"

	if len(prompt) > 900 {
		prompt = prompt[:900]
	}
	return prompt
}
