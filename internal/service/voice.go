package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultSpeechURL  = "https://api.openai.com/v1/audio/speech"
	defaultVoice      = "nova"
	speechCacheTTL    = 12 * time.Hour
	speechAudioFormat = "mp3"
)

// VoiceRequestType tags the variants of a voice generation request.
type VoiceRequestType string

const (
	VoiceTypeStep        VoiceRequestType = "step"
	VoiceTypeCoach       VoiceRequestType = "coach"
	VoiceTypeIntro       VoiceRequestType = "intro"
	VoiceTypeIngredients VoiceRequestType = "ingredients"
	VoiceTypeCustom      VoiceRequestType = "custom"
)

// VoiceRequest is a tagged union over the voice generation variants. Only
// the fields of the active variant are consulted.
type VoiceRequest struct {
	Type        VoiceRequestType `json:"type" binding:"required"`
	StepNumber  int              `json:"step_number,omitempty"`
	StepText    string           `json:"step_text,omitempty"`
	RecipeName  string           `json:"recipe_name,omitempty"`
	Message     string           `json:"message,omitempty"`
	Ingredients []string         `json:"ingredients,omitempty"`
	Text        string           `json:"text,omitempty"`
	Voice       string           `json:"voice,omitempty"`
}

// Validate checks the required fields for the request's variant.
func (r *VoiceRequest) Validate() error {
	switch r.Type {
	case VoiceTypeStep:
		if r.StepText == "" {
			return fmt.Errorf("step_text is required for type step")
		}
		if r.StepNumber < 1 {
			return fmt.Errorf("step_number must be at least 1 for type step")
		}
	case VoiceTypeCoach:
		if r.Message == "" {
			return fmt.Errorf("message is required for type coach")
		}
	case VoiceTypeIntro:
		if r.RecipeName == "" {
			return fmt.Errorf("recipe_name is required for type intro")
		}
	case VoiceTypeIngredients:
		if len(r.Ingredients) == 0 {
			return fmt.Errorf("ingredients is required for type ingredients")
		}
	case VoiceTypeCustom:
		if r.Text == "" {
			return fmt.Errorf("text is required for type custom")
		}
	default:
		return fmt.Errorf("unknown voice request type %q", r.Type)
	}
	return nil
}

// SpeechText renders the spoken text for the request's variant.
func (r *VoiceRequest) SpeechText() string {
	switch r.Type {
	case VoiceTypeStep:
		return fmt.Sprintf("Step %d. %s", r.StepNumber, r.StepText)
	case VoiceTypeCoach:
		return r.Message
	case VoiceTypeIntro:
		return fmt.Sprintf("Let's cook %s! I'll walk you through it step by step.", r.RecipeName)
	case VoiceTypeIngredients:
		return "You will need: " + strings.Join(r.Ingredients, ", ") + "."
	case VoiceTypeCustom:
		return r.Text
	default:
		return ""
	}
}

// SpeechResult is synthesized audio plus metadata for response headers.
type SpeechResult struct {
	Audio     []byte
	MimeType  string
	CharCount int
}

// Voice describes an available synthesis voice.
type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// VoiceService synthesizes speech for cooking-mode narration. Identical
// text is served from the content cache; a fresh request for a component
// cancels a still-pending one for the same component.
type VoiceService struct {
	apiKey string
	apiURL string
	client *http.Client
	cache  ContentCache

	mu       sync.Mutex
	inflight map[VoiceRequestType]*inflightCall
}

type inflightCall struct {
	cancel context.CancelFunc
}

// NewVoiceService creates a VoiceService.
func NewVoiceService(apiKey, apiURL string, cache ContentCache) (*VoiceService, error) {
	if apiKey == "" {
		return nil, NewAIError(ErrAPIKeyMissing, fmt.Errorf("speech API key must be set"))
	}
	if apiURL == "" {
		apiURL = defaultSpeechURL
	}

	return &VoiceService{
		apiKey:   apiKey,
		apiURL:   apiURL,
		client:   &http.Client{Timeout: 30 * time.Second},
		cache:    cache,
		inflight: make(map[VoiceRequestType]*inflightCall),
	}, nil
}

// Synthesize validates the request and returns audio for its spoken text.
func (s *VoiceService) Synthesize(ctx context.Context, req VoiceRequest) (*SpeechResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	voice := req.Voice
	if voice == "" {
		voice = defaultVoice
	}
	text := req.SpeechText()
	key := CacheKey("tts", voice, text)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		if audio, err := base64.StdEncoding.DecodeString(cached); err == nil {
			return &SpeechResult{Audio: audio, MimeType: "audio/mpeg", CharCount: len(text)}, nil
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	call := &inflightCall{cancel: cancel}
	s.supersede(req.Type, call)
	defer s.clearInflight(req.Type, call)

	audio, err := s.callSpeechAPI(ctx, text, voice)
	if err != nil {
		return nil, err
	}

	// A canceled (superseded) request must not populate the cache.
	if ctx.Err() == nil {
		if err := s.cache.Set(ctx, key, base64.StdEncoding.EncodeToString(audio), speechCacheTTL); err != nil {
			log.Printf("[VoiceService] failed to cache audio: %v", err)
		}
	}

	return &SpeechResult{Audio: audio, MimeType: "audio/mpeg", CharCount: len(text)}, nil
}

// supersede cancels a pending request for the same component and records
// this one in its place.
func (s *VoiceService) supersede(component VoiceRequestType, call *inflightCall) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.inflight[component]; ok {
		prev.cancel()
	}
	s.inflight[component] = call
}

func (s *VoiceService) clearInflight(component VoiceRequestType, call *inflightCall) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Only remove our own entry; a newer request may have replaced it.
	if s.inflight[component] == call {
		delete(s.inflight, component)
	}
	call.cancel()
}

func (s *VoiceService) callSpeechAPI(ctx context.Context, text, voice string) ([]byte, error) {
	reqBody := map[string]string{
		"model":           "tts-1",
		"input":           text,
		"voice":           voice,
		"response_format": speechAudioFormat,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, NewAIError(ErrAPIError, fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, NewAIError(ErrAPIError, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, Classify(fmt.Errorf("failed to send request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, classifyStatus(resp.StatusCode, body)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Classify(fmt.Errorf("failed to read audio: %w", err))
	}
	if len(audio) == 0 {
		return nil, NewAIError(ErrInvalidResponse, fmt.Errorf("empty audio response"))
	}
	return audio, nil
}

// ListVoices returns the voices available for synthesis.
func (s *VoiceService) ListVoices() []Voice {
	return []Voice{
		{ID: "nova", Name: "Nova", Description: "Warm and friendly, the default kitchen coach"},
		{ID: "alloy", Name: "Alloy", Description: "Neutral and clear"},
		{ID: "echo", Name: "Echo", Description: "Calm and measured"},
		{ID: "shimmer", Name: "Shimmer", Description: "Bright and energetic"},
	}
}
