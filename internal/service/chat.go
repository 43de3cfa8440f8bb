package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/forkful/backend/internal/models"
	"github.com/forkful/backend/internal/types"
)

const (
	sessionTTL        = 24 * time.Hour
	maxStoredMessages = 50
)

// ChatService orchestrates one conversation turn: load preferences, call
// the provider, retry transient failures once, fall back to the secondary
// provider, and persist the exchange. Turns within one session run
// strictly sequentially; independent sessions run in parallel.
type ChatService struct {
	db        *gorm.DB
	redis     *redis.Client
	primary   TextProvider
	secondary TextProvider

	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

// NewChatService creates a ChatService. secondary may be nil when only one
// provider is configured; db may be nil when preference loading is not
// wanted (preferences then come only from the request).
func NewChatService(db *gorm.DB, redisClient *redis.Client, primary, secondary TextProvider) *ChatService {
	return &ChatService{
		db:        db,
		redis:     redisClient,
		primary:   primary,
		secondary: secondary,
		sessions:  make(map[string]*sync.Mutex),
	}
}

// Chat runs one conversation turn for the given session and returns the
// assistant reply. On failure the user message is recorded as failed and
// the classified error is returned.
func (s *ChatService) Chat(ctx context.Context, sessionID string, userID *uuid.UUID, message string, prefs *types.UserPreferences) (*ChatResult, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if prefs == nil && userID != nil {
		prefs = s.loadPreferences(ctx, *userID)
	}

	history, err := s.History(ctx, sessionID)
	if err != nil {
		log.Printf("[ChatService] failed to load history for session %s: %v", sessionID, err)
		history = nil
	}

	userMsg := types.ChatMessage{
		ID:        uuid.New().String(),
		Role:      types.RoleUser,
		Content:   message,
		Status:    types.MessageStatusPending,
		CreatedAt: time.Now(),
	}

	result, genErr := s.generateWithRetry(ctx, s.primary, message, history, prefs)
	if genErr != nil && s.secondary != nil {
		log.Printf("[ChatService] primary provider %s failed (%v), trying %s", s.primary.Name(), genErr, s.secondary.Name())
		result, genErr = s.generateWithRetry(ctx, s.secondary, message, history, prefs)
	}

	if genErr != nil {
		userMsg.Status = types.MessageStatusFailed
		s.appendMessages(ctx, sessionID, userMsg)
		return nil, Classify(genErr)
	}

	userMsg.Status = types.MessageStatusSent
	assistantMsg := types.ChatMessage{
		ID:            uuid.New().String(),
		Role:          types.RoleAssistant,
		Content:       result.Content,
		Status:        types.MessageStatusSent,
		QuickReplies:  result.QuickReplies,
		RecipeOptions: result.RecipeOptions,
		CreatedAt:     time.Now(),
	}
	s.appendMessages(ctx, sessionID, userMsg, assistantMsg)

	return result, nil
}

// generateWithRetry calls the provider, retrying exactly once when the
// classified failure is transient. Timeouts are not retried automatically.
func (s *ChatService) generateWithRetry(ctx context.Context, provider TextProvider, message string, history []types.ChatMessage, prefs *types.UserPreferences) (*ChatResult, error) {
	result, err := provider.GenerateResponse(ctx, message, history, prefs)
	if err == nil {
		return result, nil
	}

	classified := Classify(err)
	if !classified.Retryable() || classified.Kind == ErrTimeout {
		return nil, classified
	}

	log.Printf("[ChatService] retrying %s after %s", provider.Name(), classified.Kind)
	result, err = provider.GenerateResponse(ctx, message, history, prefs)
	if err != nil {
		return nil, Classify(err)
	}
	return result, nil
}

// History returns the stored messages for a session, oldest first.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]types.ChatMessage, error) {
	if s.redis == nil {
		return nil, nil
	}

	raw, err := s.redis.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}

	messages := make([]types.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg types.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			log.Printf("[ChatService] skipping unreadable message in session %s: %v", sessionID, err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// ClearSession deletes a session's stored history.
func (s *ChatService) ClearSession(ctx context.Context, sessionID string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, sessionKey(sessionID)).Err()
}

// appendMessages persists messages to the session list and refreshes its
// TTL. Persistence failures are logged, not fatal: the turn already
// happened.
func (s *ChatService) appendMessages(ctx context.Context, sessionID string, messages ...types.ChatMessage) {
	if s.redis == nil {
		return
	}

	key := sessionKey(sessionID)
	pipe := s.redis.Pipeline()
	for _, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			log.Printf("[ChatService] failed to marshal message: %v", err)
			continue
		}
		pipe.RPush(ctx, key, data)
	}
	pipe.LTrim(ctx, key, -maxStoredMessages, -1)
	pipe.Expire(ctx, key, sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[ChatService] failed to persist session %s: %v", sessionID, err)
	}
}

// loadPreferences assembles prompt constraints from the user's stored
// dietary preferences, allergens, cuisines and profile skill level.
func (s *ChatService) loadPreferences(ctx context.Context, userID uuid.UUID) *types.UserPreferences {
	if s.db == nil {
		return nil
	}

	prefs := &types.UserPreferences{}

	var dietary []models.DietaryPreference
	s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&dietary)
	for _, d := range dietary {
		if d.PreferenceType == "custom" && d.CustomName != "" {
			prefs.DietaryPrefs = append(prefs.DietaryPrefs, d.CustomName)
		} else {
			prefs.DietaryPrefs = append(prefs.DietaryPrefs, d.PreferenceType)
		}
	}

	var allergens []models.Allergen
	s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&allergens)
	for _, a := range allergens {
		prefs.Allergies = append(prefs.Allergies, a.AllergenName)
	}

	var cuisines []models.CuisinePreference
	s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&cuisines)
	for _, c := range cuisines {
		prefs.Cuisines = append(prefs.Cuisines, c.CuisineName)
	}

	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err == nil {
		prefs.CookingSkill = profile.CookingSkill
	}

	return prefs
}

// sessionLock returns the mutex serializing turns for one session.
func (s *ChatService) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.sessions[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.sessions[sessionID] = lock
	}
	return lock
}

func sessionKey(sessionID string) string {
	return "chat:session:" + sessionID
}
