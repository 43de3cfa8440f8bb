package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/forkful/backend/config"
	"github.com/forkful/backend/internal/api"
	"github.com/forkful/backend/internal/database"
	"github.com/forkful/backend/internal/middleware"
	"github.com/forkful/backend/internal/router"
	"github.com/forkful/backend/internal/service"
)

const providerTimeout = 60 * time.Second

// Server wires configuration, storage and services into a running HTTP
// server.
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
}

// New builds the full application from configuration: database, Redis,
// AI providers, media services and routes.
func New(cfg *config.Config) (*Server, error) {
	db, err := database.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Warning: Redis unavailable, sessions and media caching disabled: %v", err)
		redisClient = nil
	}

	primary, secondary, probes := buildProviders(cfg)
	if primary == nil {
		log.Printf("Warning: no text provider configured, chat will fail until a key is set")
	}

	cache := buildCache(redisClient)
	limiter := service.NewMediaRateLimiter(cfg.ImageRateLimit, cfg.ImageRateWindow)

	authService := service.NewAuthService(db, cfg.JWTSecret)
	chatService := service.NewChatService(db, redisClient, primary, secondary)
	profileService := service.NewProfileService(db)
	favoritesService := service.NewFavoritesService(db)

	var imageService *service.ImageService
	if cfg.OpenAIAPIKey != "" {
		s3Config, err := config.NewS3Config(context.Background())
		if err != nil {
			log.Printf("Warning: S3 unavailable, serving provider image URLs directly: %v", err)
			s3Config = nil
		}
		imageService, err = service.NewImageService(cfg.OpenAIAPIKey, "", s3Config, cache, limiter)
		if err != nil {
			return nil, err
		}
	}

	var voiceService *service.VoiceService
	if cfg.OpenAIAPIKey != "" {
		voiceService, err = service.NewVoiceService(cfg.OpenAIAPIKey, "", cache)
		if err != nil {
			return nil, err
		}
	}

	var visionService *service.VisionService
	if cfg.OpenAIAPIKey != "" {
		visionService, err = service.NewVisionService(cfg.OpenAIAPIKey, "")
		if err != nil {
			return nil, err
		}
		probes = append(probes, visionService)
	}

	healthService := service.NewHealthService(probes...)

	handlers := router.Handlers{
		Auth:      api.NewAuthHandler(authService),
		Chat:      api.NewChatHandler(chatService),
		Health:    api.NewHealthHandler(healthService),
		Profile:   api.NewProfileHandler(profileService),
		Favorites: api.NewFavoritesHandler(favoritesService, imageService),
	}
	if voiceService != nil {
		handlers.Voice = api.NewVoiceHandler(voiceService)
	}
	if visionService != nil {
		handlers.Vision = api.NewVisionHandler(visionService)
	}
	if imageService != nil {
		handlers.Image = api.NewImageHandler(imageService)
	}

	var chatLimiter *middleware.RateLimiter
	if redisClient != nil {
		chatLimiter = middleware.NewChatRateLimiter(redisClient)
	}

	engine := router.SetupRouter(handlers, authService, chatLimiter)

	return &Server{
		cfg:    cfg,
		engine: engine,
		db:     db,
		redis:  redisClient,
	}, nil
}

// buildProviders constructs the configured text providers. DeepSeek is
// primary when available; OpenAI serves as primary otherwise and as
// fallback when both keys are set.
func buildProviders(cfg *config.Config) (primary, secondary service.TextProvider, probes []service.HealthProbe) {
	if cfg.DeepSeekAPIKey != "" {
		p, err := service.NewDeepSeekProvider(cfg.DeepSeekAPIKey, cfg.DeepSeekAPIURL, providerTimeout)
		if err != nil {
			log.Printf("Warning: failed to configure DeepSeek provider: %v", err)
		} else {
			primary = p
			probes = append(probes, p)
		}
	}

	if cfg.OpenAIAPIKey != "" {
		p, err := service.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIAPIURL, providerTimeout)
		if err != nil {
			log.Printf("Warning: failed to configure OpenAI provider: %v", err)
		} else if primary == nil {
			primary = p
			probes = append(probes, p)
		} else {
			secondary = p
			probes = append(probes, p)
		}
	}

	return primary, secondary, probes
}

// buildCache prefers Redis for media content, falling back to an
// in-process cache when Redis is down.
func buildCache(redisClient *redis.Client) service.ContentCache {
	if redisClient != nil {
		return service.NewRedisContentCache(redisClient, "media:cache")
	}
	return service.NewMemoryContentCache()
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    s.cfg.ServerHost + ":" + s.cfg.ServerPort,
		Handler: s.engine,
	}

	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and closes connections.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			return err
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("Warning: failed to close Redis client: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Warning: failed to close database: %v", err)
		}
	}

	return nil
}
