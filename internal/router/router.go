package router

import (
	"github.com/gin-gonic/gin"

	"github.com/forkful/backend/internal/api"
	"github.com/forkful/backend/internal/middleware"
)

// Handlers collects the API handlers the router wires up. Media handlers
// may be nil when the corresponding provider is not configured.
type Handlers struct {
	Auth      *api.AuthHandler
	Chat      *api.ChatHandler
	Voice     *api.VoiceHandler
	Vision    *api.VisionHandler
	Image     *api.ImageHandler
	Health    *api.HealthHandler
	Profile   *api.ProfileHandler
	Favorites *api.FavoritesHandler
}

// SetupRouter configures the application routes
func SetupRouter(
	handlers Handlers,
	validator middleware.TokenValidator,
	chatLimiter *middleware.RateLimiter,
) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public routes
	handlers.Auth.RegisterRoutes(v1)
	handlers.Health.RegisterRoutes(v1)
	if handlers.Voice != nil {
		handlers.Voice.RegisterRoutes(v1)
	}
	if handlers.Vision != nil {
		handlers.Vision.RegisterRoutes(v1)
	}
	if handlers.Image != nil {
		handlers.Image.RegisterRoutes(v1)
	}

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(validator))
	{
		handlers.Profile.RegisterRoutes(protected)
		handlers.Favorites.RegisterRoutes(protected)

		chatGroup := protected.Group("")
		if chatLimiter != nil {
			chatGroup.Use(chatLimiter.RateLimitMiddleware())
		}
		handlers.Chat.RegisterRoutes(chatGroup)
	}

	return router
}
