package router

import (
	"fmt"

	"github.com/anonto42/snapgram/backend/internal/auth"
	"github.com/anonto42/snapgram/backend/internal/handlers"
	"github.com/anonto42/snapgram/backend/internal/middleware"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/anonto42/snapgram/backend/internal/storage"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	DB     *gorm.DB
	Images *storage.Images
	Tokens *auth.TokenIssuer
	// Firebase is nil when Firebase login is not configured.
	Firebase services.IDTokenVerifier
	Logger   *logrus.Logger
}

// SetupMiddleware configures global Echo middleware and the error handler
func SetupMiddleware(e *echo.Echo, logger *logrus.Logger) {
	e.HTTPErrorHandler = handlers.ErrorHandler(logger)

	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request")
			} else {
				entry.Info("request")
			}
			return nil
		},
	}))
	e.Use(middleware.Metrics(handlers.StatusCode))
	logger.Info("Global middleware configured.")
}

// SetupRoutes migrates the schema and wires every route to its handler
func SetupRoutes(e *echo.Echo, deps Deps) error {
	if err := models.Migrate(deps.DB); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	deps.Logger.Info("PostgreSQL auto-migrations completed for all models.")

	// --- Services ---
	identity := services.NewIdentity(deps.DB, deps.Tokens, deps.Firebase)
	profiles := services.NewProfiles(deps.DB)
	graph := services.NewFollowGraph(deps.DB)
	posts := services.NewPosts(deps.DB, deps.Images)
	feed := services.NewFeedComposer(deps.DB)

	// Health check - always accessible
	e.GET("/health", handlers.NewHealthHandler(deps.DB).HealthCheck)

	postHandler := handlers.NewPostHandler(posts, deps.Images)
	postHandler.RegisterMediaRoutes(e)

	// --- Unprotected routes for authentication ---
	authHandler := handlers.NewAuthHandler(identity, deps.Tokens)
	authHandler.RegisterAuthRoutes(e.Group("/api/v1/auth"))
	deps.Logger.WithField("firebase", identity.FirebaseEnabled()).Info("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(deps.Tokens))
	api.POST("/auth/logout", authHandler.Logout)

	handlers.NewUserHandler(profiles).RegisterProfileRoutes(api)
	handlers.NewFollowHandler(graph).RegisterFollowRoutes(api)
	postHandler.RegisterPostRoutes(api)
	handlers.NewLikeHandler(posts).RegisterLikeRoutes(api)
	handlers.NewFeedHandler(feed, posts).RegisterFeedRoutes(api)

	deps.Logger.Info("All routes configured.")
	return nil
}
