package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/bincan-backend/internal/config"
	"github.com/stemsi/bincan-backend/internal/handler"
	"github.com/stemsi/bincan-backend/internal/middleware"
	"github.com/stemsi/bincan-backend/internal/response"
)

// contentMaxAge is how long clients may cache catalog responses.
const contentMaxAge = time.Hour

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Exercise *handler.ExerciseHandler
	Content  *handler.ContentHandler
	WS       *handler.WSHandler
	System   *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background goroutines owned by the middlewares.
func SetupRouter(ctx context.Context, handlers *Handlers, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))

	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	// Rate limiter for routes that generate new exercises.
	createLimiter := middleware.NewRateLimiter(ctx, cfg.RateLimitPerMinute, time.Minute)

	api := router.Group("/api/v1")

	// ─── 1. Exercises ──────────────────────────────────────────────────
	exercises := api.Group("/exercises")
	exercises.Use(middleware.NoStore())
	{
		exercises.POST("", createLimiter.Middleware(), handlers.Exercise.CreateExercise)
		exercises.POST("/from-category", createLimiter.Middleware(), handlers.Exercise.CreateFromCategory)
		exercises.GET("/:id", handlers.Exercise.GetExercise)
		exercises.POST("/:id/answer", handlers.Exercise.SubmitAnswer)
		exercises.POST("/:id/grade", handlers.Exercise.GradeExercise)
		exercises.POST("/:id/reset", handlers.Exercise.ResetExercise)
		exercises.GET("/:id/blanks/:blank_id/hint", handlers.Exercise.GetHint)
		exercises.GET("/:id/export", handlers.Exercise.ExportExercise)
		exercises.GET("/:id/scores", handlers.Exercise.ListScores)
	}

	// ─── 2. Content Catalog ────────────────────────────────────────────
	content := api.Group("/content")
	content.Use(middleware.CacheControl(contentMaxAge))
	{
		content.GET("", handlers.Content.ListContent)
		content.GET("/:category", handlers.Content.GetContent)
	}

	// ─── 3. System ─────────────────────────────────────────────────────
	api.GET("/system/metrics", handlers.System.SystemMetricsSSE)

	// ─── 4. WebSocket ──────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/exercises/:id/stream", handlers.WS.ExerciseStream)
	}

	return router
}
