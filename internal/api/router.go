package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kdigolf/caddie/internal/api/handlers"
	"github.com/kdigolf/caddie/internal/api/middleware"
	"github.com/kdigolf/caddie/internal/services"
	"github.com/kdigolf/caddie/pkg/config"
)

// Services bundles everything the routes need.
type Services struct {
	Courses   *services.CourseService
	Players   *services.PlayerService
	Matches   *services.MatchService
	Recommend *services.RecommendService
	Voice     *services.VoiceService
	Hub       *services.MatchHub
}

// SetupRoutes wires the API surface under the given group.
func SetupRoutes(group *gin.RouterGroup, svc Services, cfg *config.Config, logger *logrus.Logger) {
	golfHandler := handlers.NewGolfHandler(svc.Courses, svc.Recommend, logger)
	matchHandler := handlers.NewMatchHandler(svc.Matches, svc.Courses, logger)
	playerHandler := handlers.NewPlayerHandler(svc.Players, logger)
	voiceHandler := handlers.NewVoiceHandler(svc.Voice, logger)

	// Recommendation and voice are fix-driven: every GPS update hits
	// them, so they carry the per-user rate limit.
	recommendLimiter := middleware.NewRateLimiter(float64(cfg.RecommendRateLimit), cfg.RecommendRateBurst)

	// Geometry queries are read-only and anonymous-friendly.
	golf := group.Group("/golf")
	{
		golf.POST("/identify-hole", golfHandler.IdentifyHole)
		golf.POST("/terrain-type", golfHandler.TerrainType)
		golf.POST("/distance-to-hole", golfHandler.DistanceToHole)
		golf.POST("/obstacles-between", golfHandler.ObstaclesBetween)
		golf.POST("/nearest-optimal-shot", golfHandler.NearestOptimalShot)
		golf.POST("/recommend-shot",
			middleware.AuthRequired(cfg.JWTSecret),
			recommendLimiter.Middleware(),
			golfHandler.RecommendShot)
	}

	matches := group.Group("/matches")
	{
		matches.GET("/:id", matchHandler.GetMatch)
		matches.GET("/:id/leaderboard", matchHandler.Leaderboard)
		matches.GET("/:id/state", matchHandler.State)

		auth := matches.Group("")
		auth.Use(middleware.AuthRequired(cfg.JWTSecret))
		{
			auth.POST("", matchHandler.CreateMatch)
			auth.POST("/:id/players", matchHandler.AddPlayer)
			auth.POST("/:id/strokes", matchHandler.CreateStroke)
			auth.POST("/:id/holes/:number/score", matchHandler.SetHoleScore)
			auth.POST("/:id/holes/:number/complete", matchHandler.CompleteHole)
		}
	}

	players := group.Group("/players")
	players.Use(middleware.AuthRequired(cfg.JWTSecret))
	{
		players.GET("/profile", playerHandler.GetProfile)
		players.PUT("/profile", playerHandler.UpdateProfile)
		players.GET("/stats", playerHandler.GetStats)
		players.POST("/stats", playerHandler.RecordShot)
		players.GET("/clubs", playerHandler.GetClubCatalog)
	}

	group.POST("/voice/command",
		middleware.AuthRequired(cfg.JWTSecret),
		recommendLimiter.Middleware(),
		voiceHandler.Command)
}
