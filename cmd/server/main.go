package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kdigolf/caddie/internal/api"
	"github.com/kdigolf/caddie/internal/api/handlers"
	"github.com/kdigolf/caddie/internal/api/middleware"
	"github.com/kdigolf/caddie/internal/services"
	"github.com/kdigolf/caddie/pkg/config"
	"github.com/kdigolf/caddie/pkg/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logrus.StandardLogger()

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Services
	cache := services.NewCacheService(redisClient)
	hub := services.NewMatchHub(logger)
	courses := services.NewCourseService(db.DB, cache, logger, time.Duration(cfg.CourseCacheExpiration)*time.Second)
	players := services.NewPlayerService(db.DB, cache, logger, time.Duration(cfg.StatsCacheExpiration)*time.Second)
	matches := services.NewMatchService(db.DB, players, hub, logger)
	weather := services.NewWeatherService(cfg, cache, logger)
	recommend := services.NewRecommendService(courses, players, matches, weather, hub, logger)
	voice := services.NewVoiceService(courses, matches, players, recommend, weather, logger)

	if cfg.EnableBackgroundJobs {
		staleInterval, err := time.ParseDuration(cfg.StaleStrokeInterval)
		if err != nil {
			logrus.Warnf("Invalid stale stroke interval, using default 15m: %v", err)
			staleInterval = 15 * time.Minute
		}
		staleMaxAge, err := time.ParseDuration(cfg.StaleStrokeMaxAge)
		if err != nil {
			logrus.Warnf("Invalid stale stroke max age, using default 6h: %v", err)
			staleMaxAge = 6 * time.Hour
		}
		maintenance := services.NewMaintenanceService(db.DB, cache, courses, matches, logger,
			staleInterval, staleMaxAge)
		if err := maintenance.Start(); err != nil {
			logrus.Errorf("Failed to start maintenance service: %v", err)
		} else {
			defer maintenance.Stop()
		}
	}

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	healthHandler := handlers.NewHealthHandler(db.DB, redisClient)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, api.Services{
		Courses:   courses,
		Players:   players,
		Matches:   matches,
		Recommend: recommend,
		Voice:     voice,
		Hub:       hub,
	}, cfg, logger)

	wsHandler := handlers.NewWSHandler(hub, matches, logger, cfg.CorsOrigins)
	router.GET("/ws/matches/:id", middleware.OptionalAuth(cfg.JWTSecret), wsHandler.Subscribe)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
