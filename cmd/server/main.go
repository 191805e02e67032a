package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connect4ai/internal/bot"
	"connect4ai/internal/cache"
	"connect4ai/internal/config"
	"connect4ai/internal/database"
	"connect4ai/internal/handlers"
	"connect4ai/internal/services"
	"connect4ai/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Server.Env); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Log.Info("Starting Connect4 AI Server",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.Int("search_depth", cfg.Game.SearchDepth),
		zap.String("perspective", cfg.Game.Perspective.String()),
	)

	aiBot, err := bot.New(cfg.BotOptions())
	if err != nil {
		logger.Log.Fatal("Invalid bot configuration", zap.Error(err))
	}

	// Optional backends. Disabled ones stay untyped nil so the services
	// see a nil interface.
	var (
		recorder  services.Recorder
		publisher services.EventPublisher
		moveCache services.MoveCache
		pinger    handlers.Pinger
		stats     services.StatsSource
	)

	if cfg.DatabaseEnabled() {
		db, err := database.New(cfg)
		if err != nil {
			logger.Log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		recorder, pinger, stats = db, db, db
	} else {
		logger.Log.Info("DATABASE_URL not set, games will not be persisted")
	}

	if cfg.RedisEnabled() {
		mc, err := cache.New(cfg)
		if err != nil {
			logger.Log.Warn("Move cache unavailable, searching without it", zap.Error(err))
		} else {
			defer mc.Close()
			moveCache = mc
		}
	}

	if cfg.KafkaEnabled() {
		producer, err := services.NewKafkaProducer(cfg)
		if err != nil {
			logger.Log.Warn("Kafka producer unavailable, events disabled", zap.Error(err))
		} else {
			defer producer.Close()
			publisher = producer
		}
	}

	// Initialize services
	gameService, err := services.NewGameService(aiBot, recorder, publisher, moveCache)
	if err != nil {
		logger.Log.Fatal("Failed to create game service", zap.Error(err))
	}
	statsService := services.NewStatsService(stats)

	// Initialize handlers
	httpHandler := handlers.NewHTTPHandler(gameService, statsService, pinger)
	wsHandler := handlers.NewWSHandler(gameService)

	// Setup Gin
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := handlers.NewRouter(httpHandler, wsHandler, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	// Start server
	go func() {
		logger.Log.Info("Server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shut down", zap.Error(err))
	}
}
