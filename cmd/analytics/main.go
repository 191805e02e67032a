package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"connect4ai/internal/config"
	"connect4ai/internal/database"
	"connect4ai/internal/services"
	"connect4ai/pkg/logger"

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

	if !cfg.KafkaEnabled() || !cfg.DatabaseEnabled() {
		logger.Log.Fatal("Analytics consumer requires KAFKA_BROKERS and DATABASE_URL")
	}

	logger.Log.Info("Starting Connect4 Analytics Consumer",
		zap.String("env", cfg.Server.Env),
		zap.Strings("kafka_brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.TopicEvents),
	)

	// Connect to database
	db, err := database.New(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	analyticsService := services.NewAnalyticsService(db)

	kafkaConsumer, err := services.NewKafkaConsumer(cfg, analyticsService)
	if err != nil {
		logger.Log.Fatal("Failed to create Kafka consumer", zap.Error(err))
	}
	defer kafkaConsumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		kafkaConsumer.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutdown signal received, stopping consumer...")
	cancel()
	<-done

	logger.Log.Info("Analytics consumer stopped")
}
