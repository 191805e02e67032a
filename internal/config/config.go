package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"connect4ai/internal/board"
	"connect4ai/internal/bot"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Game     GameConfig
	Kafka    KafkaConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	DatabaseURL string
}

type RedisConfig struct {
	URL        string
	Password   string
	TTLSeconds int
}

type GameConfig struct {
	SearchDepth  int
	AIPiece      board.Piece
	Perspective  bot.Perspective
	ParallelRoot bool
}

type KafkaConfig struct {
	Brokers     []string
	TopicEvents string
	Username    string
	Password    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	perspective, err := bot.ParsePerspective(getEnv("CUTOFF_PERSPECTIVE", "maximizer"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            getEnv("ENV", "development"),
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		},
		Database: DatabaseConfig{
			DatabaseURL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			URL:        getEnv("REDIS_URL", ""),
			Password:   getEnv("REDIS_PASSWORD", ""),
			TTLSeconds: getEnvAsInt("CACHE_TTL_SECONDS", 3600),
		},
		Game: GameConfig{
			SearchDepth:  getEnvAsInt("SEARCH_DEPTH", bot.DefaultDepth),
			AIPiece:      board.Piece(getEnvAsInt("AI_PIECE", int(board.Two))),
			Perspective:  perspective,
			ParallelRoot: getEnvAsBool("PARALLEL_ROOT", false),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(getEnv("KAFKA_BROKERS", "")),
			TopicEvents: getEnv("KAFKA_TOPIC_EVENTS", "game.events"),
			Username:    getEnv("KAFKA_USERNAME", ""),
			Password:    getEnv("KAFKA_PASSWORD", ""),
		},
	}

	if config.Game.SearchDepth < bot.MinPlayDepth {
		return nil, fmt.Errorf("SEARCH_DEPTH must be at least %d, got %d", bot.MinPlayDepth, config.Game.SearchDepth)
	}
	if config.Game.AIPiece != board.One && config.Game.AIPiece != board.Two {
		return nil, fmt.Errorf("AI_PIECE must be 1 or 2, got %d", config.Game.AIPiece)
	}

	return config, nil
}

func (c *Config) DatabaseEnabled() bool {
	return c.Database.DatabaseURL != ""
}

func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

func (c *Config) RedisEnabled() bool {
	return c.Redis.URL != ""
}

// BotOptions turns the game section into options for bot.New.
func (c *Config) BotOptions() bot.Options {
	return bot.Options{
		Depth:       c.Game.SearchDepth,
		Piece:       c.Game.AIPiece,
		Perspective: c.Game.Perspective,
		Parallel:    c.Game.ParallelRoot,
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
