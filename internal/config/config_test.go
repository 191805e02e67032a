package config

import (
	"testing"

	"connect4ai/internal/board"
	"connect4ai/internal/bot"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "SEARCH_DEPTH", "AI_PIECE", "CUTOFF_PERSPECTIVE", "PARALLEL_ROOT", "KAFKA_BROKERS", "DATABASE_URL", "REDIS_URL", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("port = %q", cfg.Server.Port)
	}
	if cfg.Game.SearchDepth != bot.DefaultDepth || cfg.Game.AIPiece != board.Two {
		t.Fatalf("unexpected game config %+v", cfg.Game)
	}
	if cfg.Game.Perspective != bot.PerspectiveMaximizer || cfg.Game.ParallelRoot {
		t.Fatalf("unexpected search options %+v", cfg.Game)
	}
	if cfg.KafkaEnabled() || cfg.DatabaseEnabled() || cfg.RedisEnabled() {
		t.Fatalf("optional backends should be disabled by default")
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Fatalf("origins = %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SEARCH_DEPTH", "6")
	t.Setenv("AI_PIECE", "1")
	t.Setenv("CUTOFF_PERSPECTIVE", "mover")
	t.Setenv("PARALLEL_ROOT", "true")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts := cfg.BotOptions()
	if opts.Depth != 6 || opts.Piece != board.One || opts.Perspective != bot.PerspectiveMover || !opts.Parallel {
		t.Fatalf("unexpected bot options %+v", opts)
	}
	if got := cfg.Kafka.Brokers; len(got) != 2 || got[1] != "b:9092" {
		t.Fatalf("brokers = %v", got)
	}
}

func TestLoadRejectsBadGameSettings(t *testing.T) {
	tests := map[string]map[string]string{
		"negative depth":  {"SEARCH_DEPTH": "-1"},
		"zero depth":      {"SEARCH_DEPTH": "0"},
		"bad piece":       {"AI_PIECE": "3"},
		"bad perspective": {"CUTOFF_PERSPECTIVE": "sideways"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}
