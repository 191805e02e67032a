package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"connect4ai/internal/board"
	"connect4ai/internal/bot"
	"connect4ai/internal/config"
	"connect4ai/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "connect4:move:"

// MoveCache stores search results keyed by position and search settings.
type MoveCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(cfg *config.Config) (*MoveCache, error) {
	opts, err := redisOptions(cfg.Redis.URL, cfg.Redis.Password)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Log.Info("Redis move cache connected", zap.String("addr", opts.Addr))
	return &MoveCache{
		client: client,
		ttl:    time.Duration(cfg.Redis.TTLSeconds) * time.Second,
	}, nil
}

func redisOptions(url, password string) (*redis.Options, error) {
	if strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://") {
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		if password != "" {
			opts.Password = password
		}
		return opts, nil
	}
	return &redis.Options{Addr: url, Password: password, DB: 0}, nil
}

// Key identifies a search: every cell, then depth, bot piece and perspective.
func Key(b board.Board, depth int, piece board.Piece, perspective bot.Perspective) string {
	var sb strings.Builder
	sb.Grow(len(keyPrefix) + board.Rows*board.Columns + 16)
	sb.WriteString(keyPrefix)
	for row := 0; row < board.Rows; row++ {
		for col := 0; col < board.Columns; col++ {
			sb.WriteByte(byte('0' + b[row][col]))
		}
	}
	fmt.Fprintf(&sb, ":%d:%d:%s", depth, piece, perspective)
	return sb.String()
}

func encode(res bot.Result) string {
	return strconv.Itoa(res.Column) + "|" + bot.FormatScore(res.Score)
}

func decode(s string) (bot.Result, error) {
	colStr, scoreStr, ok := strings.Cut(s, "|")
	if !ok {
		return bot.Result{}, fmt.Errorf("malformed cache entry %q", s)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil {
		return bot.Result{}, fmt.Errorf("malformed cache column %q: %w", colStr, err)
	}
	score, err := strconv.ParseFloat(scoreStr, 64)
	if err != nil {
		return bot.Result{}, fmt.Errorf("malformed cache score %q: %w", scoreStr, err)
	}
	return bot.Result{Column: col, Score: score}, nil
}

// Get returns false on a miss.
func (c *MoveCache) Get(ctx context.Context, key string) (bot.Result, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return bot.Result{}, false, nil
	}
	if err != nil {
		return bot.Result{}, false, err
	}
	res, err := decode(val)
	if err != nil {
		return bot.Result{}, false, err
	}
	return res, true, nil
}

func (c *MoveCache) Set(ctx context.Context, key string, res bot.Result) error {
	return c.client.Set(ctx, key, encode(res), c.ttl).Err()
}

func (c *MoveCache) Close() error {
	return c.client.Close()
}
