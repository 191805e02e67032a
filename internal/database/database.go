package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"connect4ai/internal/config"
	"connect4ai/internal/models"
	"connect4ai/pkg/logger"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id               UUID PRIMARY KEY,
	player_first     BOOLEAN NOT NULL,
	search_depth     INTEGER NOT NULL,
	status           TEXT NOT NULL,
	winner           TEXT,
	total_moves      INTEGER NOT NULL DEFAULT 0,
	duration_seconds INTEGER,
	started_at       TIMESTAMPTZ NOT NULL,
	completed_at     TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS game_moves (
	id           BIGSERIAL PRIMARY KEY,
	game_id      UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	mover        TEXT NOT NULL,
	column_index INTEGER NOT NULL,
	row_index    INTEGER NOT NULL,
	move_number  INTEGER NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS game_events (
	id          BIGSERIAL PRIMARY KEY,
	game_id     UUID NOT NULL,
	event_type  TEXT NOT NULL,
	event_data  JSONB NOT NULL,
	received_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

type Database struct {
	db *sql.DB
}

func New(cfg *config.Config) (*Database, error) {
	db, err := sql.Open("postgres", cfg.Database.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	d, err := newDatabase(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Log.Info("Database connected successfully")
	return d, nil
}

// newDatabase checks the connection and creates any missing tables.
func newDatabase(db *sql.DB) (*Database, error) {
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *Database) CreateGame(ctx context.Context, game *models.GameState, playerFirst bool, depth int) error {
	query := `INSERT INTO games (id, player_first, search_depth, status, started_at) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, winner = NULL, total_moves = 0,
		duration_seconds = NULL, started_at = EXCLUDED.started_at, completed_at = NULL`
	_, err := d.db.ExecContext(ctx, query, game.GameID, playerFirst, depth, game.Status, game.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (d *Database) SaveGameMove(ctx context.Context, gameID uuid.UUID, mover models.Turn, column, row, moveNumber int) error {
	query := `INSERT INTO game_moves (game_id, mover, column_index, row_index, move_number) VALUES ($1, $2, $3, $4, $5)`
	_, err := d.db.ExecContext(ctx, query, gameID, mover, column, row, moveNumber)
	if err != nil {
		return fmt.Errorf("failed to save game move: %w", err)
	}
	return nil
}

// ClearMoves drops the move log of a game that is being reset.
func (d *Database) ClearMoves(ctx context.Context, gameID uuid.UUID) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM game_moves WHERE game_id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("failed to clear game moves: %w", err)
	}
	return nil
}

func (d *Database) CompleteGame(ctx context.Context, game *models.GameState) error {
	completedAt := time.Now()
	if game.CompletedAt != nil {
		completedAt = *game.CompletedAt
	}
	duration := int(completedAt.Sub(game.StartedAt).Seconds())

	query := `UPDATE games SET winner = $1, status = $2, total_moves = $3, duration_seconds = $4, completed_at = $5 WHERE id = $6`
	_, err := d.db.ExecContext(ctx, query, game.Winner, game.Status, game.MoveCount, duration, completedAt, game.GameID)
	if err != nil {
		return fmt.Errorf("failed to complete game: %w", err)
	}
	logger.Log.Info("Game completed", zap.String("game_id", game.GameID.String()), zap.String("winner", game.Winner))
	return nil
}

func (d *Database) StoreEvent(ctx context.Context, gameID uuid.UUID, eventType models.KafkaEventType, data []byte) error {
	query := `INSERT INTO game_events (game_id, event_type, event_data) VALUES ($1, $2, $3)`
	if _, err := d.db.ExecContext(ctx, query, gameID, eventType, data); err != nil {
		return fmt.Errorf("failed to store %s event: %w", eventType, err)
	}
	return nil
}

func (d *Database) GetStats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE winner = $1),
			COUNT(*) FILTER (WHERE winner = $2),
			COUNT(*) FILTER (WHERE winner = $3),
			COALESCE(AVG(total_moves), 0),
			COALESCE(AVG(duration_seconds), 0)
		FROM games
		WHERE status <> $4
	`
	err := d.db.QueryRowContext(ctx, query, models.WinnerPlayer, models.WinnerAI, models.WinnerTie, models.GameStatusActive).Scan(
		&stats.TotalGames, &stats.PlayerWins, &stats.AIWins, &stats.Ties,
		&stats.AvgMoves, &stats.AvgDuration,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	if stats.TotalGames > 0 {
		stats.AIWinRate = float64(stats.AIWins) / float64(stats.TotalGames) * 100
	}
	return &stats, nil
}
