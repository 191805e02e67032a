package services

import (
	"context"
	"encoding/json"
	"fmt"

	"connect4ai/internal/models"
	"connect4ai/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventStore keeps raw events. *database.Database implements it.
type EventStore interface {
	StoreEvent(ctx context.Context, gameID uuid.UUID, eventType models.KafkaEventType, data []byte) error
}

// StatsSource aggregates finished games. *database.Database implements it.
type StatsSource interface {
	GetStats(ctx context.Context) (*models.Stats, error)
}

type AnalyticsService struct {
	store EventStore
}

func NewAnalyticsService(store EventStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// ProcessEvent decodes one Kafka message and stores it. Unknown event types
// are skipped.
func (as *AnalyticsService) ProcessEvent(ctx context.Context, data []byte) error {
	var base struct {
		Type   models.KafkaEventType `json:"type"`
		GameID uuid.UUID             `json:"game_id"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	switch base.Type {
	case models.EventGameStarted, models.EventMoveMade, models.EventGameCompleted:
	default:
		logger.Log.Debug("Skipping unknown event", zap.String("type", string(base.Type)))
		return nil
	}

	if err := as.store.StoreEvent(ctx, base.GameID, base.Type, data); err != nil {
		return err
	}

	logger.Log.Info("Processed Kafka event",
		zap.String("type", string(base.Type)),
		zap.String("game_id", base.GameID.String()),
	)
	return nil
}

type StatsService struct {
	source StatsSource
}

func NewStatsService(source StatsSource) *StatsService {
	return &StatsService{source: source}
}

// Enabled is false when no database backs the service.
func (ss *StatsService) Enabled() bool {
	return ss != nil && ss.source != nil
}

func (ss *StatsService) GetStats(ctx context.Context) (*models.Stats, error) {
	return ss.source.GetStats(ctx)
}
