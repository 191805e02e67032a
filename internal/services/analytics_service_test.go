package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"connect4ai/internal/models"

	"github.com/google/uuid"
)

type storedEvent struct {
	gameID uuid.UUID
	kind   models.KafkaEventType
}

type fakeStore struct {
	events []storedEvent
	err    error
}

func (f *fakeStore) StoreEvent(ctx context.Context, gameID uuid.UUID, eventType models.KafkaEventType, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, storedEvent{gameID, eventType})
	return nil
}

func TestProcessEvent(t *testing.T) {
	store := &fakeStore{}
	as := NewAnalyticsService(store)
	ctx := context.Background()
	id := uuid.New()

	data, _ := json.Marshal(models.GameCompletedEvent{
		Type:       models.EventGameCompleted,
		GameID:     id,
		Winner:     models.WinnerAI,
		TotalMoves: 12,
		Timestamp:  time.Now(),
	})
	if err := as.ProcessEvent(ctx, data); err != nil {
		t.Fatal(err)
	}
	if len(store.events) != 1 || store.events[0].gameID != id || store.events[0].kind != models.EventGameCompleted {
		t.Fatalf("stored %+v", store.events)
	}

	if err := as.ProcessEvent(ctx, []byte(`{"type":"SOMETHING_ELSE"}`)); err != nil {
		t.Fatalf("unknown events should be skipped, got %v", err)
	}
	if len(store.events) != 1 {
		t.Fatalf("unknown event was stored")
	}

	if err := as.ProcessEvent(ctx, []byte(`not json`)); err == nil {
		t.Fatalf("expected decode error")
	}

	store.err = errors.New("db down")
	if err := as.ProcessEvent(ctx, data); err == nil {
		t.Fatalf("expected store error")
	}
}

func TestStatsServiceEnabled(t *testing.T) {
	var nilService *StatsService
	if nilService.Enabled() || NewStatsService(nil).Enabled() {
		t.Fatalf("stats without a source should be disabled")
	}
}
