package services

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	"connect4ai/internal/config"
	"connect4ai/internal/models"
	"connect4ai/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/scram"
	"go.uber.org/zap"
)

const consumerGroupID = "connect4ai-analytics-consumer"

// saslMechanism returns nil when no credentials are configured, in which
// case the brokers are reached over plain TCP.
func saslMechanism(cfg *config.Config) (sasl.Mechanism, error) {
	if cfg.Kafka.Username == "" {
		return nil, nil
	}
	return scram.Mechanism(scram.SHA256, cfg.Kafka.Username, cfg.Kafka.Password)
}

type KafkaProducer struct {
	writer *kafka.Writer
}

func NewKafkaProducer(cfg *config.Config) (*KafkaProducer, error) {
	mechanism, err := saslMechanism(cfg)
	if err != nil {
		return nil, err
	}

	transport := &kafka.Transport{}
	if mechanism != nil {
		transport.SASL = mechanism
		transport.TLS = &tls.Config{}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.TopicEvents,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		Compression:  kafka.Snappy,
		Transport:    transport,
	}

	logger.Log.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.TopicEvents),
	)
	return &KafkaProducer{writer: writer}, nil
}

func (kp *KafkaProducer) PublishGameStarted(ctx context.Context, event models.GameStartedEvent) error {
	return kp.publish(ctx, event.GameID.String(), event)
}

func (kp *KafkaProducer) PublishMoveMade(ctx context.Context, event models.MoveMadeEvent) error {
	return kp.publish(ctx, event.GameID.String(), event)
}

func (kp *KafkaProducer) PublishGameCompleted(ctx context.Context, event models.GameCompletedEvent) error {
	return kp.publish(ctx, event.GameID.String(), event)
}

// publish keys messages by game so one game's events stay ordered on a
// single partition.
func (kp *KafkaProducer) publish(ctx context.Context, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Error("Failed to marshal event", zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		logger.Log.Error("Kafka write failed", zap.Error(err))
		return err
	}

	logger.Log.Debug("Event published to Kafka", zap.Int("size", len(data)))
	return nil
}

func (kp *KafkaProducer) Close() error {
	if kp.writer != nil {
		return kp.writer.Close()
	}
	return nil
}

type KafkaConsumer struct {
	reader    *kafka.Reader
	analytics *AnalyticsService
}

func NewKafkaConsumer(cfg *config.Config, analytics *AnalyticsService) (*KafkaConsumer, error) {
	mechanism, err := saslMechanism(cfg)
	if err != nil {
		return nil, err
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if mechanism != nil {
		dialer.SASLMechanism = mechanism
		dialer.TLS = &tls.Config{}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          cfg.Kafka.TopicEvents,
		GroupID:        consumerGroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
		Dialer:         dialer,
	})

	logger.Log.Info("Kafka consumer initialized",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.TopicEvents),
	)
	return &KafkaConsumer{reader: reader, analytics: analytics}, nil
}

// Start reads until ctx is cancelled.
func (kc *KafkaConsumer) Start(ctx context.Context) {
	logger.Log.Info("Starting Kafka consumer...")

	for {
		msg, err := kc.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Log.Info("Kafka consumer stopped")
				return
			}
			logger.Log.Error("Kafka read error", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		if err := kc.analytics.ProcessEvent(ctx, msg.Value); err != nil {
			logger.Log.Error("Failed to process event", zap.Error(err), zap.Int64("offset", msg.Offset))
		}
	}
}

func (kc *KafkaConsumer) Close() error {
	if kc.reader != nil {
		return kc.reader.Close()
	}
	return nil
}
