package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"TickBoard/internal/domain/models"
	"TickBoard/internal/domain/repository"
	pkgkafka "TickBoard/pkg/kafka"
	"TickBoard/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// LogNotifier surfaces alert events through the structured log. It is the
// default sink and always available.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(log *logger.Logger) repository.Notifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, ev models.AlertEvent) error {
	n.log.Info("breakout alert",
		logger.String("stock_id", ev.StockID),
		logger.String("breakout", string(ev.Breakout)),
		logger.String("severity", ev.Severity),
		logger.Float64("price", ev.CurrentPrice),
	)
	return nil
}

func (n *LogNotifier) Close() error { return nil }

// RedisNotifier publishes alert events on a Redis pub/sub channel so any
// number of UI processes can pick them up.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

// NewRedisNotifier creates a Redis pub/sub notifier.
func NewRedisNotifier(addr, password string, db int, channel string) repository.Notifier {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, ev models.AlertEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

func (n *RedisNotifier) Close() error { return n.client.Close() }

// KafkaNotifier publishes alert events to a Kafka topic keyed by
// stock_id, keeping per-symbol ordering.
type KafkaNotifier struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaNotifier creates a Kafka-backed notifier.
func NewKafkaNotifier(producer *pkgkafka.Producer, topic string) repository.Notifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

func (n *KafkaNotifier) Notify(ctx context.Context, ev models.AlertEvent) error {
	return n.producer.Publish(ctx, n.topic, []byte(ev.StockID), ev)
}

func (n *KafkaNotifier) Close() error { return n.producer.Close() }
