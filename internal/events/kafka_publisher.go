package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/ride-ledger/internal/models"
)

// KafkaPublisher writes committed ledger events to a Kafka topic, keyed by
// ride id. Publishing is best-effort: the ledger has already committed by
// the time Emit runs, so a broker failure is logged, never propagated.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &KafkaPublisher{writer: w, logger: logger}
}

func (k *KafkaPublisher) Emit(ev models.Event) {
	env, err := Wrap(ev)
	if err != nil {
		k.logger.Error("event marshal failed", "event", ev.EventName(), "error", err)
		return
	}
	b, _ := json.Marshal(env)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(PartitionKey(ev)), Value: b}); err != nil {
		k.logger.Error("event publish failed", "event", ev.EventName(), "error", err)
	}
}

func (k *KafkaPublisher) Close() error {
	if k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
