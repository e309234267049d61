package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/snaik/crypto-tracker/internal/model"
)

// MessageWriter is the part of kafka.Writer the sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Kafka publishes one message per asset per cycle, keyed by symbol so
// consumers that only compact per asset keep the newest snapshot.
type Kafka struct {
	writer MessageWriter
	logger *slog.Logger
}

// assetMessage is the JSON payload of one Kafka message.
type assetMessage struct {
	CycleID   string              `json:"cycle_id"`
	FetchedAt time.Time           `json:"fetched_at"`
	Asset     model.AssetSnapshot `json:"asset"`
}

// NewKafkaWriter creates a kafka.Writer for the given brokers/topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 100 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
}

// NewKafka creates the Kafka sink.
func NewKafka(writer MessageWriter, logger *slog.Logger) *Kafka {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kafka{writer: writer, logger: logger}
}

func (k *Kafka) Name() string { return "kafka" }

// Publish writes the batch's messages in one call.
func (k *Kafka) Publish(ctx context.Context, batch model.Batch) error {
	msgs, err := buildMessages(batch)
	if err != nil {
		return &PublishError{Sink: k.Name(), Err: err}
	}
	if len(msgs) == 0 {
		return nil
	}

	if err := k.writer.WriteMessages(ctx, msgs...); err != nil {
		return &PublishError{Sink: k.Name(), Err: fmt.Errorf("write messages: %w", err)}
	}

	k.logger.Debug("kafka batch published",
		"messages", len(msgs),
		"cycle_id", batch.CycleID,
	)
	return nil
}

// buildMessages converts a batch into per-asset Kafka messages.
func buildMessages(batch model.Batch) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(batch.Assets))
	for _, a := range batch.Assets {
		payload, err := json.Marshal(assetMessage{
			CycleID:   batch.CycleID.String(),
			FetchedAt: batch.FetchedAt,
			Asset:     a,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", a.Symbol, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(a.Symbol),
			Value: payload,
		})
	}
	return msgs, nil
}
