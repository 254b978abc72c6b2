package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/rtrwh-assessment-service/internal/config"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/domain"
)

// Writer produces assessment records to a Kafka topic.
// It implements publish.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured assessment topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes records in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, records []domain.AssessmentRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an AssessmentRecord into a Kafka message keyed
// by record ID.
func serializeToMessage(rec domain.AssessmentRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "feasibility", Value: []byte(rec.Result.Feasibility)},
			{Key: "rainfall_source", Value: []byte(rec.Rainfall.Source)},
			{Key: "assessed_at", Value: []byte(rec.AssessedAt.Format(time.RFC3339))},
		},
	}, nil
}
