package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/yangxing-star/rongyun/internal/models"
)

var errProducerNotInitialised = errors.New("kafka publisher: producer not initialised")

// SyncProducer captures the subset of producer behaviour required by the Kafka publishers.
type SyncProducer interface {
	PublishSync(topic string, key []byte, headers map[string][]byte, payload []byte) error
}

// ErrProducerNotInitialised exposes the sentinel error for callers and tests.
func ErrProducerNotInitialised() error {
	return errProducerNotInitialised
}

// ResultPublisher emits result events keyed by request id.
type ResultPublisher struct {
	producer SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewResultPublisher constructs a ResultPublisher instance.
func NewResultPublisher(prod SyncProducer, topic string, logger zerolog.Logger) *ResultPublisher {
	if prod == nil {
		return nil
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &ResultPublisher{
		producer: prod,
		topic:    topic,
		logger:   logger,
	}
}

// PublishResult writes the supplied event to Kafka synchronously.
func (p *ResultPublisher) PublishResult(_ context.Context, event models.ResultEvent) error {
	if p == nil || p.producer == nil {
		return errProducerNotInitialised
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka publisher: marshal result event: %w", err)
	}

	if err := p.producer.PublishSync(p.topic, []byte(event.RequestID), eventHeaders(event.Action, event.TraceID), payload); err != nil {
		return fmt.Errorf("kafka publisher: publish result event: %w", err)
	}
	p.logger.Debug().
		Str("request_id", event.RequestID).
		Str("event", event.EventType).
		Msg("result event published")
	return nil
}

// DLQPublisher writes DLQ records to the configured Kafka topic.
type DLQPublisher struct {
	producer SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewDLQPublisher constructs a DLQPublisher instance.
func NewDLQPublisher(prod SyncProducer, topic string, logger zerolog.Logger) *DLQPublisher {
	if prod == nil {
		return nil
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &DLQPublisher{
		producer: prod,
		topic:    topic,
		logger:   logger,
	}
}

// PublishDLQ writes the supplied DLQ record to Kafka synchronously.
func (p *DLQPublisher) PublishDLQ(_ context.Context, record models.DLQRecord) error {
	if p == nil || p.producer == nil {
		return errProducerNotInitialised
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("kafka publisher: marshal dlq record: %w", err)
	}

	if err := p.producer.PublishSync(p.topic, []byte(record.RequestID), eventHeaders(record.Action, record.TraceID), payload); err != nil {
		return fmt.Errorf("kafka publisher: publish dlq record: %w", err)
	}
	p.logger.Debug().
		Str("request_id", record.RequestID).
		Str("failure_type", record.FailureType).
		Msg("dlq record published")
	return nil
}

func eventHeaders(action, traceID string) map[string][]byte {
	headers := map[string][]byte{
		"content-type": []byte("application/json"),
	}
	if action != "" {
		headers["action"] = []byte(action)
	}
	if traceID != "" {
		headers["trace-id"] = []byte(traceID)
	}
	return headers
}
