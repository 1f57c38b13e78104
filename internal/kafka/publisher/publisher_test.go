package publisher_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	kafkapublisher "github.com/yangxing-star/rongyun/internal/kafka/publisher"
	"github.com/yangxing-star/rongyun/internal/models"
)

type fakeSyncProducer struct {
	err     error
	topic   string
	key     []byte
	headers map[string][]byte
	payload []byte
}

func (f *fakeSyncProducer) PublishSync(topic string, key []byte, headers map[string][]byte, payload []byte) error {
	f.topic = topic
	f.key = append([]byte(nil), key...)
	f.headers = headers
	f.payload = append([]byte(nil), payload...)
	return f.err
}

func TestResultPublisherPublishesEvent(t *testing.T) {
	prod := &fakeSyncProducer{}
	pub := kafkapublisher.NewResultPublisher(prod, "result-topic", zerolog.Nop())
	if pub == nil {
		t.Fatalf("expected publisher instance")
	}

	event := models.ResultEvent{
		RequestID: "request-1",
		Action:    "user.token.get",
		EventType: models.ResultEventSucceeded,
		Result: &models.ActionResult{
			Success: true,
			Code:    200,
			Data:    json.RawMessage(`{"code":200,"token":"t"}`),
		},
		TraceID:   "trace-1",
		Timestamp: time.Unix(123, 0).UTC(),
	}

	if err := pub.PublishResult(context.Background(), event); err != nil {
		t.Fatalf("unexpected publish error: %v", err)
	}

	if prod.topic != "result-topic" {
		t.Fatalf("expected topic result-topic, got %s", prod.topic)
	}
	if string(prod.key) != "request-1" {
		t.Fatalf("expected key request-1, got %s", string(prod.key))
	}
	if ct := prod.headers["content-type"]; string(ct) != "application/json" {
		t.Fatalf("expected content-type header, got %s", string(ct))
	}
	if string(prod.headers["action"]) != "user.token.get" || string(prod.headers["trace-id"]) != "trace-1" {
		t.Fatalf("unexpected headers %v", prod.headers)
	}

	var payload models.ResultEvent
	if err := json.Unmarshal(prod.payload, &payload); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	if payload.EventType != models.ResultEventSucceeded || payload.Result == nil || payload.Result.Code != 200 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestResultPublisherPropagatesProducerError(t *testing.T) {
	expectedErr := errors.New("broker down")
	prod := &fakeSyncProducer{err: expectedErr}

	pub := kafkapublisher.NewResultPublisher(prod, "result-topic", zerolog.Nop())
	err := pub.PublishResult(context.Background(), models.ResultEvent{RequestID: "id"})
	if !errors.Is(err, expectedErr) {
		t.Fatalf("expected producer error, got %v", err)
	}
}

func TestResultPublisherHandlesNilInstance(t *testing.T) {
	var pub *kafkapublisher.ResultPublisher
	if err := pub.PublishResult(context.Background(), models.ResultEvent{}); !errors.Is(err, kafkapublisher.ErrProducerNotInitialised()) {
		t.Fatalf("expected not initialised error, got %v", err)
	}
	if kafkapublisher.NewResultPublisher(nil, "topic", zerolog.Nop()) != nil {
		t.Fatalf("expected nil publisher without producer")
	}
}

func TestDLQPublisherPublishesRecord(t *testing.T) {
	prod := &fakeSyncProducer{}
	pub := kafkapublisher.NewDLQPublisher(prod, "dlq-topic", zerolog.Nop())

	record := models.DLQRecord{
		RequestID:   "request-2",
		Action:      "push",
		FailureType: models.FailureTypeTransport,
		LastError:   "connection refused",
	}

	if err := pub.PublishDLQ(context.Background(), record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prod.topic != "dlq-topic" {
		t.Fatalf("expected dlq-topic, got %s", prod.topic)
	}
	if _, ok := prod.headers["trace-id"]; ok {
		t.Fatalf("did not expect trace header without trace id")
	}

	var decoded models.DLQRecord
	if err := json.Unmarshal(prod.payload, &decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if decoded.FailureType != models.FailureTypeTransport || decoded.RequestID != "request-2" {
		t.Fatalf("unexpected DLQ payload %+v", decoded)
	}
}

func TestDLQPublisherPropagatesProducerError(t *testing.T) {
	expectedErr := errors.New("inject")
	prod := &fakeSyncProducer{err: expectedErr}
	pub := kafkapublisher.NewDLQPublisher(prod, "dlq-topic", zerolog.Nop())

	if err := pub.PublishDLQ(context.Background(), models.DLQRecord{RequestID: "id"}); !errors.Is(err, expectedErr) {
		t.Fatalf("expected producer error, got %v", err)
	}
}
