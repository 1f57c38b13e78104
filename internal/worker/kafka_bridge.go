package worker

import (
	"context"

	"github.com/yangxing-star/rongyun/internal/kafka/consumer"
)

// NewRecordFromConsumer constructs a worker record from the supplied Kafka
// consumer record and binds the provided commit function, which the engine
// invokes once the record reached a terminal outcome.
func NewRecordFromConsumer(rec *consumer.Record, commit func(context.Context) error) *Record {
	if rec == nil {
		return nil
	}

	wr := &Record{
		Topic:     rec.Topic,
		Partition: rec.Partition,
		Offset:    rec.Offset,
		Key:       cloneBytes(rec.Key),
		Value:     cloneBytes(rec.Value),
		Timestamp: rec.Timestamp,
		Headers:   cloneHeaders(rec.Headers),
	}

	if commit != nil {
		wr.setCommitFn(commit)
	}

	return wr
}
