package worker

import (
	"context"

	"github.com/yangxing-star/rongyun/internal/kafka/consumer"
)

// recordAcker is satisfied by *consumer.Consumer.
type recordAcker interface {
	Commit(ctx context.Context, record *consumer.Record) error
}

// KafkaHandler returns a consumer.Handler that transforms Kafka consumer
// records into worker records and delegates processing to the supplied engine.
func KafkaHandler(engine *Engine, acker recordAcker) consumer.Handler {
	return func(ctx context.Context, rec *consumer.Record) error {
		if engine == nil || rec == nil {
			return nil
		}

		commitFn := func(context.Context) error { return nil }
		if acker != nil {
			commitFn = func(c context.Context) error {
				return acker.Commit(c, rec)
			}
		}

		engine.HandleRecord(ctx, NewRecordFromConsumer(rec, commitFn))
		return nil
	}
}
