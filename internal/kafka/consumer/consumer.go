package consumer

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

const (
	defaultSessionTimeout   = 30 * time.Second
	defaultHeartbeat        = 3 * time.Second
	defaultRebalanceTimeout = 30 * time.Second
	defaultConsumeBackoff   = time.Second
	defaultClientID         = "rongcloud-worker"
)

// Handler is invoked for every record delivered by the consumer.
type Handler func(ctx context.Context, record *Record) error

// Option customises the consumer during construction.
type Option func(*options)

type options struct {
	config *sarama.Config
}

// WithConfig allows callers to supply a Sarama config. The configuration is
// cloned internally so the caller retains ownership.
func WithConfig(cfg *sarama.Config) Option {
	return func(o *options) {
		if cfg != nil {
			o.config = cfg
		}
	}
}

// Consumer wraps a Sarama consumer group with manual commit support and
// readiness tracking.
type Consumer struct {
	logger zerolog.Logger

	group        sarama.ConsumerGroup
	groupID      string
	handler      Handler
	commitOnAck  bool
	errorsDoneCh chan struct{}

	ready atomic.Bool

	mu sync.RWMutex

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Record represents a Kafka message delivered by the consumer.
type Record struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time
	Headers   map[string][]byte

	session sarama.ConsumerGroupSession
	message *sarama.ConsumerMessage
	offsets *partitionOffsets

	mu        sync.Mutex
	committed bool
}

// New constructs a consumer for the supplied brokers and consumer group. With
// commitOnSuccessOnly the group never auto-commits and offsets are flushed by
// Commit; otherwise Commit only marks the offset.
func New(brokers []string, groupID string, logger zerolog.Logger, commitOnSuccessOnly bool, opts ...Option) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka consumer: at least one broker is required")
	}
	if groupID == "" {
		return nil, errors.New("kafka consumer: group id is required")
	}

	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}

	settings := &options{config: DefaultConfig()}
	for _, opt := range opts {
		if opt != nil {
			opt(settings)
		}
	}

	cfg := cloneConfig(settings.config)
	cfg.Consumer.Offsets.AutoCommit.Enable = !commitOnSuccessOnly

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: create consumer group: %w", err)
	}

	c := &Consumer{
		logger:       logger,
		group:        group,
		groupID:      groupID,
		commitOnAck:  commitOnSuccessOnly,
		errorsDoneCh: make(chan struct{}),
	}

	go c.consumeErrors()

	return c, nil
}

// Consume subscribes to the provided topics and invokes handler for each
// record. It blocks until ctx is cancelled or the group is closed, rejoining
// after rebalances and transient errors.
func (c *Consumer) Consume(ctx context.Context, topics []string, handler Handler) error {
	if len(topics) == 0 {
		return errors.New("kafka consumer: at least one topic is required")
	}
	if handler == nil {
		return errors.New("kafka consumer: handler is required")
	}

	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.handler = handler
	c.cancel = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	defer c.wg.Done()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.group.Consume(ctx, topics, &groupHandler{consumer: c})
		if err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.logger.Error().Err(err).Msg("kafka consumer: consume error")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(defaultConsumeBackoff):
			}
		}
	}
}

// Commit marks the record as processed. Records of a partition may finish
// out of order; the group offset only advances past a record once every
// earlier record of its claim has been committed too. Repeated calls for the
// same record are no-ops.
func (c *Consumer) Commit(_ context.Context, record *Record) error {
	if record == nil {
		return errors.New("kafka consumer: record is required")
	}
	if record.session == nil || record.message == nil {
		return errors.New("kafka consumer: record missing session data")
	}

	record.mu.Lock()
	if record.committed {
		record.mu.Unlock()
		return nil
	}
	record.committed = true
	record.mu.Unlock()

	if record.offsets == nil {
		record.session.MarkMessage(record.message, "")
	} else {
		next, ok := record.offsets.ack(record.Offset)
		if !ok {
			c.logger.Debug().
				Str("topic", record.Topic).
				Int32("partition", record.Partition).
				Int64("offset", record.Offset).
				Int64("waiting_on", record.offsets.lowest()).
				Msg("kafka consumer: commit held until earlier offsets complete")
			return nil
		}
		record.session.MarkOffset(record.Topic, record.Partition, next, "")
	}
	if c.commitOnAck {
		record.session.Commit()
	}
	return nil
}

// IsReady returns true once the consumer has joined the group and is actively
// consuming.
func (c *Consumer) IsReady() bool {
	return c.ready.Load()
}

// Close shuts down the consumer group and associated goroutines.
func (c *Consumer) Close() error {
	c.mu.RLock()
	cancel := c.cancel
	c.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
	err := c.group.Close()
	c.wg.Wait()
	<-c.errorsDoneCh
	return err
}

func (c *Consumer) consumeErrors() {
	defer close(c.errorsDoneCh)
	for err := range c.group.Errors() {
		if err != nil {
			c.logger.Error().Err(err).Msg("kafka consumer error")
		}
	}
}

type groupHandler struct {
	consumer *Consumer
}

func (h *groupHandler) Setup(session sarama.ConsumerGroupSession) error {
	h.consumer.ready.Store(true)
	h.consumer.logger.Info().
		Str("group_id", h.consumer.groupID).
		Int32("generation", session.GenerationID()).
		Msg("kafka consumer group ready")
	return nil
}

func (h *groupHandler) Cleanup(session sarama.ConsumerGroupSession) error {
	h.consumer.ready.Store(false)
	h.consumer.logger.Info().
		Str("group_id", h.consumer.groupID).
		Msg("kafka consumer group cleanup")
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	h.consumer.mu.RLock()
	handler := h.consumer.handler
	h.consumer.mu.RUnlock()

	// Each claim starts with a fresh tracker, so a rebalance drops the
	// pending offsets of the previous generation.
	offsets := newPartitionOffsets()
	for msg := range claim.Messages() {
		if handler == nil {
			h.consumer.logger.Error().Msg("kafka consumer: message received without handler")
			continue
		}

		offsets.track(msg.Offset)
		record := newRecord(session, msg)
		record.offsets = offsets
		if err := handler(session.Context(), record); err != nil {
			h.consumer.logger.Error().
				Err(err).
				Str("topic", msg.Topic).
				Int32("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("kafka consumer handler error")
		}
	}

	return nil
}

func newRecord(session sarama.ConsumerGroupSession, msg *sarama.ConsumerMessage) *Record {
	return &Record{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       cloneBytes(msg.Key),
		Value:     cloneBytes(msg.Value),
		Timestamp: msg.Timestamp,
		Headers:   fromHeaders(msg.Headers),
		session:   session,
		message:   msg,
	}
}

// partitionOffsets tracks the delivered offsets of one claim that have not
// been committed yet. Offsets are tracked in delivery order, which is
// ascending within a partition.
type partitionOffsets struct {
	mu      sync.Mutex
	pending []int64
	done    map[int64]struct{}
}

func newPartitionOffsets() *partitionOffsets {
	return &partitionOffsets{done: make(map[int64]struct{})}
}

func (p *partitionOffsets) track(offset int64) {
	p.mu.Lock()
	p.pending = append(p.pending, offset)
	p.mu.Unlock()
}

// ack records offset as complete and returns the next offset to mark when
// the contiguous completed prefix grew.
func (p *partitionOffsets) ack(offset int64) (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done[offset] = struct{}{}
	next, advanced := int64(0), false
	for len(p.pending) > 0 {
		head := p.pending[0]
		if _, ok := p.done[head]; !ok {
			break
		}
		delete(p.done, head)
		p.pending = p.pending[1:]
		next, advanced = head+1, true
	}
	return next, advanced
}

// lowest returns the oldest uncommitted offset, or -1 when none is pending.
func (p *partitionOffsets) lowest() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pending) == 0 {
		return -1
	}
	return p.pending[0]
}

// DefaultConfig returns the consumer group settings used by the worker.
func DefaultConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.ClientID = defaultClientID

	cfg.Consumer.Group.Session.Timeout = defaultSessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = defaultHeartbeat
	cfg.Consumer.Group.Rebalance.Timeout = defaultRebalanceTimeout
	cfg.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRange
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Consumer.Return.Errors = true

	return cfg
}

func cloneConfig(cfg *sarama.Config) *sarama.Config {
	if cfg == nil {
		return DefaultConfig()
	}
	cloned := *cfg
	return &cloned
}

func cloneBytes(src []byte) []byte {
	if len(src) == 0 {
		return nil
	}
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}

func fromHeaders(headers []*sarama.RecordHeader) map[string][]byte {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string][]byte, len(headers))
	for _, h := range headers {
		if h == nil || len(h.Key) == 0 {
			continue
		}
		out[string(h.Key)] = cloneBytes(h.Value)
	}
	return out
}
