package worker

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	common "github.com/yangxing-star/rongyun/internal/adapters/common"
	"github.com/yangxing-star/rongyun/internal/models"
	"github.com/yangxing-star/rongyun/internal/util"
)

// Config contains the runtime settings of the worker engine.
type Config struct {
	MsgMaxBytes       int
	WorkerConcurrency int
}

// Record represents a Kafka message delivered to the worker. It keeps the
// engine decoupled from the concrete consumer while carrying the commit
// callback bound by the consumer bridge.
type Record struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time
	Headers   map[string][]byte

	commitFn func(context.Context) error
}

func (r *Record) setCommitFn(fn func(context.Context) error) {
	r.commitFn = fn
}

func (r *Record) commit(ctx context.Context) error {
	if r.commitFn == nil {
		return nil
	}
	return r.commitFn(ctx)
}

// Clone returns a deep copy of the record so it can be safely shared with
// asynchronous goroutines without risking data races.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	clone := *r
	clone.Key = cloneBytes(r.Key)
	clone.Value = cloneBytes(r.Value)
	if len(r.Headers) > 0 {
		clone.Headers = cloneHeaders(r.Headers)
	}

	return &clone
}

// Validator parses and validates inbound record values. On error the
// returned message may be nil or partially populated.
type Validator interface {
	ParseAndValidate(ctx context.Context, payload []byte) (*common.ValidatedMessage, error)
}

// ResultPublisher publishes lifecycle events for action requests.
type ResultPublisher interface {
	PublishResult(ctx context.Context, event models.ResultEvent) error
}

// DLQPublisher writes failed requests to the dead-letter topic.
type DLQPublisher interface {
	PublishDLQ(ctx context.Context, record models.DLQRecord) error
}

// Committer is the abstraction for committing Kafka offsets after processing.
type Committer interface {
	Commit(ctx context.Context, record *Record) error
}

// CommitFunc adapts a function to the Committer interface.
type CommitFunc func(ctx context.Context, record *Record) error

// Commit calls f.
func (f CommitFunc) Commit(ctx context.Context, record *Record) error {
	return f(ctx, record)
}

// recordCommitter commits through the callback bound to each record.
var recordCommitter = CommitFunc(func(ctx context.Context, record *Record) error {
	return record.commit(ctx)
})

// Dependencies collects the runtime collaborators required by the engine.
// Committer is optional and defaults to the callback bound to each record.
type Dependencies struct {
	Adapter         common.Adapter
	Validator       Validator
	ResultPublisher ResultPublisher
	DLQPublisher    DLQPublisher
	Committer       Committer
	Logger          zerolog.Logger
	Now             func() time.Time
}

// Engine validates inbound records, dispatches each one exactly once and
// commits offsets once an outcome has been published. Failed requests are
// never retried.
type Engine struct {
	cfg             Config
	adapter         common.Adapter
	validator       Validator
	resultPublisher ResultPublisher
	dlqPublisher    DLQPublisher
	committer       Committer
	logger          zerolog.Logger

	semaphore *semaphore.Weighted

	now func() time.Time
}

// NewEngine constructs a worker engine using the supplied configuration and
// collaborators.
func NewEngine(cfg Config, deps Dependencies) (*Engine, error) {
	if cfg.WorkerConcurrency < 1 {
		return nil, errors.New("worker: worker concurrency must be >= 1")
	}
	if cfg.MsgMaxBytes < 0 {
		return nil, errors.New("worker: msg max bytes cannot be negative")
	}
	if deps.Adapter == nil {
		return nil, errors.New("worker: adapter dependency is required")
	}
	if deps.Validator == nil {
		return nil, errors.New("worker: validator dependency is required")
	}
	if deps.ResultPublisher == nil {
		return nil, errors.New("worker: result publisher dependency is required")
	}
	if deps.DLQPublisher == nil {
		return nil, errors.New("worker: DLQ publisher dependency is required")
	}

	committer := deps.Committer
	if committer == nil {
		committer = recordCommitter
	}

	logger := deps.Logger
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	logger = logger.With().Str("component", "worker_engine").Logger()

	nowFunc := deps.Now
	if nowFunc == nil {
		nowFunc = time.Now
	}

	return &Engine{
		cfg:             cfg,
		adapter:         deps.Adapter,
		validator:       deps.Validator,
		resultPublisher: deps.ResultPublisher,
		dlqPublisher:    deps.DLQPublisher,
		committer:       committer,
		logger:          logger,
		semaphore:       semaphore.NewWeighted(int64(cfg.WorkerConcurrency)),
		now:             nowFunc,
	}, nil
}

// HandleRecord validates the record synchronously and dispatches it on a
// goroutine once a concurrency slot is free. It blocks while all slots are
// taken.
func (e *Engine) HandleRecord(ctx context.Context, record *Record) {
	if record == nil {
		return
	}

	if err := util.EnsureMaxBytes("payload", record.Value, e.cfg.MsgMaxBytes); err != nil {
		msg := partialMessageFromRecord(record)
		e.logger.Warn().
			Str("request_id", msg.RequestID).
			Int("bytes", len(record.Value)).
			Err(err).
			Msg("worker: record discarded because it exceeds configured size limit")
		e.reject(ctx, record, msg, err)
		return
	}

	validated, err := e.validator.ParseAndValidate(ctx, record.Value)
	if err != nil {
		if validated == nil {
			validated = partialMessageFromRecord(record)
		}
		fillFromRecord(validated, record)
		e.logger.Warn().
			Str("request_id", validated.RequestID).
			Str("action", validated.ActionName).
			Err(err).
			Msg("worker: validation failed for record")
		e.reject(ctx, record, validated, err)
		return
	}
	fillFromRecord(validated, record)

	if err := e.semaphore.Acquire(ctx, 1); err != nil {
		e.logger.Error().
			Str("request_id", validated.RequestID).
			Err(err).
			Msg("worker: failed to acquire concurrency semaphore")
		return
	}

	go e.processRecord(ctx, record.Clone(), validated)
}

// Wait blocks until every in-flight dispatch has finished or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	n := int64(e.cfg.WorkerConcurrency)
	if err := e.semaphore.Acquire(ctx, n); err != nil {
		return err
	}
	e.semaphore.Release(n)
	return nil
}

func (e *Engine) reject(ctx context.Context, record *Record, msg *common.ValidatedMessage, err error) {
	now := e.now()
	e.publishResult(ctx, msg, models.ResultEvent{EventType: models.ResultEventFailed, Error: err.Error(), Timestamp: now})
	e.publishDLQ(ctx, msg, models.DLQRecord{FailureType: models.FailureTypeValidation, LastError: err.Error(), FailedAt: now})
	e.commitRecord(ctx, record)
}

func (e *Engine) processRecord(ctx context.Context, record *Record, msg *common.ValidatedMessage) {
	defer e.semaphore.Release(1)

	if ctx.Err() != nil {
		e.logger.Warn().
			Str("request_id", msg.RequestID).
			Msg("worker: context cancelled before processing began")
		return
	}

	e.publishResult(ctx, msg, models.ResultEvent{EventType: models.ResultEventAccepted})

	start := e.now()
	result, err := e.adapter.Send(ctx, msg)
	duration := e.now().Sub(start)
	now := e.now()

	logEvent := e.logger.With().
		Str("request_id", msg.RequestID).
		Str("action", msg.ActionName).
		Dur("duration", duration).
		Logger()

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logEvent.Warn().Err(err).Msg("worker: context cancelled during send; deferring commit for reprocessing")
			return
		}

		failureType := models.FailureTypePermanent
		if errors.Is(err, common.ErrTransient) {
			failureType = models.FailureTypeTransport
		}
		logEvent.Warn().Err(err).Str("failure_type", failureType).Msg("worker: dispatch failed")

		e.publishResult(ctx, msg, models.ResultEvent{
			EventType:  models.ResultEventFailed,
			Error:      err.Error(),
			DurationMS: duration.Milliseconds(),
			Timestamp:  now,
		})
		e.publishDLQ(ctx, msg, models.DLQRecord{FailureType: failureType, LastError: err.Error(), FailedAt: now})
		e.commitRecord(ctx, record)
		return
	}

	actionResult := toActionResult(result)
	if actionResult.Success {
		logEvent.Info().Int64("code", actionResult.Code).Msg("worker: action succeeded")
		e.publishResult(ctx, msg, models.ResultEvent{
			EventType:  models.ResultEventSucceeded,
			Result:     actionResult,
			DurationMS: duration.Milliseconds(),
			Timestamp:  now,
		})
		e.commitRecord(ctx, record)
		return
	}

	logEvent.Warn().
		Int64("code", actionResult.Code).
		Str("message", actionResult.Message).
		Msg("worker: action rejected by upstream")
	e.publishResult(ctx, msg, models.ResultEvent{
		EventType:  models.ResultEventRejected,
		Result:     actionResult,
		Error:      actionResult.Message,
		DurationMS: duration.Milliseconds(),
		Timestamp:  now,
	})
	e.publishDLQ(ctx, msg, models.DLQRecord{
		FailureType: models.FailureTypeLogical,
		LastError:   actionResult.Message,
		Code:        actionResult.Code,
		FailedAt:    now,
	})
	e.commitRecord(ctx, record)
}

func toActionResult(result *common.DispatchResult) *models.ActionResult {
	if result == nil {
		return &models.ActionResult{}
	}
	return &models.ActionResult{
		Success:    result.Success,
		Code:       result.Code,
		StatusCode: result.StatusCode,
		Message:    result.Message,
		Data:       result.Data,
	}
}

func (e *Engine) publishResult(ctx context.Context, msg *common.ValidatedMessage, event models.ResultEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now()
	}
	event.RequestID = msg.RequestID
	event.Action = msg.ActionName
	event.TraceID = msg.TraceID

	if err := e.resultPublisher.PublishResult(ctx, event); err != nil {
		e.logger.Error().
			Str("request_id", msg.RequestID).
			Str("event", event.EventType).
			Err(err).
			Msg("worker: failed to publish result event")
	}
}

func (e *Engine) publishDLQ(ctx context.Context, msg *common.ValidatedMessage, record models.DLQRecord) {
	if record.FailedAt.IsZero() {
		record.FailedAt = e.now()
	}
	record.RequestID = msg.RequestID
	record.Action = msg.ActionName
	record.TraceID = msg.TraceID
	record.Meta = msg.Metadata
	record.OriginalMessage = originalMessage(msg.RawPayload)

	if err := e.dlqPublisher.PublishDLQ(ctx, record); err != nil {
		e.logger.Error().
			Str("request_id", msg.RequestID).
			Err(err).
			Msg("worker: failed to publish DLQ record")
	}
}

func (e *Engine) commitRecord(ctx context.Context, record *Record) {
	if err := e.committer.Commit(ctx, record); err != nil {
		e.logger.Error().
			Str("topic", record.Topic).
			Int32("partition", record.Partition).
			Int64("offset", record.Offset).
			Err(err).
			Msg("worker: failed to commit record offset")
	}
}

// originalMessage embeds valid JSON as-is and anything else as a string.
func originalMessage(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	if json.Valid(raw) {
		return json.RawMessage(cloneBytes(raw))
	}
	return string(raw)
}

func partialMessageFromRecord(record *Record) *common.ValidatedMessage {
	return &common.ValidatedMessage{
		RequestID:    string(record.Key),
		RawPayload:   cloneBytes(record.Value),
		Key:          cloneBytes(record.Key),
		KafkaHeaders: cloneHeaders(record.Headers),
	}
}

func fillFromRecord(msg *common.ValidatedMessage, record *Record) {
	if msg.RequestID == "" {
		msg.RequestID = string(record.Key)
	}
	if len(msg.RawPayload) == 0 {
		msg.RawPayload = cloneBytes(record.Value)
	}
	if len(msg.Key) == 0 {
		msg.Key = cloneBytes(record.Key)
	}
	if len(msg.KafkaHeaders) == 0 && len(record.Headers) > 0 {
		msg.KafkaHeaders = cloneHeaders(record.Headers)
	}
	if trace, ok := record.Headers["trace-id"]; ok && msg.TraceID == "" {
		msg.TraceID = string(trace)
	}
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	clone := make([]byte, len(b))
	copy(clone, b)
	return clone
}

func cloneHeaders(headers map[string][]byte) map[string][]byte {
	if len(headers) == 0 {
		return nil
	}
	clone := make(map[string][]byte, len(headers))
	for k, v := range headers {
		clone[k] = cloneBytes(v)
	}
	return clone
}
