package rongcloud

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"

	"github.com/rs/zerolog"

	common "github.com/yangxing-star/rongyun/internal/adapters/common"
	"github.com/yangxing-star/rongyun/internal/rongcloud"
)

// Sender is the subset of *rongcloud.Client used by the adapter.
type Sender interface {
	SendAs(ctx context.Context, action rongcloud.Action, params rongcloud.Params, ct rongcloud.ContentType) (*rongcloud.Response, error)
}

// Option modifies adapter behaviour.
type Option func(*Adapter)

// WithRawBodyLimit overrides how much of the reply body to keep in results.
func WithRawBodyLimit(limit int) Option {
	return func(a *Adapter) {
		if limit > 0 {
			a.maxRawChars = limit
		}
	}
}

// Adapter implements common.Adapter on top of the RongCloud client.
type Adapter struct {
	logger      zerolog.Logger
	sender      Sender
	maxRawChars int
}

// NewAdapter constructs an adapter dispatching through sender.
func NewAdapter(sender Sender, logger zerolog.Logger, opts ...Option) (*Adapter, error) {
	if sender == nil {
		return nil, errors.New("rongcloud adapter: sender dependency is required")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}

	a := &Adapter{
		logger:      logger,
		sender:      sender,
		maxRawChars: common.DefaultRawBodyLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a, nil
}

// Send issues the action described by msg exactly once. A reply carrying a
// non-200 code is returned with Success=false and a nil error.
func (a *Adapter) Send(ctx context.Context, msg *common.ValidatedMessage) (*common.DispatchResult, error) {
	if msg == nil {
		return nil, common.WrapPermanent(errors.New("rongcloud adapter: message is nil"))
	}

	resp, err := a.sender.SendAs(ctx, msg.Action, msg.Params, msg.ContentType)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		a.logger.Warn().
			Str("request_id", msg.RequestID).
			Str("action", msg.ActionName).
			Err(err).
			Msg("rongcloud adapter send failed")
		if rongcloud.IsTransportError(err) {
			return nil, common.WrapTransient(err)
		}
		return nil, common.WrapPermanent(err)
	}

	result := a.buildResult(resp)
	a.logger.Debug().
		Str("request_id", msg.RequestID).
		Str("action", msg.ActionName).
		Int64("code", result.Code).
		Bool("success", result.Success).
		Msg("rongcloud adapter send completed")
	return result, nil
}

func (a *Adapter) buildResult(resp *rongcloud.Response) *common.DispatchResult {
	if resp == nil {
		return &common.DispatchResult{}
	}
	result := &common.DispatchResult{
		Success:    resp.Success,
		Code:       resp.Code,
		StatusCode: resp.StatusCode,
		Message:    resp.Message(),
		Raw:        common.TruncateRaw(string(resp.Raw), a.maxRawChars),
	}
	if len(resp.Raw) > 0 {
		result.Data = append(json.RawMessage(nil), resp.Raw...)
	}
	return result
}
