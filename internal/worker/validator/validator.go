package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/rs/zerolog"

	common "github.com/yangxing-star/rongyun/internal/adapters/common"
	"github.com/yangxing-star/rongyun/internal/models"
	"github.com/yangxing-star/rongyun/internal/rongcloud"
	"github.com/yangxing-star/rongyun/internal/util"
)

// Config bounds the optional request metadata.
type Config struct {
	MetaMaxEntries  int
	MetaMaxKeyLen   int
	MetaMaxValueLen int
}

// DefaultConfig returns the limits used by the action worker.
func DefaultConfig() Config {
	return Config{
		MetaMaxEntries:  16,
		MetaMaxKeyLen:   64,
		MetaMaxValueLen: 256,
	}
}

// Validator implements worker.Validator for action requests. It parses the
// JSON record value, resolves the action against the catalog and returns a
// populated ValidatedMessage.
type Validator struct {
	logger zerolog.Logger
	cfg    Config
}

// New constructs a Validator using the supplied limits.
func New(cfg Config, logger zerolog.Logger) *Validator {
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &Validator{
		logger: logger,
		cfg:    cfg,
	}
}

// ParseAndValidate implements worker.Validator. Once the payload decodes, the
// returned message carries the request id and action name even on error so
// failures can be correlated.
func (v *Validator) ParseAndValidate(ctx context.Context, payload []byte) (*common.ValidatedMessage, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if len(payload) == 0 {
		return nil, errors.New("action validator: payload is empty")
	}

	var req models.ActionRequest
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("action validator: decode: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("action validator: trailing data after request")
	}

	req.RequestID = strings.TrimSpace(req.RequestID)
	req.Action = strings.TrimSpace(req.Action)
	req.TraceID = strings.TrimSpace(req.TraceID)

	validated := &common.ValidatedMessage{
		RequestID:  req.RequestID,
		ActionName: req.Action,
		TraceID:    req.TraceID,
		RawPayload: append([]byte(nil), payload...),
	}

	if err := v.validate(&req, validated); err != nil {
		v.logger.Debug().
			Str("request_id", req.RequestID).
			Str("action", req.Action).
			Err(err).
			Msg("action validator: request rejected")
		return validated, err
	}
	return validated, nil
}

func (v *Validator) validate(req *models.ActionRequest, out *common.ValidatedMessage) error {
	if _, err := util.ParseUUIDv4(req.RequestID); err != nil {
		return fmt.Errorf("action validator: request_id: %w", err)
	}

	if req.Action == "" {
		return errors.New("action validator: action is required")
	}
	action, ok := rongcloud.LookupAction(req.Action)
	if !ok {
		return fmt.Errorf("action validator: %w: %q", rongcloud.ErrUnknownAction, req.Action)
	}

	ct := action.ContentType
	if strings.TrimSpace(req.ContentType) != "" {
		parsed, err := rongcloud.ParseContentType(req.ContentType)
		if err != nil {
			return fmt.Errorf("action validator: content_type: %w", err)
		}
		ct = parsed
	}

	if req.CreatedAt.IsZero() {
		return errors.New("action validator: created_at is required")
	}

	meta, err := util.ValidateMetadata(req.Meta, v.cfg.MetaMaxEntries, v.cfg.MetaMaxKeyLen, v.cfg.MetaMaxValueLen)
	if err != nil {
		return fmt.Errorf("action validator: metadata: %w", err)
	}

	params := req.Params
	if params == nil {
		params = rongcloud.Params{}
	}

	out.Action = action
	out.ContentType = ct
	out.Params = params
	out.CreatedAt = req.CreatedAt.UTC()
	out.Metadata = meta
	return nil
}
