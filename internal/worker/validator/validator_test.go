package validator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yangxing-star/rongyun/internal/rongcloud"
	"github.com/yangxing-star/rongyun/internal/util"
)

const validRequestID = "7d444840-9dc0-41dc-9b15-1f1ff4c9f0a1"

func newValidator() *Validator {
	return New(DefaultConfig(), zerolog.Nop())
}

func TestParseAndValidateSuccess(t *testing.T) {
	payload := `{"request_id":"` + validRequestID + `","action":"user.token.get",` +
		`"params":{"userId":"u1","name":"Ann","portraitUri":"http://x/p.png"},` +
		`"trace_id":" trace-1 ","created_at":"2026-10-14T08:00:00+08:00","meta":{"source":" batch "}}`

	msg, err := newValidator().ParseAndValidate(context.Background(), []byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.RequestID != validRequestID || msg.ActionName != "user.token.get" {
		t.Fatalf("unexpected identity %+v", msg)
	}
	if msg.Action.Path != "/user/getToken" || msg.ContentType != rongcloud.ContentTypeForm {
		t.Fatalf("expected catalog entry to be resolved, got %+v", msg.Action)
	}
	if got := strings.Join(msg.Params.Keys(), ","); got != "userId,name,portraitUri" {
		t.Fatalf("expected params order to be preserved, got %s", got)
	}
	if msg.TraceID != "trace-1" {
		t.Fatalf("expected trimmed trace id, got %q", msg.TraceID)
	}
	if msg.CreatedAt.Location().String() != "UTC" || msg.CreatedAt.Hour() != 0 {
		t.Fatalf("expected created_at normalised to UTC, got %v", msg.CreatedAt)
	}
	if msg.Metadata["source"] != "batch" {
		t.Fatalf("expected trimmed metadata, got %v", msg.Metadata)
	}
	if string(msg.RawPayload) != payload {
		t.Fatalf("expected raw payload copy")
	}
}

func TestParseAndValidateContentType(t *testing.T) {
	v := newValidator()

	payload := `{"request_id":"` + validRequestID + `","action":"user.tag.set","params":{"userIds":["u1"],"tags":["a"]},"created_at":"2026-10-14T00:00:00Z"}`
	msg, err := v.ParseAndValidate(context.Background(), []byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ContentType != rongcloud.ContentTypeJSON {
		t.Fatalf("expected catalog json default, got %s", msg.ContentType)
	}

	payload = `{"request_id":"` + validRequestID + `","action":"user.refresh","params":{},"content_type":"json","created_at":"2026-10-14T00:00:00Z"}`
	msg, err = v.ParseAndValidate(context.Background(), []byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ContentType != rongcloud.ContentTypeJSON {
		t.Fatalf("expected override to json, got %s", msg.ContentType)
	}
}

func TestParseAndValidateMissingParams(t *testing.T) {
	payload := `{"request_id":"` + validRequestID + `","action":"wordfilter.list","created_at":"2026-10-14T00:00:00Z"}`
	msg, err := newValidator().ParseAndValidate(context.Background(), []byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Params == nil || len(msg.Params) != 0 {
		t.Fatalf("expected empty params, got %#v", msg.Params)
	}
}

func TestParseAndValidateErrors(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{name: "empty", payload: ``, want: "payload is empty"},
		{name: "malformed", payload: `{"request_id":`, want: "decode"},
		{name: "unknown field", payload: `{"request_id":"` + validRequestID + `","channel":"sms"}`, want: "decode"},
		{name: "trailing", payload: `{"request_id":"` + validRequestID + `"} {}`, want: "trailing data"},
		{name: "params not object", payload: `{"request_id":"` + validRequestID + `","action":"user.refresh","params":[1],"created_at":"2026-10-14T00:00:00Z"}`, want: "params must be a JSON object"},
		{name: "bad request id", payload: `{"request_id":"nope","action":"user.refresh","created_at":"2026-10-14T00:00:00Z"}`, want: "request_id"},
		{name: "missing action", payload: `{"request_id":"` + validRequestID + `","created_at":"2026-10-14T00:00:00Z"}`, want: "action is required"},
		{name: "unknown action", payload: `{"request_id":"` + validRequestID + `","action":"user.delete","created_at":"2026-10-14T00:00:00Z"}`, want: "unknown action"},
		{name: "bad content type", payload: `{"request_id":"` + validRequestID + `","action":"user.refresh","content_type":"xml","created_at":"2026-10-14T00:00:00Z"}`, want: "content_type"},
		{name: "missing created_at", payload: `{"request_id":"` + validRequestID + `","action":"user.refresh"}`, want: "created_at is required"},
		{name: "metadata key", payload: `{"request_id":"` + validRequestID + `","action":"user.refresh","created_at":"2026-10-14T00:00:00Z","meta":{" ":"x"}}`, want: "metadata"},
	}

	v := newValidator()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.ParseAndValidate(context.Background(), []byte(tc.payload))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestParseAndValidateKeepsIdentityOnError(t *testing.T) {
	payload := `{"request_id":"` + validRequestID + `","action":"user.delete","created_at":"2026-10-14T00:00:00Z"}`
	msg, err := newValidator().ParseAndValidate(context.Background(), []byte(payload))
	if !errors.Is(err, rongcloud.ErrUnknownAction) {
		t.Fatalf("expected unknown action error, got %v", err)
	}
	if msg == nil || msg.RequestID != validRequestID || msg.ActionName != "user.delete" {
		t.Fatalf("expected partial message with identity, got %+v", msg)
	}
}

func TestParseAndValidateInvalidUUIDIsDetectable(t *testing.T) {
	payload := `{"request_id":"5f6e2c9b-1b3a-11ee-be56-0242ac120002","action":"user.refresh","created_at":"2026-10-14T00:00:00Z"}`
	_, err := newValidator().ParseAndValidate(context.Background(), []byte(payload))
	if !errors.Is(err, util.ErrInvalidUUID) {
		t.Fatalf("expected ErrInvalidUUID for a v1 uuid, got %v", err)
	}
}

func TestParseAndValidateMetadataLimit(t *testing.T) {
	v := New(Config{MetaMaxEntries: 1}, zerolog.Nop())
	payload := `{"request_id":"` + validRequestID + `","action":"user.refresh","created_at":"2026-10-14T00:00:00Z","meta":{"a":"1","b":"2"}}`
	if _, err := v.ParseAndValidate(context.Background(), []byte(payload)); err == nil || !strings.Contains(err.Error(), "metadata entries exceeded") {
		t.Fatalf("expected metadata limit error, got %v", err)
	}
}

func TestParseAndValidateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newValidator().ParseAndValidate(ctx, []byte(`{}`)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
