package rongcloud_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	common "github.com/yangxing-star/rongyun/internal/adapters/common"
	rcadapter "github.com/yangxing-star/rongyun/internal/adapters/rongcloud"
	"github.com/yangxing-star/rongyun/internal/rongcloud"
)

type senderCall struct {
	action rongcloud.Action
	params rongcloud.Params
	ct     rongcloud.ContentType
}

type stubSender struct {
	mu    sync.Mutex
	calls []senderCall
	resp  *rongcloud.Response
	err   error
}

func (s *stubSender) SendAs(_ context.Context, action rongcloud.Action, params rongcloud.Params, ct rongcloud.ContentType) (*rongcloud.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, senderCall{action: action, params: params, ct: ct})
	return s.resp, s.err
}

func tokenMessage() *common.ValidatedMessage {
	return &common.ValidatedMessage{
		RequestID:   "2f0c6b1e-8a57-4f0e-9c51-1f7f2b0c3d4e",
		Action:      rongcloud.ActionUserGetToken,
		ActionName:  rongcloud.ActionUserGetToken.Name,
		ContentType: rongcloud.ContentTypeForm,
		Params:      rongcloud.Params{}.Add("userId", "u1").Add("name", "Ann"),
	}
}

func TestNewAdapterRequiresSender(t *testing.T) {
	if _, err := rcadapter.NewAdapter(nil, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for nil sender")
	}
}

func TestSendSuccess(t *testing.T) {
	raw := json.RawMessage(`{"code":200,"userId":"u1","token":"tok"}`)
	sender := &stubSender{resp: &rongcloud.Response{Success: true, Code: 200, StatusCode: 200, Raw: raw}}
	adapter, err := rcadapter.NewAdapter(sender, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := tokenMessage()
	result, err := adapter.Send(context.Background(), msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.Code != 200 || result.StatusCode != 200 {
		t.Fatalf("unexpected result %+v", result)
	}
	if string(result.Data) != string(raw) || result.Raw != string(raw) {
		t.Fatalf("expected reply body to be carried, got data=%s raw=%s", result.Data, result.Raw)
	}

	if len(sender.calls) != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", len(sender.calls))
	}
	call := sender.calls[0]
	if call.action.Name != "user.token.get" || call.ct != rongcloud.ContentTypeForm {
		t.Fatalf("unexpected call %+v", call)
	}
	if got := strings.Join(call.params.Keys(), ","); got != "userId,name" {
		t.Fatalf("expected params in original order, got %s", got)
	}
}

func TestSendLogicalFailureReturnsResult(t *testing.T) {
	sender := &stubSender{resp: &rongcloud.Response{
		Code:       1002,
		StatusCode: 400,
		Data:       map[string]any{"code": json.Number("1002"), "errorMessage": "userId is required"},
		Raw:        json.RawMessage(`{"code":1002,"errorMessage":"userId is required"}`),
	}}
	adapter, _ := rcadapter.NewAdapter(sender, zerolog.Nop())

	result, err := adapter.Send(context.Background(), tokenMessage())
	if err != nil {
		t.Fatalf("expected logical failure without error, got %v", err)
	}
	if result.Success || result.Code != 1002 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Message != "userId is required" {
		t.Fatalf("expected message from payload, got %q", result.Message)
	}
}

func TestSendTransportErrorIsTransient(t *testing.T) {
	sender := &stubSender{err: &rongcloud.TransportError{Action: "user.token.get", Err: errors.New("connection refused")}}
	adapter, _ := rcadapter.NewAdapter(sender, zerolog.Nop())

	_, err := adapter.Send(context.Background(), tokenMessage())
	if !errors.Is(err, common.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if !errors.Is(err, rongcloud.ErrTransport) {
		t.Fatalf("expected transport cause to remain reachable, got %v", err)
	}
}

func TestSendEncodingErrorIsPermanent(t *testing.T) {
	sender := &stubSender{err: rongcloud.ErrUnsupportedValue}
	adapter, _ := rcadapter.NewAdapter(sender, zerolog.Nop())

	_, err := adapter.Send(context.Background(), tokenMessage())
	if !errors.Is(err, common.ErrPermanent) || errors.Is(err, common.ErrTransient) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestSendContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := &stubSender{err: &rongcloud.TransportError{Action: "user.token.get", Err: context.Canceled}}
	adapter, _ := rcadapter.NewAdapter(sender, zerolog.Nop())

	_, err := adapter.Send(ctx, tokenMessage())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, common.ErrTransient) {
		t.Fatalf("expected cancellation to be reported unclassified")
	}
}

func TestSendNilMessage(t *testing.T) {
	adapter, _ := rcadapter.NewAdapter(&stubSender{}, zerolog.Nop())
	if _, err := adapter.Send(context.Background(), nil); !errors.Is(err, common.ErrPermanent) {
		t.Fatalf("expected permanent error for nil message, got %v", err)
	}
}

func TestSendTruncatesRaw(t *testing.T) {
	raw := json.RawMessage(`{"code":200,"token":"abcdefghij"}`)
	sender := &stubSender{resp: &rongcloud.Response{Success: true, Code: 200, Raw: raw}}
	adapter, _ := rcadapter.NewAdapter(sender, zerolog.Nop(), rcadapter.WithRawBodyLimit(10))

	result, err := adapter.Send(context.Background(), tokenMessage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Raw != `{"code":20` {
		t.Fatalf("expected truncated raw, got %q", result.Raw)
	}
	if string(result.Data) != string(raw) {
		t.Fatalf("expected full data to be kept, got %s", result.Data)
	}
}
