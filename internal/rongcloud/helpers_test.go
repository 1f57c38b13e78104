package rongcloud_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yangxing-star/rongyun/internal/config"
	"github.com/yangxing-star/rongyun/internal/rongcloud"
)

const (
	testAppKey    = "pvxdm17jx5eqr"
	testAppSecret = "T6Kb5lVqeLz"
)

type capturedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

type stubReply struct {
	status int
	body   string
	err    error
}

// doerStub replays scripted replies in order and records every request.
type doerStub struct {
	mu       sync.Mutex
	requests []capturedRequest
	replies  []stubReply
}

func (d *doerStub) Do(req *http.Request) (*http.Response, error) {
	body, _ := io.ReadAll(req.Body)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, capturedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Header: req.Header.Clone(),
		Body:   string(body),
	})

	reply := stubReply{status: http.StatusOK, body: `{"code":200}`}
	if n := len(d.requests) - 1; n < len(d.replies) {
		reply = d.replies[n]
	}
	if reply.err != nil {
		return nil, reply.err
	}
	return &http.Response{
		StatusCode: reply.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(reply.body)),
		Request:    req,
	}, nil
}

func (d *doerStub) captured() []capturedRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]capturedRequest(nil), d.requests...)
}

func newStubClient(t *testing.T, replies ...stubReply) (*rongcloud.Client, *doerStub) {
	t.Helper()
	doer := &doerStub{replies: replies}
	client, err := rongcloud.NewClient(config.RongCloudConfig{
		AppKey:    testAppKey,
		AppSecret: testAppSecret,
		APIHost:   "https://api.example.test",
	}, zerolog.Nop(), rongcloud.WithHTTPClient(doer))
	if err != nil {
		t.Fatalf("unexpected client error: %v", err)
	}
	return client, doer
}

func onlyRequest(t *testing.T, doer *doerStub) capturedRequest {
	t.Helper()
	reqs := doer.captured()
	if len(reqs) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(reqs))
	}
	return reqs[0]
}

var background = context.Background()
