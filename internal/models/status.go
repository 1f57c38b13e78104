package models

import (
	"encoding/json"
	"time"
)

// Result event types.
const (
	ResultEventAccepted  = "accepted"
	ResultEventSucceeded = "succeeded"
	// ResultEventRejected reports a reply whose payload code was not 200.
	ResultEventRejected = "rejected"
	// ResultEventFailed reports a request that produced no RongCloud reply.
	ResultEventFailed = "failed"
)

// ActionResult is the normalized RongCloud reply attached to an event.
type ActionResult struct {
	Success    bool            `json:"success"`
	Code       int64           `json:"code"`
	StatusCode int             `json:"status_code,omitempty"`
	Message    string          `json:"message,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// ResultEvent represents lifecycle events emitted for action requests.
type ResultEvent struct {
	RequestID  string        `json:"request_id"`
	Action     string        `json:"action"`
	EventType  string        `json:"event_type"`
	Result     *ActionResult `json:"result,omitempty"`
	Error      string        `json:"error,omitempty"`
	DurationMS int64         `json:"duration_ms,omitempty"`
	TraceID    string        `json:"trace_id,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}
