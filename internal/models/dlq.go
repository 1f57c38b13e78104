package models

import "time"

// Failure types for DLQ records.
const (
	FailureTypeValidation = "validation"
	FailureTypeTransport  = "transport"
	FailureTypeLogical    = "logical"
	FailureTypePermanent  = "permanent"
)

// DLQRecord is the payload written to the dead-letter topic. OriginalMessage
// holds the consumed record value verbatim when it was valid JSON.
type DLQRecord struct {
	RequestID       string            `json:"request_id"`
	Action          string            `json:"action,omitempty"`
	OriginalMessage any               `json:"original_message"`
	FailureType     string            `json:"failure_type"`
	LastError       string            `json:"last_error,omitempty"`
	Code            int64             `json:"code,omitempty"`
	FailedAt        time.Time         `json:"failed_at"`
	TraceID         string            `json:"trace_id,omitempty"`
	Meta            map[string]string `json:"meta,omitempty"`
}
