package models

import (
	"time"

	"github.com/yangxing-star/rongyun/internal/rongcloud"
)

// ActionRequest is the record value consumed by the action worker.
// ContentType is optional and overrides the catalog default when set.
type ActionRequest struct {
	RequestID   string            `json:"request_id"`
	Action      string            `json:"action"`
	Params      rongcloud.Params  `json:"params"`
	ContentType string            `json:"content_type,omitempty"`
	TraceID     string            `json:"trace_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	Meta        map[string]string `json:"meta,omitempty"`
}
