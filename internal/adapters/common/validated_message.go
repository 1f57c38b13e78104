package common

import (
	"time"

	"github.com/yangxing-star/rongyun/internal/rongcloud"
)

// ValidatedMessage captures the canonical representation of an action request
// after it has passed validation. Adapters receive this structure when
// dispatching upstream, and the worker engine uses it to enrich result and DLQ
// events. Action is the zero value when validation failed before the name was
// resolved.
type ValidatedMessage struct {
	RequestID    string
	Action       rongcloud.Action
	ActionName   string
	ContentType  rongcloud.ContentType
	Params       rongcloud.Params
	TraceID      string
	CreatedAt    time.Time
	Metadata     map[string]string
	RawPayload   []byte
	Key          []byte
	KafkaHeaders map[string][]byte
}
