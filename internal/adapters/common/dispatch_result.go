package common

import (
	"encoding/json"
	"unicode/utf8"
)

// DefaultRawBodyLimit defines the maximum number of characters retained from
// an upstream reply when attaching it to a DispatchResult.
const DefaultRawBodyLimit = 1024

// DispatchResult captures the normalized reply exchanged between adapters and
// the worker engine.
type DispatchResult struct {
	Success    bool            `json:"success"`
	Code       int64           `json:"code"`
	StatusCode int             `json:"status_code,omitempty"`
	Message    string          `json:"message,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Raw        string          `json:"raw,omitempty"`
}

// TruncateRaw trims the supplied string to the specified rune limit. If limit
// is zero or negative it returns an empty string.
func TruncateRaw(raw string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(raw) <= limit {
		return raw
	}
	runes := []rune(raw)
	return string(runes[:limit])
}
