package gateway

import (
	"encoding/json"

	"github.com/yangxing-star/rongyun/internal/rongcloud"
)

// APIError is the body of every non-2xx gateway reply.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Retryable bool   `json:"retryable"`
}

type actionInfo struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
}

type actionResponse struct {
	RequestID  string          `json:"request_id"`
	Action     string          `json:"action"`
	Success    bool            `json:"success"`
	Code       int64           `json:"code"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

type pairResponse struct {
	RequestID string          `json:"request_id"`
	Success   bool            `json:"success"`
	Forward   *actionResponse `json:"forward,omitempty"`
	Reverse   *actionResponse `json:"reverse,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func toActionResponse(requestID, action string, resp *rongcloud.Response) *actionResponse {
	if resp == nil {
		return nil
	}
	out := &actionResponse{
		RequestID:  requestID,
		Action:     action,
		Success:    resp.Success,
		Code:       resp.Code,
		StatusCode: resp.StatusCode,
		Message:    resp.Message(),
	}
	if len(resp.Raw) > 0 {
		out.Data = resp.Raw
	}
	return out
}
