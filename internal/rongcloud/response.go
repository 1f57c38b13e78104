package rongcloud

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
)

// SuccessCode is the payload code RongCloud uses for a successful call.
const SuccessCode = 200

// Response is a normalized API reply.
type Response struct {
	// Success is true iff the payload's "code" is exactly the integer 200.
	Success bool
	// Code is the integer payload code; zero when absent or not an integer.
	Code int64
	// StatusCode is the HTTP status line. It does not influence Success.
	StatusCode int
	// Data is the decoded payload. Objects are map[string]any and numbers
	// are json.Number.
	Data any
	// Raw is the undecoded body.
	Raw json.RawMessage
}

// Payload returns Data as an object, or nil for non-object payloads.
func (r *Response) Payload() map[string]any {
	if r == nil {
		return nil
	}
	m, _ := r.Data.(map[string]any)
	return m
}

// Field returns a top-level payload field.
func (r *Response) Field(name string) (any, bool) {
	v, ok := r.Payload()[name]
	return v, ok
}

// Message returns the "errorMessage" or "msg" field when one is present.
func (r *Response) Message() string {
	for _, key := range []string{"errorMessage", "msg"} {
		if s, ok := r.Payload()[key].(string); ok {
			return s
		}
	}
	return ""
}

// Decode unmarshals the raw body into v.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Raw) == 0 {
		return errors.New("rongcloud: empty response")
	}
	return json.Unmarshal(r.Raw, v)
}

// normalize parses body as JSON and applies the code rule.
func normalize(body []byte, status int) (*Response, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON document")
	}

	resp := &Response{
		StatusCode: status,
		Data:       data,
		Raw:        append(json.RawMessage(nil), body...),
	}
	if obj, ok := data.(map[string]any); ok {
		if code, ok := integerCode(obj["code"]); ok {
			resp.Code = code
			resp.Success = code == SuccessCode
		}
	}
	return resp, nil
}

// integerCode accepts only JSON integers; "200" strings and 200.0 floats do
// not count.
func integerCode(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	code, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return code, true
}
