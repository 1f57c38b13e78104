package rongcloud

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Param is one key/value pair of a request.
type Param struct {
	Key   string
	Value any
}

// Params is an insertion-ordered parameter list. Both body encoders keep the
// order, so the same Params always produce the same bytes.
//
// Supported values: nil, string, bool, signed and unsigned integers,
// float64, json.Number, []string, []any, Params, []Params and
// map[string]string (encoded with sorted keys).
type Params []Param

// Add appends a pair and returns the extended list.
func (p Params) Add(key string, value any) Params {
	return append(p, Param{Key: key, Value: value})
}

// Get returns the first value stored under key.
func (p Params) Get(key string) (any, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in insertion order.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i, kv := range p {
		keys[i] = kv.Key
	}
	return keys
}

// EncodeForm renders p as an application/x-www-form-urlencoded body.
// String slices repeat the key. Nested Params use bracket keys such as
// group[42]=name; elements of []Params are indexed as key[0][field].
func (p Params) EncodeForm() (string, error) {
	var b strings.Builder
	for _, kv := range p {
		if err := appendForm(&b, kv.Key, kv.Value); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func appendForm(b *strings.Builder, key string, value any) error {
	switch v := value.(type) {
	case Params:
		for _, kv := range v {
			if err := appendForm(b, key+"["+kv.Key+"]", kv.Value); err != nil {
				return err
			}
		}
		return nil
	case []Params:
		for i, item := range v {
			if err := appendForm(b, key+"["+strconv.Itoa(i)+"]", item); err != nil {
				return err
			}
		}
		return nil
	case map[string]string:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			writePair(b, key+"["+k+"]", v[k])
		}
		return nil
	case []string:
		for _, item := range v {
			writePair(b, key, item)
		}
		return nil
	case []any:
		for i, item := range v {
			switch item.(type) {
			case Params, []Params, map[string]string, []string, []any:
				if err := appendForm(b, key+"["+strconv.Itoa(i)+"]", item); err != nil {
					return err
				}
			default:
				s, err := scalarString(key, item)
				if err != nil {
					return err
				}
				writePair(b, key, s)
			}
		}
		return nil
	default:
		s, err := scalarString(key, value)
		if err != nil {
			return err
		}
		writePair(b, key, s)
		return nil
	}
}

func writePair(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteByte('&')
	}
	b.WriteString(url.QueryEscape(key))
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(value))
}

func scalarString(key string, value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: %s has type %T", ErrUnsupportedValue, key, value)
	}
}

// MarshalJSON renders p as a JSON object with keys in insertion order.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedValue, kv.Key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping key order. Nested objects become
// Params, arrays become []any and numbers are kept as json.Number.
func (p *Params) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("rongcloud: params must be a JSON object")
	}
	out, err := decodeObject(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("rongcloud: trailing data after params object")
	}
	*p = out
	return nil
}

// decodeObject reads members after an opening brace up to the closing one.
func decodeObject(dec *json.Decoder) (Params, error) {
	out := Params{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("rongcloud: unexpected object key %v", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, Param{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		return decodeObject(dec)
	case '[':
		items := []any{}
		for dec.More() {
			item, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return items, nil
	default:
		return nil, fmt.Errorf("rongcloud: unexpected delimiter %v", delim)
	}
}

// DecodeForm parses a form-encoded body into Params, keeping pair order.
// Repeated keys stay as separate pairs.
func DecodeForm(body string) (Params, error) {
	out := Params{}
	if body == "" {
		return out, nil
	}
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("rongcloud: decode form key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("rongcloud: decode form value for %q: %w", key, err)
		}
		out = append(out, Param{Key: key, Value: value})
	}
	return out, nil
}

// encodeBody serializes params for the given content type.
func encodeBody(params Params, ct ContentType) ([]byte, error) {
	switch ct {
	case ContentTypeForm:
		body, err := params.EncodeForm()
		if err != nil {
			return nil, err
		}
		return []byte(body), nil
	case ContentTypeJSON:
		if params == nil {
			params = Params{}
		}
		return params.MarshalJSON()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, ct)
	}
}
