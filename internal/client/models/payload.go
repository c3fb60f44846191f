// Package models defines the on-device data model: scan entries captured
// before sign-in, their image references, and the local Saved collection.
package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Payload is an open key/value structure holding recognition and price
// lookup output. Its shape is not fixed; readers must tolerate missing and
// extra keys. Values follow encoding/json conventions (numbers are float64).
type Payload map[string]any

// String returns the first non-empty string found under keys.
func (p Payload) String(keys ...string) (string, bool) {
	for _, k := range keys {
		switch v := p[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s, true
			}
		case json.Number:
			return v.String(), true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		}
	}
	return "", false
}

// Number returns the first value under keys that can be read as a number.
// Numeric strings such as "1850" or "$120.50" are accepted.
func (p Payload) Number(keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := p[k].(type) {
		case float64:
			return v, true
		case float32:
			return float64(v), true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f, true
			}
		case string:
			s := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(v), "$€£"))
			s = strings.ReplaceAll(s, ",", "")
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// Strings returns the first list of strings under keys. A single string is
// treated as a one-element list; empty elements are dropped.
func (p Payload) Strings(keys ...string) ([]string, bool) {
	for _, k := range keys {
		var out []string
		switch v := p[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				out = []string{s}
			}
		case []string:
			for _, s := range v {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		case []any:
			for _, e := range v {
				if s, ok := e.(string); ok {
					if s = strings.TrimSpace(s); s != "" {
						out = append(out, s)
					}
				}
			}
		}
		if len(out) > 0 {
			return out, true
		}
	}
	return nil, false
}

// Map returns the first nested object under keys.
func (p Payload) Map(keys ...string) (map[string]any, bool) {
	for _, k := range keys {
		switch v := p[k].(type) {
		case map[string]any:
			return v, true
		case Payload:
			return v, true
		}
	}
	return nil, false
}

// Clone returns a deep copy made through a JSON round trip. Values that do
// not survive encoding/json are dropped.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return Payload{}
	}
	var out Payload
	if err := json.Unmarshal(b, &out); err != nil {
		return Payload{}
	}
	return out
}
