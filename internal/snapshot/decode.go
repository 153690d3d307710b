package snapshot

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

// object is a provider JSON object decoded one level deep. Lookups on a nil
// object are safe and report the key as missing.
type object map[string]json.RawMessage

// decodeObject decodes raw as a JSON object. ok is false when raw is not an
// object.
func decodeObject(raw json.RawMessage) (object, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var o object
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, false
	}
	return o, true
}

// decodeArray decodes raw as a JSON array. ok is false when raw is not an
// array.
func decodeArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var a []json.RawMessage
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, false
	}
	return a, true
}

// num returns the value at key when it is a finite JSON number.
func (o object) num(key string) *float64 {
	raw, ok := o[key]
	if !ok || isNull(raw) {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// count returns the value at key when it is a whole JSON number.
func (o object) count(key string) *int {
	v := o.num(key)
	if v == nil || *v != math.Trunc(*v) {
		return nil
	}
	n := int(*v)
	return &n
}

// str returns the value at key when it is a non-empty JSON string.
func (o object) str(key string) *string {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// length returns the number of elements in the array at key; anything else
// counts as zero.
func (o object) length(key string) int {
	a, ok := decodeArray(o[key])
	if !ok {
		return 0
	}
	return len(a)
}

// stringOr returns the string at key, or "" when it is missing.
func (o object) stringOr(key string) string {
	if s := o.str(key); s != nil {
		return *s
	}
	return ""
}
