package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one business object as an ordered mapping from field name to
// field value. Field order reflects the order keys were first set, which in
// turn reflects source-document encounter order. All values are plain text;
// the bridge performs no typed coercion.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{
		values: make(map[string]string),
	}
}

// RecordFromPairs builds a record from alternating key, value arguments.
// Mostly a convenience for wiring and tests.
func RecordFromPairs(pairs ...string) *Record {
	r := NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

// Set stores a field value. A key seen for the first time is appended to the
// field order; setting an existing key overwrites in place.
func (r *Record) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for a field and whether the field is present.
func (r *Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// GetOrEmpty returns the value for a field, or "" when absent.
func (r *Record) GetOrEmpty(key string) string {
	return r.values[key]
}

// Keys returns the field names in encounter order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.keys)
}

// Equal reports whether two records have the same fields, values, and order.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.keys) != len(other.keys) {
		return false
	}
	for i, key := range r.keys {
		if other.keys[i] != key {
			return false
		}
		if r.values[key] != other.values[key] {
			return false
		}
	}
	return true
}

// MarshalJSON serializes the record as a JSON object whose members appear in
// field encounter order. encoding/json's map marshalling sorts keys, so the
// object is assembled by hand.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a JSON object, preserving member order. Non-string
// scalar values are kept as their literal text; nested values are kept as
// their compact JSON text.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object, got %v", tok)
	}

	r.keys = nil
	r.values = make(map[string]string)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("record key must be a string, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		r.Set(key, rawToText(raw))
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func rawToText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	return string(trimmed)
}

// RecordSet is an ordered collection of records. Records are not required to
// share a field set; tabular serializations treat the first record's fields
// as the header.
type RecordSet []*Record

// Equal reports whether two record sets are element-wise equal.
func (rs RecordSet) Equal(other RecordSet) bool {
	if len(rs) != len(other) {
		return false
	}
	for i := range rs {
		if !rs[i].Equal(other[i]) {
			return false
		}
	}
	return true
}
