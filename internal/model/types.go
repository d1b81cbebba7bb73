package model

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Format identifies one of the supported interchange formats.
type Format string

const (
	// FormatCSV is naive comma-delimited text with a header row
	FormatCSV Format = "csv"
	// FormatXML is the fixed <records>/<record> tagged-markup convention
	FormatXML Format = "xml"
	// FormatJSON is an array of JSON objects, the only lossless format
	FormatJSON Format = "json"
)

// Formats returns all supported formats in a stable order.
func Formats() []Format {
	return []Format{FormatCSV, FormatJSON, FormatXML}
}

// ParseFormat validates a format name from user input.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXML:
		return FormatXML, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", &FormatError{Requested: name}
}

// FormatFromPath derives a format from a file name's extension. The second
// return value is false for unrecognized extensions, which callers are
// expected to ignore rather than treat as errors.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	f, err := ParseFormat(ext)
	return f, err == nil
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	return string(f)
}

// Transaction is a record augmented with a server-assigned identifier and a
// receipt timestamp. Identifiers are 1-based, sequential, and never reused.
// A transaction is immutable once stored.
type Transaction struct {
	ID         int64
	ReceivedAt time.Time
	Record     *Record
}

// MarshalJSON flattens the transaction into a single object: a numeric id
// and receivedAt first, then the record fields in their original order.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"id":`)
	buf.WriteString(strconv.FormatInt(t.ID, 10))
	buf.WriteString(`,"receivedAt":`)
	ts, err := json.Marshal(t.ReceivedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	buf.Write(ts)
	if t.Record != nil {
		for _, key := range t.Record.Keys() {
			if key == "id" || key == "receivedAt" {
				continue
			}
			k, err := json.Marshal(key)
			if err != nil {
				return nil, err
			}
			v, err := json.Marshal(t.Record.GetOrEmpty(key))
			if err != nil {
				return nil, err
			}
			buf.WriteByte(',')
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// AsRecord returns the flattened record view used by exports: id and
// receivedAt prepended to the submitted fields.
func (t Transaction) AsRecord() *Record {
	out := NewRecord()
	out.Set("id", strconv.FormatInt(t.ID, 10))
	out.Set("receivedAt", t.ReceivedAt.UTC().Format(time.RFC3339Nano))
	if t.Record != nil {
		for _, key := range t.Record.Keys() {
			out.Set(key, t.Record.GetOrEmpty(key))
		}
	}
	return out
}

// Message is one entry in a topic's append-only log: a 0-based sequential
// offset, a publish timestamp, and an opaque payload. Immutable once
// appended.
type Message struct {
	Offset    int64     `json:"offset"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}
