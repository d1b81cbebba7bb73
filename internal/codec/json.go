package codec

import (
	"encoding/json"

	"github.com/sliink/formatbridge/internal/model"
)

// parseJSON is the only strict parser: malformed content surfaces as a
// ParseError carrying the underlying cause.
func parseJSON(content []byte) (model.RecordSet, error) {
	var rs model.RecordSet
	if err := json.Unmarshal(content, &rs); err != nil {
		return nil, &model.ParseError{Format: model.FormatJSON, Err: err}
	}
	return rs, nil
}

func serializeJSON(rs model.RecordSet) ([]byte, error) {
	if rs == nil {
		rs = model.RecordSet{}
	}
	return json.Marshal(rs)
}
