// Package codec converts between the three interchange formats and the
// canonical RecordSet representation.
//
// CSV and XML are deliberately minimal: the CSV dialect has no quoting or
// escaping, and the XML matcher recognizes only the fixed <records>/<record>
// convention with flat child elements. Both degrade silently on malformed
// input. JSON is the only strict, lossless format.
package codec

import (
	"github.com/sliink/formatbridge/internal/model"
)

// Parse converts content in the given format to a record set.
func Parse(content []byte, format model.Format) (model.RecordSet, error) {
	switch format {
	case model.FormatCSV:
		return parseCSV(string(content)), nil
	case model.FormatXML:
		return parseXML(string(content)), nil
	case model.FormatJSON:
		return parseJSON(content)
	}
	return nil, &model.FormatError{Requested: string(format)}
}

// Serialize converts a record set to content in the given format.
func Serialize(rs model.RecordSet, format model.Format) ([]byte, error) {
	switch format {
	case model.FormatCSV:
		return serializeCSV(rs), nil
	case model.FormatXML:
		return serializeXML(rs), nil
	case model.FormatJSON:
		return serializeJSON(rs)
	}
	return nil, &model.FormatError{Requested: string(format)}
}
