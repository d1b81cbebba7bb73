package codec

import (
	"strings"

	"github.com/sliink/formatbridge/internal/model"
)

// parseCSV splits delimited text positionally against a header row. The
// first non-blank line is the header; every later non-blank line is zipped
// against it. There is no quoting or escaping, so a value containing a comma
// corrupts its row. Blank lines, including a trailing one, are skipped.
func parseCSV(content string) model.RecordSet {
	var header []string
	var rs model.RecordSet

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if header == nil {
			for _, name := range strings.Split(line, ",") {
				header = append(header, strings.TrimSpace(name))
			}
			continue
		}

		cells := strings.Split(line, ",")
		rec := model.NewRecord()
		for i, name := range header {
			value := ""
			if i < len(cells) {
				value = cells[i]
			}
			rec.Set(name, value)
		}
		rs = append(rs, rec)
	}

	return rs
}

// serializeCSV emits the first record's field list as the header and looks
// each header key up per record, substituting "" when absent. Records with
// extra fields lose them silently.
func serializeCSV(rs model.RecordSet) []byte {
	if len(rs) == 0 {
		return []byte{}
	}

	header := rs[0].Keys()
	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')

	for _, rec := range rs {
		cells := make([]string, len(header))
		for i, name := range header {
			cells[i] = rec.GetOrEmpty(name)
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteByte('\n')
	}

	return []byte(b.String())
}
