package codec

import (
	"regexp"
	"strings"

	"github.com/sliink/formatbridge/internal/model"
)

// The tagged-markup side of the bridge speaks one fixed convention: a
// <records> root wrapping <record> items whose direct children are
// field/value pairs. The matcher below is a textual pattern match, not a
// document parser: no nesting, attributes, CDATA, comments, or self-closing
// tags. Input that strays from the convention yields empty or partial
// results rather than an error.
var (
	itemPattern  = regexp.MustCompile(`(?s)<record>(.*?)</record>`)
	fieldPattern = regexp.MustCompile(`<([^/<>\s]+)>([^<]*)</([^<>\s]+)>`)
)

func parseXML(content string) model.RecordSet {
	var rs model.RecordSet

	for _, item := range itemPattern.FindAllStringSubmatch(content, -1) {
		rec := model.NewRecord()
		for _, field := range fieldPattern.FindAllStringSubmatch(item[1], -1) {
			if field[1] != field[3] {
				continue
			}
			rec.Set(field[1], unescapeXML(field[2]))
		}
		if rec.Len() > 0 {
			rs = append(rs, rec)
		}
	}

	return rs
}

func serializeXML(rs model.RecordSet) []byte {
	var b strings.Builder
	b.WriteString("<records>\n")
	for _, rec := range rs {
		b.WriteString("  <record>\n")
		for _, key := range rec.Keys() {
			b.WriteString("    <")
			b.WriteString(key)
			b.WriteString(">")
			b.WriteString(escapeXML(rec.GetOrEmpty(key)))
			b.WriteString("</")
			b.WriteString(key)
			b.WriteString(">\n")
		}
		b.WriteString("  </record>\n")
	}
	b.WriteString("</records>\n")
	return []byte(b.String())
}

// Only ampersand and angle brackets are escaped; quotes and control
// characters pass through.
var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var xmlUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

func unescapeXML(s string) string {
	return xmlUnescaper.Replace(s)
}
