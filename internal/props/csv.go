// SPDX-License-Identifier: MPL-2.0

package props

import "strings"

// JoinCSV joins values with commas. A value containing a comma is wrapped in
// double quotes, with embedded quotes escaped as \".
func JoinCSV(values []string) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		if strings.Contains(v, ",") {
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(v, `"`, `\"`))
			b.WriteByte('"')
			continue
		}
		b.WriteString(v)
	}
	return b.String()
}

// SplitCSV is the inverse of JoinCSV. Surrounding whitespace of unquoted
// values is trimmed and empty values are dropped.
func SplitCSV(joined string) []string {
	var (
		out    []string
		cur    strings.Builder
		quoted bool
	)
	flush := func() {
		v := cur.String()
		cur.Reset()
		if !quoted {
			v = strings.TrimSpace(v)
		}
		if v != "" {
			out = append(out, v)
		}
		quoted = false
	}

	inQuotes := false
	for i := 0; i < len(joined); i++ {
		c := joined[i]
		switch {
		case inQuotes && c == '\\' && i+1 < len(joined) && joined[i+1] == '"':
			cur.WriteByte('"')
			i++
		case c == '"':
			inQuotes = !inQuotes
			quoted = true
		case c == ',' && !inQuotes:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return out
}
