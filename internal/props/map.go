// SPDX-License-Identifier: MPL-2.0

package props

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/magiconair/properties"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	FormatProperties Format = "properties"
	FormatJSON       Format = "json"
	FormatYAML       Format = "yaml"
	FormatTOML       Format = "toml"
)

type (
	// Map is the final flat property map handed to the engine.
	Map map[string]string

	// Format selects an output encoding.
	Format string
)

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatProperties, FormatJSON, FormatYAML, FormatTOML}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Formats(), f) {
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want one of properties, json, yaml, toml)", s)
}

// Keys returns the keys sorted.
func (m Map) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Bool reports whether key is set to "true" (case-insensitive).
func (m Map) Bool(key string) bool {
	return strings.EqualFold(strings.TrimSpace(m[key]), "true")
}

// Encode writes the map in the given format. Keys are always sorted so the
// output is byte-identical for equal maps.
func (m Map) Encode(w io.Writer, f Format) error {
	switch f {
	case FormatProperties, "":
		return m.WriteProperties(w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string(m))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]string(m)); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(map[string]string(m))
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

// WriteProperties writes the map as a Java properties file in pure ASCII.
// Every rune above '~' is written as a \uXXXX escape, with UTF-16
// surrogate pairs above U+FFFF, so any ISO-8859-1 reader sees the same
// values.
func (m Map) WriteProperties(w io.Writer) error {
	var buf strings.Builder
	for _, k := range m.Keys() {
		buf.WriteString(escapeProperty(k, true))
		buf.WriteString(" = ")
		buf.WriteString(escapeProperty(m[k], false))
		buf.WriteByte('\n')
	}
	_, err := io.WriteString(w, buf.String())
	return err
}

func escapeProperty(s string, key bool) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\f':
			b.WriteString(`\f`)
		case r == ' ' && (key || i == 0):
			b.WriteString(`\ `)
		case key && (r == ':' || r == '='):
			b.WriteByte('\\')
			b.WriteRune(r)
		case (r == '#' || r == '!') && key && i == 0:
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r > '~':
			if r1, r2 := utf16.EncodeRune(r); r1 != unicode.ReplacementChar {
				fmt.Fprintf(&b, `\u%04x\u%04x`, r1, r2)
			} else {
				fmt.Fprintf(&b, `\u%04x`, r)
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ReadProperties parses a Java properties document written by
// WriteProperties.
func ReadProperties(data []byte) (Map, error) {
	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadBytes(joinSurrogates(data))
	if err != nil {
		return nil, err
	}
	return Map(p.Map()), nil
}

// joinSurrogates replaces escaped UTF-16 surrogate pairs with the UTF-8
// encoding of the rune they form. The loader decodes each \uXXXX escape on
// its own and cannot combine a pair. Escaped backslashes are skipped so that
// \\uD83D stays literal text.
func joinSurrogates(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if data[i+1] != 'u' {
			out = append(out, data[i], data[i+1])
			i++
			continue
		}
		hi, okHi := hexRune(data[i+2:])
		lo, okLo := rune(0), false
		if okHi && i+12 <= len(data) && data[i+6] == '\\' && data[i+7] == 'u' {
			lo, okLo = hexRune(data[i+8:])
		}
		if okLo && utf16.IsSurrogate(hi) && utf16.IsSurrogate(lo) {
			if r := utf16.DecodeRune(hi, lo); r != unicode.ReplacementChar {
				out = utf8.AppendRune(out, r)
				i += 11
				continue
			}
		}
		out = append(out, data[i])
	}
	return out
}

func hexRune(b []byte) (rune, bool) {
	if len(b) < 4 {
		return 0, false
	}
	v, err := strconv.ParseUint(string(b[:4]), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

// String renders the map in properties format.
func (m Map) String() string {
	var buf bytes.Buffer
	_ = m.WriteProperties(&buf)
	return buf.String()
}
