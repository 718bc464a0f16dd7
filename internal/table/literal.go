package table

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// PyBytes renders b as a single-quoted Python bytes literal. Printable ASCII
// is kept verbatim; everything else is escaped, so the literal never contains
// raw control bytes.
func PyBytes(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) + 3)
	sb.WriteString("b'")
	for _, c := range b {
		writeByteEscaped(&sb, c)
	}
	sb.WriteByte('\'')
	return sb.String()
}

// PyString renders s as a single-quoted, ASCII-only Python str literal.
// Bytes that are not valid UTF-8 are written as surrogate escapes (\udcXX),
// matching how Python decodes undecodable file names.
func PyString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('\'')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			fmt.Fprintf(&sb, `\udc%02x`, s[i])
		case r < utf8.RuneSelf:
			writeByteEscaped(&sb, byte(r))
		case r <= 0xffff:
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			fmt.Fprintf(&sb, `\U%08x`, r)
		}
		i += size
	}
	sb.WriteByte('\'')
	return sb.String()
}

// PyBool renders a Python boolean literal.
func PyBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func writeByteEscaped(sb *strings.Builder, c byte) {
	switch c {
	case '\\':
		sb.WriteString(`\\`)
	case '\'':
		sb.WriteString(`\'`)
	case '\t':
		sb.WriteString(`\t`)
	case '\n':
		sb.WriteString(`\n`)
	case '\r':
		sb.WriteString(`\r`)
	default:
		if c >= 0x20 && c < 0x7f {
			sb.WriteByte(c)
			return
		}
		sb.WriteString(`\x`)
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0f])
	}
}
