package table

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluesnow/cli/internal/testutil"
)

// decodePyBytes decodes the subset of Python bytes literal syntax PyBytes emits.
func decodePyBytes(t *testing.T, lit string) []byte {
	t.Helper()
	require.True(t, strings.HasPrefix(lit, "b'") && strings.HasSuffix(lit, "'"), "not a bytes literal: %q", lit)
	body := lit[2 : len(lit)-1]

	var out []byte
	for i := 0; i < len(body); i++ {
		c := body[i]
		require.True(t, c >= 0x20 && c < 0x7f, "raw non-printable byte %#x in literal", c)
		require.NotEqual(t, byte('\''), c, "unescaped quote in literal")
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		require.Less(t, i, len(body), "dangling backslash")
		switch body[i] {
		case '\\', '\'':
			out = append(out, body[i])
		case 't':
			out = append(out, '\t')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 'x':
			v, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			require.NoError(t, err)
			out = append(out, byte(v))
			i += 2
		default:
			t.Fatalf("unexpected escape \\%c", body[i])
		}
	}
	return out
}

func allBytes() []byte {
	b := make([]byte, 256)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestPyBytes_AllByteValues(t *testing.T) {
	for i := 0; i < 256; i++ {
		in := []byte{byte(i)}
		assert.Equal(t, in, decodePyBytes(t, PyBytes(in)), "byte %#x", i)
	}

	in := allBytes()
	assert.Equal(t, in, decodePyBytes(t, PyBytes(in)))
}

func TestPyBytes_Samples(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{nil, `b''`},
		{[]byte("x=1"), `b'x=1'`},
		{[]byte("it's"), `b'it\'s'`},
		{[]byte(`a\b`), `b'a\\b'`},
		{[]byte("a\nb\tc\r"), `b'a\nb\tc\r'`},
		{[]byte{0, 0x7f, 0xff}, `b'\x00\x7f\xff'`},
		{[]byte("é"), `b'\xc3\xa9'`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, PyBytes(tt.in))
		})
	}
}

func TestPyString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pkg.mod", `'pkg.mod'`},
		{"it's", `'it\'s'`},
		{"caf\u00e9", `'caf\u00e9'`},
		{"\U0001f600", `'\U0001f600'`},
		{"bad\xffname", `'bad\udcffname'`},
		{"tab\there", `'tab\there'`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, PyString(tt.in))
		})
	}
}

func TestPyBool(t *testing.T) {
	assert.Equal(t, "True", PyBool(true))
	assert.Equal(t, "False", PyBool(false))
}

// TestLiterals_PythonRoundTrip checks the emitted literals against a real
// interpreter, including embedded NULs and multi-byte sequences.
func TestLiterals_PythonRoundTrip(t *testing.T) {
	testutil.Python(t)

	samples := [][]byte{
		allBytes(),
		{0, 0, 0},
		[]byte("日本語 \x00 \\x00 '\"'''"),
		[]byte("line1\r\nline2\\\n"),
	}

	var script strings.Builder
	script.WriteString("import sys\n")
	for _, s := range samples {
		fmt.Fprintf(&script, "sys.stdout.write(%s.hex() + '\\n')\n", PyBytes(s))
	}
	fmt.Fprintf(&script, "sys.stdout.write(%s.encode('utf-8', 'surrogateescape').hex() + '\\n')\n", PyString("caf\u00e9\xff.mod"))

	path := filepath.Join(t.TempDir(), "literals.py")
	require.NoError(t, os.WriteFile(path, []byte(script.String()), 0o644))

	out, err := testutil.RunPython(t, path)
	require.NoError(t, err, out)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(samples)+1)
	for i, s := range samples {
		assert.Equal(t, hex.EncodeToString(s), lines[i])
	}
	assert.Equal(t, hex.EncodeToString([]byte("caf\u00e9\xff.mod")), lines[len(samples)])
}
