package table

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluesnow/cli/internal/codec"
	oerrors "github.com/bluesnow/cli/internal/errors"
	"github.com/bluesnow/cli/internal/testutil"
	"github.com/bluesnow/cli/internal/walk"
)

type parsedModule struct {
	isPackage bool
	payload   []byte
}

// literalEnd returns the index just past the closing quote of the literal
// whose opening quote is at s[start].
func literalEnd(t *testing.T, s string, start int) int {
	t.Helper()
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '\'':
			return i + 1
		}
	}
	t.Fatalf("unterminated literal at %d", start)
	return 0
}

// parseEntries parses the output of WriteEntries back into modules.
func parseEntries(t *testing.T, s string) map[string]parsedModule {
	t.Helper()
	out := make(map[string]parsedModule)
	for pos := 0; pos < len(s); {
		require.Equal(t, byte('\''), s[pos], "expected key at %d", pos)
		end := literalEnd(t, s, pos)
		name := strings.NewReplacer(`\\`, `\`, `\'`, `'`).Replace(s[pos+1 : end-1])
		pos = end

		require.True(t, strings.HasPrefix(s[pos:], ":("))
		pos += 2

		var mod parsedModule
		switch {
		case strings.HasPrefix(s[pos:], "True,"):
			mod.isPackage = true
			pos += 5
		case strings.HasPrefix(s[pos:], "False,"):
			pos += 6
		default:
			t.Fatalf("expected package flag at %d: %q", pos, s[pos:min(pos+10, len(s))])
		}

		for {
			require.True(t, strings.HasPrefix(s[pos:], "b'"), "expected bytes literal at %d", pos)
			end := literalEnd(t, s, pos+1)
			mod.payload = append(mod.payload, decodePyBytes(t, s[pos:end])...)
			pos = end
			if strings.HasPrefix(s[pos:], "\\\n") {
				pos += 2
				continue
			}
			require.True(t, strings.HasPrefix(s[pos:], "),"), "expected tuple end at %d", pos)
			pos += 2
			break
		}
		out[name] = mod
	}
	return out
}

func writeTable(t *testing.T, tw *Writer, root string) (string, Stats) {
	t.Helper()
	var buf bytes.Buffer
	stats, err := tw.WriteEntries(context.Background(), &buf, walk.Files(root))
	require.NoError(t, err)
	return buf.String(), stats
}

func TestWriteEntries_Scenario(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"pkg/__init__.py": "x=1",
		"pkg/mod.py":      "def f(): return 42",
		"pkg/README.md":   "skipped",
	})

	out, stats := writeTable(t, &Writer{}, root)
	modules := parseEntries(t, out)

	require.Len(t, modules, 2)
	assert.Equal(t, parsedModule{isPackage: true, payload: []byte("x=1")}, modules["pkg"])
	assert.Equal(t, parsedModule{isPackage: false, payload: []byte("def f(): return 42")}, modules["pkg.mod"])

	assert.Equal(t, 2, stats.Modules)
	assert.Equal(t, 1, stats.Packages)
	assert.Equal(t, int64(len("x=1")+len("def f(): return 42")), stats.RawBytes)
	assert.Equal(t, stats.RawBytes, stats.PayloadBytes)
}

func TestWriteEntries_RoundTrip(t *testing.T) {
	binary := string(allBytes())
	large := strings.Repeat("print('chunk boundary')\n", 1000)
	files := map[string]string{
		"a/__init__.py":        "",
		"a/b/__init__.py":      "from . import c\n",
		"a/b/c.py":             binary,
		"a/big.py":             large,
		"top.py":               "import a.b.c\n",
		"a/__pycache__/c.py":   "never embedded",
		"x-1.0.dist-info/y.py": "never embedded",
	}
	want := map[string]parsedModule{
		"a":     {isPackage: true, payload: []byte("")},
		"a.b":   {isPackage: true, payload: []byte("from . import c\n")},
		"a.b.c": {payload: []byte(binary)},
		"a.big": {payload: []byte(large)},
		"top":   {payload: []byte("import a.b.c\n")},
	}

	for _, name := range []codec.Name{codec.None, codec.XZ, codec.Zlib} {
		for _, size := range []int{1, 7, DefaultChunkSize} {
			t.Run(fmt.Sprintf("%s/chunk=%d", name, size), func(t *testing.T) {
				root := t.TempDir()
				testutil.WriteTree(t, root, files)

				out, stats := writeTable(t, &Writer{Codec: name, ChunkSize: size}, root)
				modules := parseEntries(t, out)
				require.Len(t, modules, len(want))

				for modName, w := range want {
					got, ok := modules[modName]
					require.True(t, ok, "missing module %s", modName)
					assert.Equal(t, w.isPackage, got.isPackage, modName)

					source, err := codec.Decompress(name, got.payload)
					require.NoError(t, err)
					if len(w.payload) == 0 {
						assert.Empty(t, source, modName)
					} else {
						assert.Equal(t, w.payload, source, modName)
					}
				}
				assert.Equal(t, len(want), stats.Modules)
			})
		}
	}
}

func TestWriteEntries_ChunkedOutput(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "m.py", "abcdefghij")

	out, _ := writeTable(t, &Writer{ChunkSize: 4}, root)
	assert.Equal(t, "'m':(False,b'abcd'\\\nb'efgh'\\\nb'ij'\\\nb''),", out)
}

func TestWriteEntries_Progress(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"pkg/__init__.py": "",
		"pkg/data.json":   "{}",
	})

	var seen []Progress
	tw := &Writer{Progress: func(p Progress) { seen = append(seen, p) }}
	_, _ = writeTable(t, tw, root)

	require.Len(t, seen, 1)
	assert.Equal(t, 1, seen[0].Ordinal)
	assert.Equal(t, "pkg", seen[0].Module)
	assert.Equal(t, filepath.Join("pkg", "__init__.py"), seen[0].File)
}

func TestWriteEntries_WalkError(t *testing.T) {
	var buf bytes.Buffer
	_, err := (&Writer{}).WriteEntries(context.Background(), &buf, walk.Files(filepath.Join(t.TempDir(), "missing")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrFilesystem))
}

func TestWriteEntries_UnreadableFile(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root can read files regardless of mode")
	}
	root := t.TempDir()
	path := testutil.WriteFile(t, root, "secret.py", "x = 1")
	require.NoError(t, os.Chmod(path, 0o000))

	var buf bytes.Buffer
	_, err := (&Writer{}).WriteEntries(context.Background(), &buf, walk.Files(root))
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrFilesystem))
}

func TestWriteEntries_Cancelled(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "m.py", "x = 1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	_, err := (&Writer{}).WriteEntries(ctx, &buf, walk.Files(root))
	assert.ErrorIs(t, err, context.Canceled)
}
