package entrypoint

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/bluesnow/cli/internal/errors"
	"github.com/bluesnow/cli/internal/testutil"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    EntryPoint
		wantErr string
	}{
		{
			name: "simple",
			in:   "run=pkg.mod:f",
			want: EntryPoint{Name: "run", Module: "pkg.mod", Attrs: []string{"f"}},
		},
		{
			name: "whitespace and attribute chain",
			in:   "  my-tool = app.cli : Main.run ",
			want: EntryPoint{Name: "my-tool", Module: "app.cli", Attrs: []string{"Main", "run"}},
		},
		{
			name: "extras are kept",
			in:   "serve = app.web:main [http, tls]",
			want: EntryPoint{Name: "serve", Module: "app.web", Attrs: []string{"main"}, Extras: []string{"http", "tls"}},
		},
		{name: "missing callable", in: "run=pkg.mod", wantErr: "missing callable"},
		{name: "missing equals", in: "pkg.mod:f", wantErr: "expected name=module:callable"},
		{name: "empty", in: "", wantErr: "expected name=module:callable"},
		{name: "bad module", in: "run=pkg..mod:f", wantErr: "not a dotted name"},
		{name: "module starts with digit", in: "run=1pkg:f", wantErr: "not a dotted name"},
		{name: "bad callable", in: "run=pkg:f.", wantErr: "not a dotted name"},
		{name: "path in name", in: "../run=pkg:f", wantErr: "path separators"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, oerrors.ErrConfiguration))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEntryPointAccessors(t *testing.T) {
	ep := EntryPoint{Name: "run", Module: "pkg.mod", Attrs: []string{"App", "main"}}
	assert.Equal(t, "App.main", ep.Callable())
	assert.Equal(t, "run = pkg.mod:App.main", ep.String())
	assert.Equal(t, "run.py", ep.FileName())
}

func TestParseAll(t *testing.T) {
	eps, err := ParseAll([]string{"b=pkg:b", "a=pkg:a"})
	require.NoError(t, err)
	require.Len(t, eps, 2)
	assert.Equal(t, "b", eps[0].Name, "order is preserved")
	assert.Equal(t, "a", eps[1].Name)

	_, err = ParseAll([]string{"a=pkg:a", "a=pkg:b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	eps, err = ParseAll(nil)
	require.NoError(t, err)
	assert.Empty(t, eps)
}

func TestFromPyProject(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "pyproject.toml", `
[project]
name = "demo"
version = "0.1.0"

[project.scripts]
zeta = "demo.cli:main"
alpha = "demo.tools:run"

[project.gui-scripts]
viewer = "demo.gui:App.start"
`)

	eps, err := FromPyProject(path)
	require.NoError(t, err)
	require.Len(t, eps, 3)
	assert.Equal(t, "alpha", eps[0].Name)
	assert.Equal(t, "zeta", eps[1].Name)
	assert.Equal(t, "viewer", eps[2].Name)
	assert.Equal(t, "App.start", eps[2].Callable())
}

func TestFromPyProject_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := FromPyProject(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrFilesystem))

	bad := testutil.WriteFile(t, dir, "bad.toml", "[project\nscripts = ")
	_, err = FromPyProject(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrConfiguration))

	empty := testutil.WriteFile(t, dir, "empty.toml", "[project]\nname = \"x\"\n")
	eps, err := FromPyProject(empty)
	require.NoError(t, err)
	assert.Empty(t, eps)
}
