package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderFileTree_Empty(t *testing.T) {
	assert.Empty(t, RenderFileTree("out", nil))
}

func TestRenderFileTree_SortedWithDescriptions(t *testing.T) {
	got := RenderFileTree("bluesnow-out", map[string]string{
		"run.py":   "12 modules",
		"check.py": "3 modules",
	})

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "bluesnow-out/")
	assert.Contains(t, lines[1], "├── check.py")
	assert.Contains(t, lines[1], "3 modules")
	assert.Contains(t, lines[2], "└── run.py")
	assert.Contains(t, lines[2], "12 modules")
}

func TestRenderFileTree_DirectoriesFirst(t *testing.T) {
	got := RenderFileTree("root", map[string]string{
		"z.py":     "",
		"sub/a.py": "",
		"sub/b.py": "",
	})

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[1], "├── sub/")
	assert.Contains(t, lines[2], "│   ├── a.py")
	assert.Contains(t, lines[3], "│   └── b.py")
	assert.Contains(t, lines[4], "└── z.py")
}
