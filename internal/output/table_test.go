package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_RendersHeadersAndRows(t *testing.T) {
	got := NewTable("A", "B").Row("one", "two").Row("three", "four").String()

	for _, want := range []string{"A", "B", "one", "two", "three", "four"} {
		assert.Contains(t, got, want)
	}
}

func TestRenderArtifactTable(t *testing.T) {
	digest := "sha256:" + strings.Repeat("ab", 32)
	got := RenderArtifactTable([]ArtifactRow{
		{Name: "run", Modules: 4, Packages: 1, Bytes: 2048, Digest: digest},
	})

	assert.Contains(t, got, "ARTIFACT")
	assert.Contains(t, got, "DIGEST")
	assert.Contains(t, got, "run")
	assert.Contains(t, got, "2.0 KiB")
	assert.Contains(t, got, "sha256:abababababab")
	assert.NotContains(t, got, digest, "digest should be shortened")
}

func TestShortDigest(t *testing.T) {
	assert.Equal(t, "sha256:0123456789ab", shortDigest("sha256:0123456789abcdef"))
	assert.Equal(t, "short", shortDigest("short"))
}
