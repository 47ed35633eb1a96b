package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	assert.False(t, FileExists("/non/existent/file"))

	path := filepath.Join(t.TempDir(), "present")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	assert.True(t, FileExists(path))
}

func TestBuildPDFStructure(t *testing.T) {
	data := BuildPDF(Letter(Line{X: 72, Baseline: 700, Size: 12, Text: "hello (world)"}))

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-1.4\n")))
	assert.True(t, bytes.HasSuffix(data, []byte("%%EOF\n")))
	assert.Contains(t, string(data), `(hello \(world\)) Tj`)
	assert.Contains(t, string(data), "/BaseFont /Courier")
	assert.Contains(t, string(data), "/MediaBox [0 0 612 792]")
}

func TestWritePDF(t *testing.T) {
	path := WritePDF(t, t.TempDir(), "doc.pdf", Letter(), Letter())
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestTextWidth(t *testing.T) {
	assert.InDelta(t, 36.0, TextWidth("hello", 12), 1e-9)
	assert.InDelta(t, 0.0, TextWidth("", 12), 1e-9)
}
