package dart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, "20240312000736.zip")
	require.NoError(t, os.WriteFile(path, buildZip(t, files), 0o644))
	return path
}

func TestExtractReportFile_PrefersRootXML(t *testing.T) {
	dir := t.TempDir()
	zipPath := writeZip(t, dir, map[string]string{
		"report.html":       "<html></html>",
		"main.xml":          "<DOCUMENT/>",
		"attach/large.html": strings.Repeat("x", 4096),
	})

	path, ext, err := ExtractReportFile(zipPath, dir)

	require.NoError(t, err)
	assert.Equal(t, ".xml", ext)
	assert.Equal(t, filepath.Join(dir, "20240312000736_extracted", "main.xml"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<DOCUMENT/>", string(data))
}

func TestExtractReportFile_FallsBackToRootHTML(t *testing.T) {
	dir := t.TempDir()
	zipPath := writeZip(t, dir, map[string]string{
		"index.HTM":        "<html></html>",
		"sub/big.xml":      strings.Repeat("y", 2048),
		"image/figure.jpg": "binary",
	})

	path, ext, err := ExtractReportFile(zipPath, dir)

	require.NoError(t, err)
	assert.Equal(t, ".htm", ext)
	assert.Equal(t, "index.HTM", filepath.Base(path))
}

func TestExtractReportFile_LargestNested(t *testing.T) {
	dir := t.TempDir()
	zipPath := writeZip(t, dir, map[string]string{
		"a/small.xml": "<a/>",
		"b/big.html":  strings.Repeat("z", 1024),
		"readme.txt":  "notes",
	})

	path, ext, err := ExtractReportFile(zipPath, dir)

	require.NoError(t, err)
	assert.Equal(t, ".html", ext)
	assert.Equal(t, "big.html", filepath.Base(path))
}

func TestExtractReportFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := ExtractReportFile(writeZip(t, dir, map[string]string{"readme.txt": "x"}), dir)
	assert.ErrorIs(t, err, ErrBadArchive)

	notZip := filepath.Join(dir, "bad.zip")
	require.NoError(t, os.WriteFile(notZip, []byte("not a zip"), 0o644))
	_, _, err = ExtractReportFile(notZip, dir)
	assert.ErrorIs(t, err, ErrBadArchive)

	_, _, err = ExtractReportFile(writeZip(t, dir, map[string]string{"../escape.xml": "x"}), dir)
	assert.ErrorIs(t, err, ErrBadArchive)

	_, _, err = ExtractReportFile(writeZip(t, dir, map[string]string{"../": "", "main.xml": "<DOCUMENT/>"}), dir)
	assert.ErrorIs(t, err, ErrBadArchive)
}

func TestExtractReportFile_SizeLimit(t *testing.T) {
	old := maxExtractBytes
	maxExtractBytes = 1024
	t.Cleanup(func() { maxExtractBytes = old })
	dir := t.TempDir()

	_, _, err := ExtractReportFile(writeZip(t, dir, map[string]string{
		"main.xml":   strings.Repeat("a", 600),
		"attach.xml": strings.Repeat("b", 600),
	}), dir)
	assert.ErrorIs(t, err, ErrBadArchive)

	path, _, err := ExtractReportFile(writeZip(t, dir, map[string]string{"main.xml": strings.Repeat("a", 1024)}), dir)
	require.NoError(t, err)
	assert.Equal(t, "main.xml", filepath.Base(path))
}
