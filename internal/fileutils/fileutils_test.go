package fileutils

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileAndDirectoryExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "statement.csv")
	require.NoError(t, os.WriteFile(file, []byte("data"), 0o600))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir), "directories are not files")
	assert.False(t, FileExists(filepath.Join(dir, "missing.csv")))

	assert.True(t, DirectoryExists(dir))
	assert.False(t, DirectoryExists(file))
}

func TestEnsureDirectoryExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")

	require.NoError(t, EnsureDirectoryExists(dir))
	assert.True(t, DirectoryExists(dir))

	// Second call is a no-op.
	require.NoError(t, EnsureDirectoryExists(dir))
}

func TestReadFileBase64(t *testing.T) {
	file := filepath.Join(t.TempDir(), "invoice.pdf")
	content := []byte("%PDF-1.4 fake")
	require.NoError(t, os.WriteFile(file, content, 0o600))

	encoded, err := ReadFileBase64(file)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(content), encoded)

	_, err = ReadFileBase64(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestMimeTypeByExtension(t *testing.T) {
	assert.Equal(t, "application/pdf", MimeTypeByExtension("scan.PDF"))
	assert.Equal(t, "image/jpeg", MimeTypeByExtension("faktura.jpg"))
	assert.Equal(t, "text/xml", MimeTypeByExtension("pokupki.xml"))
	assert.Equal(t, "text/csv", MimeTypeByExtension("statement.csv"))
	assert.Equal(t, "application/octet-stream", MimeTypeByExtension("archive.bin"))
}

func TestListFilesWithExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xml", "a.xml", "c.csv", "D.XML"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xml"), 0o755))

	files, err := ListFilesWithExtension(dir, "xml")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, filepath.Join(dir, "D.XML"), files[0])
	assert.Equal(t, filepath.Join(dir, "a.xml"), files[1])
	assert.Equal(t, filepath.Join(dir, "b.xml"), files[2])
}
