package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromText(t *testing.T) {
	doc := FromText("pasted content")

	assert.Equal(t, "pasted content", doc.Text())
	assert.Equal(t, "pasted-text", doc.Filename())
	assert.NoError(t, doc.Release())
}

func TestFromFilePlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("file content"), 0o644))

	doc, err := FromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "file content", doc.Text())
	assert.Equal(t, "notes.txt", doc.Filename())

	// Release must not touch caller-owned files.
	require.NoError(t, doc.Release())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestFromFileMissing(t *testing.T) {
	_, err := FromFile("/nonexistent/file.txt")
	assert.Error(t, err)
}

func TestFromUploadCreatesAndReleasesTempDir(t *testing.T) {
	doc, err := FromUpload("paper.md", []byte("# uploaded"))
	require.NoError(t, err)

	assert.Equal(t, "paper.md", doc.Filename())
	assert.Equal(t, "# uploaded", doc.Text())
	require.NotEmpty(t, doc.tempDir)

	_, statErr := os.Stat(doc.tempDir)
	require.NoError(t, statErr)

	require.NoError(t, doc.Release())
	_, statErr = os.Stat(doc.tempDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestReleaseIsIdempotent(t *testing.T) {
	doc, err := FromUpload("doc.txt", []byte("content"))
	require.NoError(t, err)

	assert.NoError(t, doc.Release())
	assert.NoError(t, doc.Release())
}

func TestFromUploadStripsPathComponents(t *testing.T) {
	doc, err := FromUpload("../../etc/passwd.txt", []byte("content"))
	require.NoError(t, err)
	defer doc.Release()

	assert.Equal(t, "passwd.txt", doc.Filename())
}
