package blobstore

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutAndOpen(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	content := []byte("the quick brown fox")
	n, err := s.Put(bytes.NewReader(content), "abc123.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), n)

	rc, err := s.Open("abc123.txt")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestOpen_Missing(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Open("never-stored.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_Idempotent(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Put(bytes.NewReader([]byte("x")), "gone.bin")
	require.NoError(t, err)

	require.NoError(t, s.Delete("gone.bin"))
	assert.False(t, s.Exists("gone.bin"))

	// Already absent counts as success.
	require.NoError(t, s.Delete("gone.bin"))
}

func TestExists(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	assert.False(t, s.Exists("a.bin"))
	_, err = s.Put(bytes.NewReader([]byte("data")), "a.bin")
	require.NoError(t, err)
	assert.True(t, s.Exists("a.bin"))
}

func TestInvalidStoredNames(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name       string
		storedName string
	}{
		{"empty", ""},
		{"traversal", "../escape.bin"},
		{"nested traversal", "a/../../b"},
		{"separator", "dir/file.bin"},
		{"backslash", `dir\file.bin`},
		{"absolute", string(filepath.Separator) + "etc" + string(filepath.Separator) + "passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Put(bytes.NewReader([]byte("x")), tt.storedName)
			assert.ErrorIs(t, err, ErrInvalidName)

			_, err = s.Open(tt.storedName)
			assert.ErrorIs(t, err, ErrInvalidName)

			assert.ErrorIs(t, s.Delete(tt.storedName), ErrInvalidName)
		})
	}
}

func TestPut_FailedReadLeavesNoPartialFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	r := io.MultiReader(bytes.NewReader([]byte("partial")), failingReader{})
	_, err = s.Put(r, "broken.bin")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "broken.bin"))
	assert.True(t, os.IsNotExist(statErr))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
