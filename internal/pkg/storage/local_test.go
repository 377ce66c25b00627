package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	key, err := s.Upload(ctx, strings.NewReader("invoice"), "expenses/emp-1/a.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "expenses/emp-1/a.pdf", key)
	assert.FileExists(t, filepath.Join(dir, "expenses", "emp-1", "a.pdf"))

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "invoice", string(body))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key), "deleting twice is not an error")

	_, err = s.Download(ctx, key)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorage_RejectsPathsOutsideBase(t *testing.T) {
	ctx := context.Background()
	parent := t.TempDir()
	s, err := NewLocalStorage(filepath.Join(parent, "uploads"))
	require.NoError(t, err)

	for _, path := range []string{"../escape.txt", "../uploads2/x.txt", ".", "a/../../b.txt"} {
		t.Run(path, func(t *testing.T) {
			_, err := s.Upload(ctx, strings.NewReader("x"), path, "text/plain")
			assert.ErrorIs(t, err, ErrInvalidPath)

			_, err = s.Download(ctx, path)
			assert.ErrorIs(t, err, ErrInvalidPath)
		})
	}

	_, err = os.Stat(filepath.Join(parent, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}
