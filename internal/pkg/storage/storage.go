package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidPath  = errors.New("invalid file path")
)

type FileStorage interface {
	// Upload stores file under path and returns the cleaned key
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download opens a stored file; the caller closes it
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file. Missing files are not an error.
	Delete(ctx context.Context, path string) error
}
