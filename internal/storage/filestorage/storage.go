package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Backend is a single place a processed artifact is written to.
type Backend interface {
	Name() string
	Put(ctx context.Context, name, srcPath string) error
	Delete(ctx context.Context, name string) error
}

// LocalFileStorage keeps artifacts in a directory on the local disk.
type LocalFileStorage struct {
	baseDir string // e.g. "./uploads"
	baseURL string // e.g. "/uploads"
}

func NewLocalFileStorage(baseDir, baseURL string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalFileStorage) Name() string {
	return "local:" + s.baseDir
}

// Save spools an uploaded multipart file into the storage directory under
// name and returns the full path and the number of bytes written.
func (s *LocalFileStorage) Save(ctx context.Context, file *multipart.FileHeader, name string) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	src, err := file.Open()
	if err != nil {
		return "", 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	fullPath := s.GetFullPath(name)
	size, err := writeFile(ctx, fullPath, src)
	if err != nil {
		return "", 0, err
	}

	return fullPath, size, nil
}

// Put copies the file at srcPath into the storage directory under name.
func (s *LocalFileStorage) Put(ctx context.Context, name, srcPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	_, err = writeFile(ctx, s.GetFullPath(name), src)
	return err
}

func (s *LocalFileStorage) Delete(ctx context.Context, name string) error {
	return os.Remove(s.GetFullPath(name))
}

// Exists reports whether name is present in the storage directory.
func (s *LocalFileStorage) Exists(name string) bool {
	_, err := os.Stat(s.GetFullPath(name))
	return err == nil
}

// GetFullPath returns the on-disk path of name. Directory components of name
// are dropped so callers can never escape the base directory.
func (s *LocalFileStorage) GetFullPath(name string) string {
	return filepath.Join(s.baseDir, filepath.Base(name))
}

// URL returns the public URL name is served under.
func (s *LocalFileStorage) URL(name string) string {
	return path.Join(s.baseURL, path.Base(name))
}

func (s *LocalFileStorage) BaseURL() string {
	return s.baseURL
}

func (s *LocalFileStorage) GetBaseDir() string {
	return s.baseDir
}

func writeFile(ctx context.Context, dstPath string, src io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directories: %w", err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file: %w", err)
	}

	done := make(chan struct{})
	var size int64
	var copyErr error

	go func() {
		size, copyErr = io.Copy(dst, src)
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		<-done
		_ = dst.Close()
		_ = os.Remove(dstPath)
		return 0, ctx.Err()
	}

	if closeErr := dst.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(dstPath)
		return 0, fmt.Errorf("failed to copy file: %w", copyErr)
	}

	return size, nil
}
