package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Adapter provides file system operations.
type Adapter struct{}

// New creates a new filesystem adapter.
func New() *Adapter {
	return &Adapter{}
}

// Stat returns file info.
func (a *Adapter) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// MkdirAll creates a directory and all necessary parents.
func (a *Adapter) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Glob returns the names of all files matching pattern.
func (a *Adapter) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// CopyFile copies src to dst, keeping the source mode bits.
// If dst is an existing directory the copy is placed inside it.
func (a *Adapter) CopyFile(src, dst string) error {
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		dst = filepath.Join(dst, filepath.Base(src))
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}
