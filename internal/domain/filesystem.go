package domain

import (
	"os"
)

// FileSystemAdapter defines the interface for file operations.
type FileSystemAdapter interface {
	Stat(path string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	Glob(pattern string) ([]string, error)
	// CopyFile copies src into dst. When dst is a directory the file keeps its base name.
	CopyFile(src, dst string) error
}

// DirExists reports whether path exists and is a directory.
func DirExists(fs FileSystemAdapter, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && info.IsDir()
}
