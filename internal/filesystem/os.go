package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const touchFilePermissionsConstant fs.FileMode = 0o644

// FileSystem captures the filesystem primitives used by the bootstrap flow.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	Touch(path string) error
	MkdirAll(path string, permissions fs.FileMode) error
	Abs(path string) (string, error)
}

// OSFileSystem implements FileSystem using the operating system primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadDir lists directory entries sorted by name.
func (OSFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// WriteFile writes data to a file with the supplied permissions, truncating existing content.
func (OSFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	return os.WriteFile(path, data, permissions)
}

// Touch creates an empty file when absent and refreshes the modification time otherwise.
// Existing content is never altered.
func (OSFileSystem) Touch(path string) error {
	currentTime := time.Now()
	changeError := os.Chtimes(path, currentTime, currentTime)
	if changeError == nil {
		return nil
	}
	if !errors.Is(changeError, fs.ErrNotExist) {
		return changeError
	}

	createdFile, createError := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, touchFilePermissionsConstant)
	if createError != nil {
		return createError
	}
	return createdFile.Close()
}

// MkdirAll ensures a directory hierarchy exists with the provided permissions.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// Abs resolves an absolute path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}
