package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/temirov/ginit/internal/filesystem"
)

const (
	// GitMetadataDirectoryName names the directory marking an initialized repository.
	GitMetadataDirectoryName = ".git"

	inspectionErrorTemplateConstant = "unable to inspect %s: %w"
	rootDirectoryNameConstant       = string(filepath.Separator)
	currentDirectoryNameConstant    = "."
)

// ErrFileSystemNotConfigured indicates a missing filesystem dependency.
var ErrFileSystemNotConfigured = errors.New("workspace inspector requires a filesystem")

// Inspector answers questions about the working directory.
type Inspector struct {
	fileSystem filesystem.FileSystem
}

// NewInspector constructs an Inspector.
func NewInspector(fileSystem filesystem.FileSystem) (*Inspector, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &Inspector{fileSystem: fileSystem}, nil
}

// IsRepositoryInitialized reports whether workingDirectory contains a .git directory.
// A .git file (worktree or submodule pointer) does not count.
func (inspector *Inspector) IsRepositoryInitialized(workingDirectory string) (bool, error) {
	markerPath := filepath.Join(workingDirectory, GitMetadataDirectoryName)
	markerInfo, statError := inspector.fileSystem.Stat(markerPath)
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf(inspectionErrorTemplateConstant, markerPath, statError)
	}
	return markerInfo.IsDir(), nil
}

// DirectoryBaseName returns the final element of the absolute working directory path.
func (inspector *Inspector) DirectoryBaseName(workingDirectory string) (string, error) {
	absolutePath, absoluteError := inspector.fileSystem.Abs(workingDirectory)
	if absoluteError != nil {
		return "", fmt.Errorf(inspectionErrorTemplateConstant, workingDirectory, absoluteError)
	}
	baseName := strings.TrimSpace(filepath.Base(absolutePath))
	if baseName == rootDirectoryNameConstant || baseName == currentDirectoryNameConstant {
		return "", nil
	}
	return baseName, nil
}
