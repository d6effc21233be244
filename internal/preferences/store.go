package preferences

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	pathutils "github.com/temirov/ginit/internal/utils/path"
)

const (
	// TokenKeyConstant names the preference entry that holds the GitHub access token.
	TokenKeyConstant = "github.token"

	storeErrorTemplateConstant                      = "preference store %s failed: %v"
	unsupportedBackendTemplateConstant              = "unsupported preference backend %q"
	defaultFileNameConstant                         = "preferences.db"
	userConfigurationDirectoryErrorTemplateConstant = "resolve preference directory: %w"
)

// Backend identifies where preferences are persisted.
type Backend string

// Supported backends.
const (
	BackendFile    Backend = Backend("file")
	BackendKeyring Backend = Backend("keyring")
)

// Operation names a preference store action for error reporting.
type Operation string

const (
	operationLoad   = Operation("load")
	operationSave   = Operation("save")
	operationDelete = Operation("delete")
	operationOpen   = Operation("open")
)

// Store persists the access token between runs.
type Store interface {
	// Load returns the stored token and whether one was present.
	Load(executionContext context.Context) (string, bool, error)
	// Save replaces the stored token.
	Save(executionContext context.Context, token string) error
	// Delete removes the stored token and reports whether one existed.
	Delete(executionContext context.Context) (bool, error)
}

// StoreError wraps a backend failure.
type StoreError struct {
	Operation Operation
	Cause     error
}

// Error describes the failed operation.
func (storeError StoreError) Error() string {
	return fmt.Sprintf(storeErrorTemplateConstant, storeError.Operation, storeError.Cause)
}

// Unwrap exposes the backend error.
func (storeError StoreError) Unwrap() error {
	return storeError.Cause
}

// UnsupportedBackendError reports an unknown preferences.backend value.
type UnsupportedBackendError struct {
	Backend string
}

func (backendError UnsupportedBackendError) Error() string {
	return fmt.Sprintf(unsupportedBackendTemplateConstant, backendError.Backend)
}

// Configuration selects and locates the preference backend.
type Configuration struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// Sanitize normalizes configuration values.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.Backend = strings.ToLower(strings.TrimSpace(configuration.Backend))
	if len(sanitized.Backend) == 0 {
		sanitized.Backend = string(BackendFile)
	}
	sanitized.Path = strings.TrimSpace(configuration.Path)
	return sanitized
}

// UserConfigDirectoryResolver returns the per-user configuration directory.
type UserConfigDirectoryResolver func() (string, error)

// OpenStore builds the store selected by configuration for the named application.
func OpenStore(configuration Configuration, applicationName string, resolveUserConfigDirectory UserConfigDirectoryResolver) (Store, error) {
	sanitized := configuration.Sanitize()
	switch Backend(sanitized.Backend) {
	case BackendKeyring:
		return NewKeyringStore(applicationName), nil
	case BackendFile:
		storePath, pathError := resolveFilePath(sanitized.Path, applicationName, resolveUserConfigDirectory)
		if pathError != nil {
			return nil, pathError
		}
		return NewBoltStore(storePath, applicationName), nil
	default:
		return nil, UnsupportedBackendError{Backend: sanitized.Backend}
	}
}

func resolveFilePath(configuredPath string, applicationName string, resolveUserConfigDirectory UserConfigDirectoryResolver) (string, error) {
	if len(configuredPath) > 0 {
		return pathutils.NewHomeExpander().Expand(configuredPath), nil
	}
	userConfigurationDirectory, directoryError := resolveUserConfigDirectory()
	if directoryError != nil {
		return "", fmt.Errorf(userConfigurationDirectoryErrorTemplateConstant, directoryError)
	}
	return filepath.Join(userConfigurationDirectory, applicationName, defaultFileNameConstant), nil
}
