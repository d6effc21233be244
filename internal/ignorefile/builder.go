package ignorefile

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ginit/internal/filesystem"
	"github.com/temirov/ginit/internal/prompt"
)

const (
	// DefaultFileNameConstant is the ignore file written when none is configured.
	DefaultFileNameConstant = ".gitignore"

	gitMetadataDirectoryNameConstant = ".git"
	ignoreFieldNameConstant          = "ignore"
	ignorePromptMessageConstant      = "Select the files and/or folders you wish to ignore:"
	entrySeparatorConstant           = "\n"
	ignoreFilePermissionsConstant    = 0o644
	listEntriesErrorTemplateConstant = "list %s: %w"
	writeFileErrorTemplateConstant   = "write %s: %w"
	logFieldPathConstant             = "path"
	logFieldEntriesConstant          = "entries"
	ignoreWrittenLogMessageConstant  = "ignore file written"
	ignoreTouchedLogMessageConstant  = "empty ignore file ensured"
)

var (
	// ErrFileSystemNotConfigured indicates the builder was built without a filesystem.
	ErrFileSystemNotConfigured = errors.New("ignore file builder requires a filesystem")
	// ErrPromptNotConfigured indicates the builder was built without a prompt runner.
	ErrPromptNotConfigured = errors.New("ignore file builder requires a prompt runner")
)

// Options locates the ignore file and seeds the selection.
type Options struct {
	FileName          string
	DefaultSelections []string
}

// Result reports what was written.
type Result struct {
	Path    string
	Entries []string
}

// Builder lets the user pick directory entries to ignore and writes the ignore file.
type Builder struct {
	logger     *zap.Logger
	fileSystem filesystem.FileSystem
	prompter   prompt.Runner
}

// NewBuilder validates dependencies and constructs a Builder.
func NewBuilder(logger *zap.Logger, fileSystem filesystem.FileSystem, prompter prompt.Runner) (*Builder, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if prompter == nil {
		return nil, ErrPromptNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger, fileSystem: fileSystem, prompter: prompter}, nil
}

// Build writes the selected entries newline-joined, or ensures an empty file when nothing is selected.
// The prompt is skipped when the directory has no candidate entries.
func (builder *Builder) Build(executionContext context.Context, workingDirectory string, options Options) (Result, error) {
	fileName := strings.TrimSpace(options.FileName)
	if len(fileName) == 0 {
		fileName = DefaultFileNameConstant
	}
	ignoreFilePath := filepath.Join(workingDirectory, fileName)

	candidates, listError := builder.candidates(workingDirectory, fileName)
	if listError != nil {
		return Result{}, listError
	}

	var selections []string
	if len(candidates) > 0 {
		answers, promptError := builder.prompter.Run(executionContext, []prompt.Field{{
			Name:              ignoreFieldNameConstant,
			Kind:              prompt.KindMultiChoice,
			Message:           ignorePromptMessageConstant,
			Choices:           candidates,
			DefaultSelections: options.DefaultSelections,
		}})
		if promptError != nil {
			return Result{}, promptError
		}
		selections = answers.Selections(ignoreFieldNameConstant)
	}

	if len(selections) == 0 {
		if touchError := builder.fileSystem.Touch(ignoreFilePath); touchError != nil {
			return Result{}, fmt.Errorf(writeFileErrorTemplateConstant, ignoreFilePath, touchError)
		}
		builder.logger.Debug(ignoreTouchedLogMessageConstant, zap.String(logFieldPathConstant, ignoreFilePath))
		return Result{Path: ignoreFilePath}, nil
	}

	content := strings.Join(selections, entrySeparatorConstant)
	if writeError := builder.fileSystem.WriteFile(ignoreFilePath, []byte(content), ignoreFilePermissionsConstant); writeError != nil {
		return Result{}, fmt.Errorf(writeFileErrorTemplateConstant, ignoreFilePath, writeError)
	}
	builder.logger.Debug(ignoreWrittenLogMessageConstant, zap.String(logFieldPathConstant, ignoreFilePath), zap.Strings(logFieldEntriesConstant, selections))
	return Result{Path: ignoreFilePath, Entries: selections}, nil
}

func (builder *Builder) candidates(workingDirectory string, fileName string) ([]string, error) {
	entries, readError := builder.fileSystem.ReadDir(workingDirectory)
	if readError != nil {
		return nil, fmt.Errorf(listEntriesErrorTemplateConstant, workingDirectory, readError)
	}
	candidates := make([]string, 0, len(entries))
	for _, entry := range entries {
		entryName := entry.Name()
		if entryName == gitMetadataDirectoryNameConstant || entryName == fileName {
			continue
		}
		candidates = append(candidates, entryName)
	}
	return candidates, nil
}
