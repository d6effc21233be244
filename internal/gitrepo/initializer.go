package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ginit/internal/execshell"
)

const (
	gitInitArgumentConstant              = "init"
	gitInitialBranchFlagTemplateConstant = "--initial-branch=%s"
	gitAddArgumentConstant               = "add"
	gitAddEverythingPathspecConstant     = "./*"
	gitCommitArgumentConstant            = "commit"
	gitMessageFlagConstant               = "-m"
	gitRemoteArgumentConstant            = "remote"
	gitPushArgumentConstant              = "push"
	setupErrorTemplateConstant           = "repository setup stopped after %s: %v"
	remoteURLRequiredMessageConstant     = "remote url required"
	logFieldStageConstant                = "stage"
	logFieldRemoteHostConstant           = "remote_host"
	logFieldRemoteRepositoryConstant     = "remote_repository"
	logFieldBranchConstant               = "branch"
	stageReachedLogMessageConstant       = "repository setup stage reached"
	remoteUnparsedLogMessageConstant     = "remote url not recognized"
	setupStartedLogMessageConstant       = "repository setup started"
	defaultIgnoreFileNameConstant        = ".gitignore"
	defaultBranchNameConstant            = "master"
	defaultRemoteNameConstant            = "origin"
	defaultCommitMessageConstant         = "Initial commit"
)

// Stage is a step of local repository setup. Stages advance strictly in declaration order.
type Stage string

// Setup stages.
const (
	StageUninitialized Stage = Stage("uninitialized")
	StageInitialized   Stage = Stage("initialized")
	StageStagedIgnore  Stage = Stage("staged-ignore")
	StageStagedAll     Stage = Stage("staged-all")
	StageCommitted     Stage = Stage("committed")
	StageRemoteAdded   Stage = Stage("remote-added")
	StagePushed        Stage = Stage("pushed")
	StageFailed        Stage = Stage("failed")
)

var (
	// ErrExecutorNotConfigured indicates the initializer was built without a git executor.
	ErrExecutorNotConfigured = errors.New("repository initializer requires a git executor")
)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// SetupError reports the last stage completed before a git step failed. Nothing is rolled back.
type SetupError struct {
	Stage Stage
	Cause error
}

// Error describes where setup stopped.
func (setupError SetupError) Error() string {
	return fmt.Sprintf(setupErrorTemplateConstant, setupError.Stage, setupError.Cause)
}

// Unwrap exposes the git failure.
func (setupError SetupError) Unwrap() error {
	return setupError.Cause
}

// Options names the files, branch, remote, and commit message used during setup. Blank values use git's classic defaults.
type Options struct {
	IgnoreFileName string
	Branch         string
	RemoteName     string
	CommitMessage  string
}

func (options Options) withDefaults() Options {
	resolved := Options{
		IgnoreFileName: strings.TrimSpace(options.IgnoreFileName),
		Branch:         strings.TrimSpace(options.Branch),
		RemoteName:     strings.TrimSpace(options.RemoteName),
		CommitMessage:  strings.TrimSpace(options.CommitMessage),
	}
	if len(resolved.IgnoreFileName) == 0 {
		resolved.IgnoreFileName = defaultIgnoreFileNameConstant
	}
	if len(resolved.Branch) == 0 {
		resolved.Branch = defaultBranchNameConstant
	}
	if len(resolved.RemoteName) == 0 {
		resolved.RemoteName = defaultRemoteNameConstant
	}
	if len(resolved.CommitMessage) == 0 {
		resolved.CommitMessage = defaultCommitMessageConstant
	}
	return resolved
}

type setupStep struct {
	arguments []string
	reaches   Stage
}

// Initializer performs the first commit and push of a new repository.
type Initializer struct {
	logger   *zap.Logger
	executor GitExecutor
}

// NewInitializer validates dependencies and constructs an Initializer.
func NewInitializer(logger *zap.Logger, executor GitExecutor) (*Initializer, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Initializer{logger: logger, executor: executor}, nil
}

// Setup runs init, add ignore file, add everything, commit, remote add, and push in workingDirectory.
// It returns the final stage: StagePushed on success, StageFailed alongside a SetupError otherwise.
func (initializer *Initializer) Setup(executionContext context.Context, workingDirectory string, remoteURL string, options Options) (Stage, error) {
	trimmedRemoteURL := strings.TrimSpace(remoteURL)
	if len(trimmedRemoteURL) == 0 {
		return StageFailed, SetupError{Stage: StageUninitialized, Cause: errors.New(remoteURLRequiredMessageConstant)}
	}
	resolvedOptions := options.withDefaults()
	initializer.logRemote(trimmedRemoteURL, resolvedOptions.Branch)

	currentStage := StageUninitialized
	for _, step := range buildSetupSteps(trimmedRemoteURL, resolvedOptions) {
		_, executionError := initializer.executor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:        step.arguments,
			WorkingDirectory: workingDirectory,
		})
		if executionError != nil {
			return StageFailed, SetupError{Stage: currentStage, Cause: executionError}
		}
		currentStage = step.reaches
		initializer.logger.Debug(stageReachedLogMessageConstant, zap.String(logFieldStageConstant, string(currentStage)))
	}
	return currentStage, nil
}

func buildSetupSteps(remoteURL string, options Options) []setupStep {
	return []setupStep{
		{arguments: []string{gitInitArgumentConstant, fmt.Sprintf(gitInitialBranchFlagTemplateConstant, options.Branch)}, reaches: StageInitialized},
		{arguments: []string{gitAddArgumentConstant, options.IgnoreFileName}, reaches: StageStagedIgnore},
		{arguments: []string{gitAddArgumentConstant, gitAddEverythingPathspecConstant}, reaches: StageStagedAll},
		{arguments: []string{gitCommitArgumentConstant, gitMessageFlagConstant, options.CommitMessage}, reaches: StageCommitted},
		{arguments: []string{gitRemoteArgumentConstant, gitAddArgumentConstant, options.RemoteName, remoteURL}, reaches: StageRemoteAdded},
		{arguments: []string{gitPushArgumentConstant, options.RemoteName, options.Branch}, reaches: StagePushed},
	}
}

func (initializer *Initializer) logRemote(remoteURL string, branch string) {
	parsedRemote, parseError := ParseRemoteURL(remoteURL)
	if parseError != nil {
		initializer.logger.Debug(remoteUnparsedLogMessageConstant, zap.Error(parseError))
		return
	}
	initializer.logger.Info(
		setupStartedLogMessageConstant,
		zap.String(logFieldRemoteHostConstant, parsedRemote.Host),
		zap.String(logFieldRemoteRepositoryConstant, parsedRemote.Slug()),
		zap.String(logFieldBranchConstant, branch),
	)
}
