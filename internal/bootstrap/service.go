package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ginit/internal/gitrepo"
	"github.com/temirov/ginit/internal/githubauth"
	"github.com/temirov/ginit/internal/ignorefile"
	"github.com/temirov/ginit/internal/prompt"
	"github.com/temirov/ginit/internal/remoterepo"
	"github.com/temirov/ginit/internal/ui"
)

const (
	bannerTitleConstant                  = "ginit"
	alreadyInitializedMessageConstant    = "Already a git repository!"
	authenticatedMessageConstant         = "Successfully authenticated!"
	creationFailureTemplateConstant      = "An error has occurred: %s"
	settingUpTitleConstant               = "Setting up the repository..."
	completedMessageConstant             = "All done!"
	cancelledNothingCreatedConstant      = "Cancelled. Nothing was created."
	cancelledRemoteOnlyTemplateConstant  = "Cancelled. %s was created on GitHub but the local repository was not set up."
	cancelledDuringSetupTemplateConstant = "Cancelled. %s was created on GitHub; local setup stopped after stage %s."
	inspectionFailureTemplateConstant    = "Unable to inspect the working directory: %s"
	ignoreFailureTemplateConstant        = "Unable to write the ignore file: %s"
	setupFailureTemplateConstant         = "Unable to set up the repository: %s"
	runStartedLogMessageConstant         = "bootstrap started"
	runFinishedLogMessageConstant        = "bootstrap finished"
	stepFailedLogMessageConstant         = "bootstrap step failed"
	tokenResolvedLogMessageConstant      = "token ready"
	repositoryCreatedLogMessageConstant  = "remote repository ready"
	logFieldWorkingDirectoryConstant     = "working_directory"
	logFieldOutcomeConstant              = "outcome"
	logFieldStepConstant                 = "step"
	logFieldTokenSourceConstant          = "token_source"
	logFieldRepositoryConstant           = "repository"
	stepNamePreconditionConstant         = "precondition"
	stepNameAuthenticationConstant       = "authentication"
	stepNameRepositoryCreationConstant   = "repository_creation"
	stepNameIgnoreFileConstant           = "ignore_file"
	stepNameLocalSetupConstant           = "local_setup"
	defaultRepositoryNameFailureConstant = "determine default repository name: %w"
)

// Outcome names how a run ended without failing.
type Outcome string

// Run outcomes.
const (
	OutcomeCompleted          Outcome = Outcome("completed")
	OutcomeAlreadyInitialized Outcome = Outcome("already_initialized")
	OutcomeCancelled          Outcome = Outcome("cancelled")
)

var (
	// ErrInspectorNotConfigured indicates a missing workspace inspector.
	ErrInspectorNotConfigured = errors.New("bootstrap service requires a workspace inspector")
	// ErrResolverNotConfigured indicates a missing token resolver.
	ErrResolverNotConfigured = errors.New("bootstrap service requires a token resolver")
	// ErrCreatorNotConfigured indicates a missing repository creator.
	ErrCreatorNotConfigured = errors.New("bootstrap service requires a repository creator")
	// ErrIgnoreBuilderNotConfigured indicates a missing ignore file builder.
	ErrIgnoreBuilderNotConfigured = errors.New("bootstrap service requires an ignore file builder")
	// ErrInitializerNotConfigured indicates a missing repository initializer.
	ErrInitializerNotConfigured = errors.New("bootstrap service requires a repository initializer")
	// ErrReporterNotConfigured indicates a missing console reporter.
	ErrReporterNotConfigured = errors.New("bootstrap service requires a reporter")
)

// WorkspaceInspector answers questions about the working directory.
type WorkspaceInspector interface {
	IsRepositoryInitialized(workingDirectory string) (bool, error)
	DirectoryBaseName(workingDirectory string) (string, error)
}

// TokenResolver produces an access token.
type TokenResolver interface {
	Resolve(executionContext context.Context) (githubauth.ResolvedToken, error)
}

// RepositoryCreator creates the remote repository.
type RepositoryCreator interface {
	Create(executionContext context.Context, token string, options remoterepo.Options) (remoterepo.Result, error)
}

// IgnoreFileBuilder writes the ignore file.
type IgnoreFileBuilder interface {
	Build(executionContext context.Context, workingDirectory string, options ignorefile.Options) (ignorefile.Result, error)
}

// RepositoryInitializer performs the local git setup.
type RepositoryInitializer interface {
	Setup(executionContext context.Context, workingDirectory string, remoteURL string, options gitrepo.Options) (gitrepo.Stage, error)
}

// Reporter prints user-facing messages.
type Reporter interface {
	Banner(title string)
	Success(message string)
	Failure(message string)
	Hint(message string)
}

// ProgressTracker shows progress around a blocking call.
type ProgressTracker interface {
	Track(executionContext context.Context, title string, action func(context.Context) error) error
}

// ServiceDependencies wires a Service. Logger and Progress are optional.
type ServiceDependencies struct {
	Logger        *zap.Logger
	Inspector     WorkspaceInspector
	Resolver      TokenResolver
	Creator       RepositoryCreator
	IgnoreBuilder IgnoreFileBuilder
	Initializer   RepositoryInitializer
	Reporter      Reporter
	Progress      ProgressTracker
}

// Options describes one run.
type Options struct {
	WorkingDirectory      string
	RepositoryName        string
	RepositoryDescription string
	Visibility            remoterepo.Visibility
	Organization          string
	RemoteProtocol        gitrepo.RemoteProtocol
	Ignore                ignorefile.Options
	Setup                 gitrepo.Options
}

// Result summarizes a run that did not fail.
type Result struct {
	Outcome     Outcome
	TokenSource githubauth.Source
	Repository  remoterepo.Result
	IgnoreFile  ignorefile.Result
	Stage       gitrepo.Stage
}

type flowState struct {
	options           Options
	token             githubauth.ResolvedToken
	repository        remoterepo.Result
	repositoryCreated bool
	ignoreFile        ignorefile.Result
	stage             gitrepo.Stage
	outcome           Outcome
	halted            bool
}

type flowStep struct {
	name string
	run  func(executionContext context.Context, state *flowState) error
}

// Service runs the bootstrap steps in order; the first failure stops the run.
type Service struct {
	logger        *zap.Logger
	inspector     WorkspaceInspector
	resolver      TokenResolver
	creator       RepositoryCreator
	ignoreBuilder IgnoreFileBuilder
	initializer   RepositoryInitializer
	reporter      Reporter
	progress      ProgressTracker
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	switch {
	case dependencies.Inspector == nil:
		return nil, ErrInspectorNotConfigured
	case dependencies.Resolver == nil:
		return nil, ErrResolverNotConfigured
	case dependencies.Creator == nil:
		return nil, ErrCreatorNotConfigured
	case dependencies.IgnoreBuilder == nil:
		return nil, ErrIgnoreBuilderNotConfigured
	case dependencies.Initializer == nil:
		return nil, ErrInitializerNotConfigured
	case dependencies.Reporter == nil:
		return nil, ErrReporterNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	progress := dependencies.Progress
	if progress == nil {
		progress = silentProgress{}
	}

	return &Service{
		logger:        logger,
		inspector:     dependencies.Inspector,
		resolver:      dependencies.Resolver,
		creator:       dependencies.Creator,
		ignoreBuilder: dependencies.IgnoreBuilder,
		initializer:   dependencies.Initializer,
		reporter:      dependencies.Reporter,
		progress:      progress,
	}, nil
}

// Run executes the flow. Failures are printed before being returned wrapped in ui.ReportedError.
// Cancelled prompts end the run with OutcomeCancelled and a nil error.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	state := &flowState{options: options, stage: gitrepo.StageUninitialized}
	service.reporter.Banner(bannerTitleConstant)
	service.logger.Info(runStartedLogMessageConstant, zap.String(logFieldWorkingDirectoryConstant, options.WorkingDirectory))

	for _, step := range service.steps() {
		stepError := step.run(executionContext, state)
		if stepError != nil {
			if isCancellation(executionContext, stepError) {
				service.reportCancellation(state)
				state.outcome = OutcomeCancelled
				break
			}
			service.logger.Debug(stepFailedLogMessageConstant, zap.String(logFieldStepConstant, step.name), zap.Error(stepError))
			return state.result(), ui.ReportedError{Cause: stepError}
		}
		if state.halted {
			break
		}
	}

	if len(state.outcome) == 0 {
		state.outcome = OutcomeCompleted
	}
	service.logger.Info(runFinishedLogMessageConstant, zap.String(logFieldOutcomeConstant, string(state.outcome)))
	return state.result(), nil
}

func (service *Service) steps() []flowStep {
	return []flowStep{
		{name: stepNamePreconditionConstant, run: service.checkPrecondition},
		{name: stepNameAuthenticationConstant, run: service.authenticate},
		{name: stepNameRepositoryCreationConstant, run: service.createRepository},
		{name: stepNameIgnoreFileConstant, run: service.buildIgnoreFile},
		{name: stepNameLocalSetupConstant, run: service.setUpRepository},
	}
}

func (service *Service) checkPrecondition(_ context.Context, state *flowState) error {
	initialized, inspectionError := service.inspector.IsRepositoryInitialized(state.options.WorkingDirectory)
	if inspectionError != nil {
		service.reporter.Failure(fmt.Sprintf(inspectionFailureTemplateConstant, inspectionError.Error()))
		return inspectionError
	}
	if initialized {
		service.reporter.Failure(alreadyInitializedMessageConstant)
		state.outcome = OutcomeAlreadyInitialized
		state.halted = true
	}
	return nil
}

func (service *Service) authenticate(executionContext context.Context, state *flowState) error {
	token, resolveError := service.resolver.Resolve(executionContext)
	if resolveError != nil {
		if !isCancellation(executionContext, resolveError) {
			service.reporter.Failure(resolveError.Error())
		}
		return resolveError
	}
	state.token = token
	service.logger.Debug(tokenResolvedLogMessageConstant, zap.String(logFieldTokenSourceConstant, string(token.Source)))
	service.reporter.Success(authenticatedMessageConstant)
	return nil
}

func (service *Service) createRepository(executionContext context.Context, state *flowState) error {
	defaultName := strings.TrimSpace(state.options.RepositoryName)
	if len(defaultName) == 0 {
		baseName, baseNameError := service.inspector.DirectoryBaseName(state.options.WorkingDirectory)
		if baseNameError != nil {
			wrappedError := fmt.Errorf(defaultRepositoryNameFailureConstant, baseNameError)
			service.reporter.Failure(fmt.Sprintf(creationFailureTemplateConstant, wrappedError.Error()))
			return wrappedError
		}
		defaultName = baseName
	}

	repository, createError := service.creator.Create(executionContext, state.token.Value, remoterepo.Options{
		DefaultName:        defaultName,
		DefaultDescription: strings.TrimSpace(state.options.RepositoryDescription),
		DefaultVisibility:  state.options.Visibility,
		Organization:       state.options.Organization,
		RemoteProtocol:     state.options.RemoteProtocol,
	})
	if createError != nil {
		if !isCancellation(executionContext, createError) {
			service.reporter.Failure(fmt.Sprintf(creationFailureTemplateConstant, createError.Error()))
		}
		return createError
	}

	state.repository = repository
	state.repositoryCreated = true
	service.logger.Debug(repositoryCreatedLogMessageConstant, zap.String(logFieldRepositoryConstant, repository.Repository.FullName))
	return nil
}

func (service *Service) buildIgnoreFile(executionContext context.Context, state *flowState) error {
	ignoreFile, buildError := service.ignoreBuilder.Build(executionContext, state.options.WorkingDirectory, state.options.Ignore)
	if buildError != nil {
		if !isCancellation(executionContext, buildError) {
			service.reporter.Failure(fmt.Sprintf(ignoreFailureTemplateConstant, buildError.Error()))
		}
		return buildError
	}
	state.ignoreFile = ignoreFile
	return nil
}

func (service *Service) setUpRepository(executionContext context.Context, state *flowState) error {
	setupOptions := state.options.Setup
	if len(strings.TrimSpace(setupOptions.IgnoreFileName)) == 0 {
		setupOptions.IgnoreFileName = state.options.Ignore.FileName
	}

	trackError := service.progress.Track(executionContext, settingUpTitleConstant, func(trackContext context.Context) error {
		stage, setupError := service.initializer.Setup(trackContext, state.options.WorkingDirectory, state.repository.RemoteURL, setupOptions)
		state.stage = stage
		return setupError
	})
	if trackError != nil {
		var setupError gitrepo.SetupError
		if errors.As(trackError, &setupError) {
			state.stage = setupError.Stage
		}
		if !isCancellation(executionContext, trackError) {
			service.reporter.Failure(fmt.Sprintf(setupFailureTemplateConstant, trackError.Error()))
		}
		return trackError
	}

	service.reporter.Success(completedMessageConstant)
	return nil
}

func (service *Service) reportCancellation(state *flowState) {
	switch {
	case !state.repositoryCreated:
		service.reporter.Hint(cancelledNothingCreatedConstant)
	case state.stage == gitrepo.StageUninitialized || len(state.stage) == 0:
		service.reporter.Hint(fmt.Sprintf(cancelledRemoteOnlyTemplateConstant, state.repository.Repository.FullName))
	default:
		service.reporter.Hint(fmt.Sprintf(cancelledDuringSetupTemplateConstant, state.repository.Repository.FullName, state.stage))
	}
}

func (state *flowState) result() Result {
	return Result{
		Outcome:     state.outcome,
		TokenSource: state.token.Source,
		Repository:  state.repository,
		IgnoreFile:  state.ignoreFile,
		Stage:       state.stage,
	}
}

func isCancellation(executionContext context.Context, err error) bool {
	if errors.Is(err, prompt.ErrCancelled) || errors.Is(err, context.Canceled) {
		return true
	}
	return executionContext.Err() != nil
}

type silentProgress struct{}

func (silentProgress) Track(executionContext context.Context, _ string, action func(context.Context) error) error {
	return action(executionContext)
}
