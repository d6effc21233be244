package remoterepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ginit/internal/githubapi"
	"github.com/temirov/ginit/internal/gitrepo"
	"github.com/temirov/ginit/internal/prompt"
)

const (
	nameFieldNameConstant                 = "name"
	descriptionFieldNameConstant          = "description"
	visibilityFieldNameConstant           = "visibility"
	namePromptMessageConstant             = "Enter a name for the repository:"
	nameValidationMessageConstant         = "Please enter a name for the repository"
	descriptionPromptMessageConstant      = "Optionally enter a description of the repository:"
	visibilityPromptMessageConstant       = "Public or private:"
	creatingTitleConstant                 = "Creating remote repository..."
	missingCloneURLTemplateConstant       = "repository %s was created without a %s clone url"
	unsupportedVisibilityTemplateConstant = "unsupported visibility %q"
	logFieldRepositoryConstant            = "repository"
	logFieldRemoteURLConstant             = "remote_url"
	repositoryCreatedLogMessageConstant   = "remote repository created"
)

// Visibility selects who can see the repository.
type Visibility string

// Supported visibilities.
const (
	VisibilityPublic  Visibility = Visibility("public")
	VisibilityPrivate Visibility = Visibility("private")
)

var (
	// ErrPromptNotConfigured indicates the creator was built without a prompt runner.
	ErrPromptNotConfigured = errors.New("repository creator requires a prompt runner")
	// ErrClientNotConfigured indicates the creator was built without an API client.
	ErrClientNotConfigured = errors.New("repository creator requires a GitHub client")
)

// VisibilityChoices lists the visibility options in prompt order.
func VisibilityChoices() []string {
	return []string{string(VisibilityPublic), string(VisibilityPrivate)}
}

// ParseVisibility validates a visibility value; blank yields public.
func ParseVisibility(value string) (Visibility, error) {
	switch Visibility(strings.ToLower(strings.TrimSpace(value))) {
	case "", VisibilityPublic:
		return VisibilityPublic, nil
	case VisibilityPrivate:
		return VisibilityPrivate, nil
	default:
		return "", fmt.Errorf(unsupportedVisibilityTemplateConstant, value)
	}
}

// RepositoryClient creates repositories on GitHub.
type RepositoryClient interface {
	CreateRepository(executionContext context.Context, token string, request githubapi.RepositoryRequest) (githubapi.Repository, error)
}

// ProgressTracker shows progress around a blocking call.
type ProgressTracker interface {
	Track(executionContext context.Context, title string, action func(context.Context) error) error
}

// Options seeds the prompts and selects the remote.
type Options struct {
	DefaultName        string
	DefaultDescription string
	DefaultVisibility  Visibility
	Organization       string
	RemoteProtocol     gitrepo.RemoteProtocol
}

// Result describes the created repository and the URL to push to.
type Result struct {
	Repository githubapi.Repository
	RemoteURL  string
}

// Creator asks for the repository details and creates it.
type Creator struct {
	logger   *zap.Logger
	prompter prompt.Runner
	client   RepositoryClient
	progress ProgressTracker
}

// NewCreator validates dependencies and constructs a Creator. logger and progress may be nil.
func NewCreator(logger *zap.Logger, prompter prompt.Runner, client RepositoryClient, progress ProgressTracker) (*Creator, error) {
	if prompter == nil {
		return nil, ErrPromptNotConfigured
	}
	if client == nil {
		return nil, ErrClientNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if progress == nil {
		progress = silentProgress{}
	}
	return &Creator{logger: logger, prompter: prompter, client: client, progress: progress}, nil
}

// Create prompts for name, description, and visibility, then creates the repository. Nothing is retried.
func (creator *Creator) Create(executionContext context.Context, token string, options Options) (Result, error) {
	answers, promptError := creator.prompter.Run(executionContext, repositoryFields(options))
	if promptError != nil {
		return Result{}, promptError
	}

	request := githubapi.RepositoryRequest{
		Name:         strings.TrimSpace(answers.Value(nameFieldNameConstant)),
		Description:  strings.TrimSpace(answers.Value(descriptionFieldNameConstant)),
		Private:      Visibility(answers.Value(visibilityFieldNameConstant)) == VisibilityPrivate,
		Organization: strings.TrimSpace(options.Organization),
	}

	var repository githubapi.Repository
	trackError := creator.progress.Track(executionContext, creatingTitleConstant, func(trackContext context.Context) error {
		createdRepository, createError := creator.client.CreateRepository(trackContext, token, request)
		repository = createdRepository
		return createError
	})
	if trackError != nil {
		return Result{}, trackError
	}

	remoteURL, selectError := selectRemoteURL(repository, options.RemoteProtocol)
	if selectError != nil {
		return Result{}, selectError
	}

	creator.logger.Info(repositoryCreatedLogMessageConstant, zap.String(logFieldRepositoryConstant, repository.FullName), zap.String(logFieldRemoteURLConstant, remoteURL))
	return Result{Repository: repository, RemoteURL: remoteURL}, nil
}

func selectRemoteURL(repository githubapi.Repository, protocol gitrepo.RemoteProtocol) (string, error) {
	if len(protocol) == 0 {
		protocol = gitrepo.RemoteProtocolSSH
	}
	var remoteURL string
	switch protocol {
	case gitrepo.RemoteProtocolSSH:
		remoteURL = repository.SSHURL
	case gitrepo.RemoteProtocolHTTPS:
		remoteURL = repository.CloneURL
	default:
		return "", gitrepo.UnsupportedProtocolError{Protocol: protocol}
	}
	if len(strings.TrimSpace(remoteURL)) == 0 {
		return "", fmt.Errorf(missingCloneURLTemplateConstant, repository.FullName, protocol)
	}
	return remoteURL, nil
}

func repositoryFields(options Options) []prompt.Field {
	defaultVisibility := options.DefaultVisibility
	if len(defaultVisibility) == 0 {
		defaultVisibility = VisibilityPublic
	}
	return []prompt.Field{
		{
			Name:         nameFieldNameConstant,
			Kind:         prompt.KindText,
			Message:      namePromptMessageConstant,
			DefaultValue: strings.TrimSpace(options.DefaultName),
			Validator:    prompt.RequireNonEmpty(nameValidationMessageConstant),
		},
		{
			Name:         descriptionFieldNameConstant,
			Kind:         prompt.KindText,
			Message:      descriptionPromptMessageConstant,
			DefaultValue: strings.TrimSpace(options.DefaultDescription),
		},
		{
			Name:         visibilityFieldNameConstant,
			Kind:         prompt.KindSingleChoice,
			Message:      visibilityPromptMessageConstant,
			DefaultValue: string(defaultVisibility),
			Choices:      VisibilityChoices(),
		},
	}
}

type silentProgress struct{}

func (silentProgress) Track(executionContext context.Context, _ string, action func(context.Context) error) error {
	return action(executionContext)
}
