package githubauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ginit/internal/githubapi"
	"github.com/temirov/ginit/internal/preferences"
	"github.com/temirov/ginit/internal/prompt"
)

const (
	usernameFieldNameConstant             = "username"
	passwordFieldNameConstant             = "password"
	usernamePromptMessageConstant         = "Enter your GitHub username or e-mail address:"
	usernameValidationMessageConstant     = "Please enter your username or e-mail address"
	passwordPromptMessageConstant         = "Enter your password:"
	passwordValidationMessageConstant     = "Please enter password"
	authenticatingTitleConstant           = "Authenticating you, please wait..."
	unauthorizedMessageConstant           = "Couldn't log you in. Please try again."
	duplicateAuthorizationMessageConstant = "You already have an access token."
	tokenMissingMessageConstant           = "token was not returned"
	unknownTokenSourceTemplateConstant    = "unknown token source %q"
	loadStoredTokenTemplateConstant       = "load stored token: %w"
	persistTokenTemplateConstant          = "persist token: %w"
	tokenSourceFailureTemplateConstant    = "token source %s: %w"
	logFieldTokenSourceConstant           = "token_source"
	tokenResolvedLogMessageConstant       = "access token resolved"
	tokenSourceSkippedLogMessageConstant  = "token source failed"
)

// Source labels where a resolved token came from.
type Source string

// Token origins.
const (
	SourceStored   Source = Source("stored")
	SourcePassword Source = Source("password")
	SourceDevice   Source = Source("device")
)

var (
	// ErrTokenMissing indicates a successful issuance response that carried no token.
	ErrTokenMissing = errors.New(tokenMissingMessageConstant)
	// ErrStoreNotConfigured indicates the resolver was built without a preference store.
	ErrStoreNotConfigured = errors.New("token resolver requires a preference store")
	// ErrPromptNotConfigured indicates the resolver was built without a prompt runner.
	ErrPromptNotConfigured = errors.New("token resolver requires a prompt runner")
	// ErrIssuerNotConfigured indicates the resolver was built without a token issuer.
	ErrIssuerNotConfigured = errors.New("token resolver requires a token issuer")
)

// UnauthorizedError reports rejected credentials (HTTP 401, including a required second factor).
type UnauthorizedError struct {
	Cause error
}

func (unauthorizedError UnauthorizedError) Error() string {
	return unauthorizedMessageConstant
}

// Unwrap exposes the API error.
func (unauthorizedError UnauthorizedError) Unwrap() error {
	return unauthorizedError.Cause
}

// DuplicateAuthorizationError reports that GitHub already holds an authorization with the same note (HTTP 422).
type DuplicateAuthorizationError struct {
	Cause error
}

func (duplicateError DuplicateAuthorizationError) Error() string {
	return duplicateAuthorizationMessageConstant
}

// Unwrap exposes the API error.
func (duplicateError DuplicateAuthorizationError) Unwrap() error {
	return duplicateError.Cause
}

// UnknownTokenSourceError reports an unsupported github.token_sources entry.
type UnknownTokenSourceError struct {
	Name string
}

func (sourceError UnknownTokenSourceError) Error() string {
	return fmt.Sprintf(unknownTokenSourceTemplateConstant, sourceError.Name)
}

// ResolvedToken is an access token together with its origin.
type ResolvedToken struct {
	Value  string
	Source Source
}

// TokenIssuer exchanges credentials for a token.
type TokenIssuer interface {
	CreateAuthorization(executionContext context.Context, request githubapi.AuthorizationRequest) (string, error)
}

// DeviceTokenAuthorizer obtains a token without a password.
type DeviceTokenAuthorizer interface {
	Authorize(executionContext context.Context) (string, error)
}

// ProgressTracker shows progress around a blocking call.
type ProgressTracker interface {
	Track(executionContext context.Context, title string, action func(context.Context) error) error
}

// ResolverDependencies wires a Resolver. DeviceAuthorizer and Sources are optional.
type ResolverDependencies struct {
	Logger           *zap.Logger
	Store            preferences.Store
	Sources          []TokenSource
	Prompter         prompt.Runner
	Issuer           TokenIssuer
	DeviceAuthorizer DeviceTokenAuthorizer
	Progress         ProgressTracker
}

// ResolverSettings carries the issued token's scopes and note.
type ResolverSettings struct {
	Scopes []string
	Note   string
}

// Resolver produces an access token: stored first, then external sources, then a fresh login.
type Resolver struct {
	logger           *zap.Logger
	store            preferences.Store
	sources          []TokenSource
	prompter         prompt.Runner
	issuer           TokenIssuer
	deviceAuthorizer DeviceTokenAuthorizer
	progress         ProgressTracker
	settings         ResolverSettings
}

// NewResolver validates dependencies and constructs a Resolver.
func NewResolver(dependencies ResolverDependencies, settings ResolverSettings) (*Resolver, error) {
	if dependencies.Store == nil {
		return nil, ErrStoreNotConfigured
	}
	if dependencies.DeviceAuthorizer == nil {
		if dependencies.Prompter == nil {
			return nil, ErrPromptNotConfigured
		}
		if dependencies.Issuer == nil {
			return nil, ErrIssuerNotConfigured
		}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	progress := dependencies.Progress
	if progress == nil {
		progress = silentProgress{}
	}
	return &Resolver{
		logger:           logger,
		store:            dependencies.Store,
		sources:          dependencies.Sources,
		prompter:         dependencies.Prompter,
		issuer:           dependencies.Issuer,
		deviceAuthorizer: dependencies.DeviceAuthorizer,
		progress:         progress,
		settings:         settings,
	}, nil
}

// Resolve returns a usable token. Newly issued tokens are persisted before returning.
func (resolver *Resolver) Resolve(executionContext context.Context) (ResolvedToken, error) {
	storedToken, found, loadError := resolver.store.Load(executionContext)
	if loadError != nil {
		return ResolvedToken{}, fmt.Errorf(loadStoredTokenTemplateConstant, loadError)
	}
	if found {
		return resolver.resolved(storedToken, SourceStored), nil
	}

	for _, source := range resolver.sources {
		sourceToken, sourceFound, sourceError := source.Token(executionContext)
		if sourceError != nil {
			resolver.logger.Warn(tokenSourceSkippedLogMessageConstant, zap.String(logFieldTokenSourceConstant, source.Name()), zap.Error(fmt.Errorf(tokenSourceFailureTemplateConstant, source.Name(), sourceError)))
			continue
		}
		if sourceFound {
			return resolver.resolved(sourceToken, Source(source.Name())), nil
		}
	}

	if resolver.deviceAuthorizer != nil {
		deviceToken, deviceError := resolver.deviceAuthorizer.Authorize(executionContext)
		if deviceError != nil {
			return ResolvedToken{}, deviceError
		}
		return resolver.persist(executionContext, deviceToken, SourceDevice)
	}

	issuedToken, issueError := resolver.issueWithPassword(executionContext)
	if issueError != nil {
		return ResolvedToken{}, issueError
	}
	return resolver.persist(executionContext, issuedToken, SourcePassword)
}

func (resolver *Resolver) issueWithPassword(executionContext context.Context) (string, error) {
	answers, promptError := resolver.prompter.Run(executionContext, credentialFields())
	if promptError != nil {
		return "", promptError
	}

	var issuedToken string
	trackError := resolver.progress.Track(executionContext, authenticatingTitleConstant, func(trackContext context.Context) error {
		token, issueError := resolver.issuer.CreateAuthorization(trackContext, githubapi.AuthorizationRequest{
			Username: answers.Value(usernameFieldNameConstant),
			Password: answers.Value(passwordFieldNameConstant),
			Scopes:   resolver.settings.Scopes,
			Note:     resolver.settings.Note,
		})
		issuedToken = token
		return issueError
	})
	if trackError != nil {
		return "", classifyIssueError(trackError)
	}
	return issuedToken, nil
}

func (resolver *Resolver) persist(executionContext context.Context, token string, source Source) (ResolvedToken, error) {
	if len(strings.TrimSpace(token)) == 0 {
		return ResolvedToken{}, ErrTokenMissing
	}
	if saveError := resolver.store.Save(executionContext, token); saveError != nil {
		return ResolvedToken{}, fmt.Errorf(persistTokenTemplateConstant, saveError)
	}
	return resolver.resolved(token, source), nil
}

func (resolver *Resolver) resolved(token string, source Source) ResolvedToken {
	resolver.logger.Debug(tokenResolvedLogMessageConstant, zap.String(logFieldTokenSourceConstant, string(source)))
	return ResolvedToken{Value: token, Source: source}
}

func classifyIssueError(issueError error) error {
	switch githubapi.StatusCode(issueError) {
	case http.StatusUnauthorized:
		return UnauthorizedError{Cause: issueError}
	case http.StatusUnprocessableEntity:
		return DuplicateAuthorizationError{Cause: issueError}
	default:
		return issueError
	}
}

func credentialFields() []prompt.Field {
	return []prompt.Field{
		{
			Name:      usernameFieldNameConstant,
			Kind:      prompt.KindText,
			Message:   usernamePromptMessageConstant,
			Validator: prompt.RequireNonEmpty(usernameValidationMessageConstant),
		},
		{
			Name:      passwordFieldNameConstant,
			Kind:      prompt.KindSecret,
			Message:   passwordPromptMessageConstant,
			Validator: prompt.RequireNonEmpty(passwordValidationMessageConstant),
		},
	}
}

// NewTokenSources builds the external sources named in configuration, in order.
func NewTokenSources(names []string, host string) ([]TokenSource, error) {
	sources := make([]TokenSource, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "":
			continue
		case SourceNameEnvironment:
			sources = append(sources, NewEnvironmentTokenSource())
		case SourceNameGitHubCLI:
			sources = append(sources, NewGitHubCLITokenSource(host))
		default:
			return nil, UnknownTokenSourceError{Name: name}
		}
	}
	return sources, nil
}

type silentProgress struct{}

func (silentProgress) Track(executionContext context.Context, _ string, action func(context.Context) error) error {
	return action(executionContext)
}
