package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v82/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	authorizationsEndpointConstant          = "authorizations"
	usernameFieldNameConstant               = "username"
	passwordFieldNameConstant               = "password"
	tokenFieldNameConstant                  = "token"
	repositoryNameFieldNameConstant         = "name"
	apiURLFieldNameConstant                 = "api_url"
	requiredValueMessageConstant            = "value required"
	invalidURLMessageTemplateConstant       = "invalid url: %v"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	trailingSlashConstant                   = "/"
	createAuthorizationOperationConstant    = OperationName("CreateAuthorization")
	createRepositoryOperationConstant       = OperationName("CreateRepository")
	logFieldOperationConstant               = "operation"
	logFieldStatusCodeConstant              = "status_code"
	logFieldRepositoryConstant              = "repository"
	logFieldOrganizationConstant            = "organization"
	requestStartedLogMessageConstant        = "github request"
	requestFailedLogMessageConstant         = "github request failed"
	requestSucceededLogMessageConstant      = "github request succeeded"
)

// OperationName describes a named GitHub API call supported by the client.
type OperationName string

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps GitHub API failures. StatusCode is zero when no response was received.
type OperationError struct {
	Operation  OperationName
	StatusCode int
	Cause      error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// AuthorizationRequest describes a personal access token to issue.
type AuthorizationRequest struct {
	Username string
	Password string
	Scopes   []string
	Note     string
}

// RepositoryRequest describes a repository to create. An empty Organization targets the authenticated user.
type RepositoryRequest struct {
	Name         string
	Description  string
	Private      bool
	Organization string
}

// Repository holds the created repository's addresses.
type Repository struct {
	FullName string
	HTMLURL  string
	SSHURL   string
	CloneURL string
}

type authorizationPayload struct {
	Scopes []string `json:"scopes"`
	Note   string   `json:"note"`
}

type authorizationResponse struct {
	Token string `json:"token"`
}

// Client issues GitHub REST calls through go-github.
type Client struct {
	logger  *zap.Logger
	baseURL *url.URL
}

// NewClient constructs a client. An empty apiURL targets api.github.com; otherwise it names the REST root,
// for example https://github.example.com/api/v3/.
func NewClient(logger *zap.Logger, apiURL string) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := &Client{logger: logger}

	trimmedURL := strings.TrimSpace(apiURL)
	if len(trimmedURL) == 0 {
		return client, nil
	}
	if !strings.HasSuffix(trimmedURL, trailingSlashConstant) {
		trimmedURL += trailingSlashConstant
	}
	parsedURL, parseError := url.Parse(trimmedURL)
	if parseError != nil || len(parsedURL.Scheme) == 0 || len(parsedURL.Host) == 0 {
		return nil, InvalidInputError{FieldName: apiURLFieldNameConstant, Message: fmt.Sprintf(invalidURLMessageTemplateConstant, apiURL)}
	}
	client.baseURL = parsedURL
	return client, nil
}

// CreateAuthorization exchanges username and password for a new personal access token via POST /authorizations.
func (client *Client) CreateAuthorization(executionContext context.Context, request AuthorizationRequest) (string, error) {
	if len(strings.TrimSpace(request.Username)) == 0 {
		return "", InvalidInputError{FieldName: usernameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(request.Password) == 0 {
		return "", InvalidInputError{FieldName: passwordFieldNameConstant, Message: requiredValueMessageConstant}
	}

	basicAuthTransport := &github.BasicAuthTransport{
		Username: strings.TrimSpace(request.Username),
		Password: request.Password,
	}
	githubClient := client.newGitHubClient(basicAuthTransport.Client())

	apiRequest, requestError := githubClient.NewRequest(http.MethodPost, authorizationsEndpointConstant, authorizationPayload{Scopes: request.Scopes, Note: request.Note})
	if requestError != nil {
		return "", OperationError{Operation: createAuthorizationOperationConstant, Cause: requestError}
	}

	client.logger.Debug(requestStartedLogMessageConstant, zap.String(logFieldOperationConstant, string(createAuthorizationOperationConstant)))

	var response authorizationResponse
	_, doError := githubClient.Do(executionContext, apiRequest, &response)
	if doError != nil {
		return "", client.operationFailure(createAuthorizationOperationConstant, doError)
	}

	client.logger.Debug(requestSucceededLogMessageConstant, zap.String(logFieldOperationConstant, string(createAuthorizationOperationConstant)))
	return response.Token, nil
}

// CreateRepository creates a repository owned by the token's user or by request.Organization.
func (client *Client) CreateRepository(executionContext context.Context, token string, request RepositoryRequest) (Repository, error) {
	if len(strings.TrimSpace(token)) == 0 {
		return Repository{}, InvalidInputError{FieldName: tokenFieldNameConstant, Message: requiredValueMessageConstant}
	}
	repositoryName := strings.TrimSpace(request.Name)
	if len(repositoryName) == 0 {
		return Repository{}, InvalidInputError{FieldName: repositoryNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	githubClient := client.newGitHubClient(oauth2.NewClient(executionContext, tokenSource))

	organization := strings.TrimSpace(request.Organization)
	client.logger.Debug(
		requestStartedLogMessageConstant,
		zap.String(logFieldOperationConstant, string(createRepositoryOperationConstant)),
		zap.String(logFieldRepositoryConstant, repositoryName),
		zap.String(logFieldOrganizationConstant, organization),
	)

	repositoryDescriptor := &github.Repository{
		Name:    github.Ptr(repositoryName),
		Private: github.Ptr(request.Private),
	}
	if description := strings.TrimSpace(request.Description); len(description) > 0 {
		repositoryDescriptor.Description = github.Ptr(description)
	}

	createdRepository, _, createError := githubClient.Repositories.Create(executionContext, organization, repositoryDescriptor)
	if createError != nil {
		return Repository{}, client.operationFailure(createRepositoryOperationConstant, createError)
	}

	client.logger.Debug(
		requestSucceededLogMessageConstant,
		zap.String(logFieldOperationConstant, string(createRepositoryOperationConstant)),
		zap.String(logFieldRepositoryConstant, createdRepository.GetFullName()),
	)
	return Repository{
		FullName: createdRepository.GetFullName(),
		HTMLURL:  createdRepository.GetHTMLURL(),
		SSHURL:   createdRepository.GetSSHURL(),
		CloneURL: createdRepository.GetCloneURL(),
	}, nil
}

func (client *Client) newGitHubClient(httpClient *http.Client) *github.Client {
	githubClient := github.NewClient(httpClient)
	if client.baseURL != nil {
		baseURL := *client.baseURL
		githubClient.BaseURL = &baseURL
	}
	return githubClient
}

func (client *Client) operationFailure(operation OperationName, cause error) error {
	statusCode := StatusCode(cause)
	client.logger.Debug(
		requestFailedLogMessageConstant,
		zap.String(logFieldOperationConstant, string(operation)),
		zap.Int(logFieldStatusCodeConstant, statusCode),
		zap.Error(cause),
	)
	return OperationError{Operation: operation, StatusCode: statusCode, Cause: cause}
}

// StatusCode extracts the HTTP status carried by a go-github error, or zero.
func StatusCode(err error) int {
	var operationError OperationError
	if errors.As(err, &operationError) && operationError.StatusCode != 0 {
		return operationError.StatusCode
	}
	var twoFactorError *github.TwoFactorAuthError
	if errors.As(err, &twoFactorError) {
		return http.StatusUnauthorized
	}
	var rateLimitError *github.RateLimitError
	if errors.As(err, &rateLimitError) && rateLimitError.Response != nil {
		return rateLimitError.Response.StatusCode
	}
	var errorResponse *github.ErrorResponse
	if errors.As(err, &errorResponse) && errorResponse.Response != nil {
		return errorResponse.Response.StatusCode
	}
	return 0
}
