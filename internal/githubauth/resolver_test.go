package githubauth_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/ginit/internal/githubapi"
	"github.com/temirov/ginit/internal/githubauth"
	"github.com/temirov/ginit/internal/prompt"
)

const (
	testStoredTokenConstant = "gho_stored"
	testIssuedTokenConstant = "gho_issued"
	testUsernameConstant    = "octo@example.com"
	testPasswordConstant    = "hunter2"
	testNoteConstant        = "ginit, the command-line tool for initializing Git repos"
)

type memoryStore struct {
	token     string
	saveCalls int
	loadError error
	saveError error
}

func (store *memoryStore) Load(context.Context) (string, bool, error) {
	if store.loadError != nil {
		return "", false, store.loadError
	}
	return store.token, len(store.token) > 0, nil
}

func (store *memoryStore) Save(_ context.Context, token string) error {
	store.saveCalls++
	if store.saveError != nil {
		return store.saveError
	}
	store.token = token
	return nil
}

func (store *memoryStore) Delete(context.Context) (bool, error) {
	removed := len(store.token) > 0
	store.token = ""
	return removed, nil
}

type scriptedPrompter struct {
	values    map[string]string
	runError  error
	runCalls  int
	lastField []prompt.Field
}

func (prompter *scriptedPrompter) Run(_ context.Context, fields []prompt.Field) (prompt.Answers, error) {
	prompter.runCalls++
	prompter.lastField = fields
	if prompter.runError != nil {
		return prompt.Answers{}, prompter.runError
	}
	answers := prompt.NewAnswers()
	for _, field := range fields {
		answers.SetValue(field.Name, prompter.values[field.Name])
	}
	return answers, nil
}

type recordingIssuer struct {
	token    string
	err      error
	requests []githubapi.AuthorizationRequest
}

func (issuer *recordingIssuer) CreateAuthorization(_ context.Context, request githubapi.AuthorizationRequest) (string, error) {
	issuer.requests = append(issuer.requests, request)
	return issuer.token, issuer.err
}

type recordingProgress struct {
	titles []string
}

func (progress *recordingProgress) Track(executionContext context.Context, title string, action func(context.Context) error) error {
	progress.titles = append(progress.titles, title)
	return action(executionContext)
}

type staticSource struct {
	name  string
	token string
	err   error
}

func (source staticSource) Name() string { return source.name }

func (source staticSource) Token(context.Context) (string, bool, error) {
	return source.token, len(source.token) > 0, source.err
}

type stubDeviceAuthorizer struct {
	token string
	err   error
	calls int
}

func (authorizer *stubDeviceAuthorizer) Authorize(context.Context) (string, error) {
	authorizer.calls++
	return authorizer.token, authorizer.err
}

func newCredentialPrompter() *scriptedPrompter {
	return &scriptedPrompter{values: map[string]string{"username": testUsernameConstant, "password": testPasswordConstant}}
}

func newTestResolver(testInstance *testing.T, dependencies githubauth.ResolverDependencies) *githubauth.Resolver {
	resolver, resolverError := githubauth.NewResolver(dependencies, githubauth.ResolverSettings{
		Scopes: []string{"user", "public_repo", "repo", "repo:status"},
		Note:   testNoteConstant,
	})
	require.NoError(testInstance, resolverError)
	return resolver
}

func TestResolverReturnsStoredTokenWithoutPromptOrNetwork(testInstance *testing.T) {
	store := &memoryStore{token: testStoredTokenConstant}
	prompter := newCredentialPrompter()
	issuer := &recordingIssuer{token: testIssuedTokenConstant}

	resolver := newTestResolver(testInstance, githubauth.ResolverDependencies{Store: store, Prompter: prompter, Issuer: issuer})
	resolved, resolveError := resolver.Resolve(context.Background())

	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, githubauth.ResolvedToken{Value: testStoredTokenConstant, Source: githubauth.SourceStored}, resolved)
	require.Zero(testInstance, prompter.runCalls)
	require.Empty(testInstance, issuer.requests)
	require.Zero(testInstance, store.saveCalls)
}

func TestResolverIssuesAndPersistsToken(testInstance *testing.T) {
	store := &memoryStore{}
	prompter := newCredentialPrompter()
	issuer := &recordingIssuer{token: testIssuedTokenConstant}
	progress := &recordingProgress{}

	resolver := newTestResolver(testInstance, githubauth.ResolverDependencies{Store: store, Prompter: prompter, Issuer: issuer, Progress: progress})
	resolved, resolveError := resolver.Resolve(context.Background())

	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, githubauth.ResolvedToken{Value: testIssuedTokenConstant, Source: githubauth.SourcePassword}, resolved)
	require.Equal(testInstance, testIssuedTokenConstant, store.token)
	require.Equal(testInstance, []string{"Authenticating you, please wait..."}, progress.titles)
	require.Equal(testInstance, []githubapi.AuthorizationRequest{{
		Username: testUsernameConstant,
		Password: testPasswordConstant,
		Scopes:   []string{"user", "public_repo", "repo", "repo:status"},
		Note:     testNoteConstant,
	}}, issuer.requests)

	require.Len(testInstance, prompter.lastField, 2)
	require.Equal(testInstance, prompt.KindText, prompter.lastField[0].Kind)
	require.Equal(testInstance, prompt.KindSecret, prompter.lastField[1].Kind)
	require.EqualError(testInstance, prompter.lastField[0].Validator(""), "Please enter your username or e-mail address")
	require.EqualError(testInstance, prompter.lastField[1].Validator(""), "Please enter password")

	secondPrompter := newCredentialPrompter()
	secondIssuer := &recordingIssuer{token: "gho_other"}
	secondResolver := newTestResolver(testInstance, githubauth.ResolverDependencies{Store: store, Prompter: secondPrompter, Issuer: secondIssuer})
	secondResolved, secondError := secondResolver.Resolve(context.Background())
	require.NoError(testInstance, secondError)
	require.Equal(testInstance, testIssuedTokenConstant, secondResolved.Value)
	require.Zero(testInstance, secondPrompter.runCalls)
	require.Empty(testInstance, secondIssuer.requests)
}

func TestResolverClassifiesIssuanceFailures(testInstance *testing.T) {
	genericFailure := errors.New("connection reset")

	testCases := []struct {
		name        string
		issuer      *recordingIssuer
		assertError func(testInstance *testing.T, resolveError error)
	}{
		{
			name:   "unauthorized",
			issuer: &recordingIssuer{err: githubapi.OperationError{Operation: "CreateAuthorization", StatusCode: http.StatusUnauthorized}},
			assertError: func(testInstance *testing.T, resolveError error) {
				var unauthorizedError githubauth.UnauthorizedError
				require.ErrorAs(testInstance, resolveError, &unauthorizedError)
				require.EqualError(testInstance, resolveError, "Couldn't log you in. Please try again.")
			},
		},
		{
			name:   "duplicate_authorization",
			issuer: &recordingIssuer{err: githubapi.OperationError{Operation: "CreateAuthorization", StatusCode: http.StatusUnprocessableEntity}},
			assertError: func(testInstance *testing.T, resolveError error) {
				var duplicateError githubauth.DuplicateAuthorizationError
				require.ErrorAs(testInstance, resolveError, &duplicateError)
				require.EqualError(testInstance, resolveError, "You already have an access token.")
			},
		},
		{
			name:   "generic",
			issuer: &recordingIssuer{err: genericFailure},
			assertError: func(testInstance *testing.T, resolveError error) {
				require.ErrorIs(testInstance, resolveError, genericFailure)
			},
		},
		{
			name:   "missing_token",
			issuer: &recordingIssuer{},
			assertError: func(testInstance *testing.T, resolveError error) {
				require.ErrorIs(testInstance, resolveError, githubauth.ErrTokenMissing)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			store := &memoryStore{}
			resolver := newTestResolver(testInstance, githubauth.ResolverDependencies{Store: store, Prompter: newCredentialPrompter(), Issuer: testCase.issuer})

			_, resolveError := resolver.Resolve(context.Background())
			testCase.assertError(testInstance, resolveError)
			require.Zero(testInstance, store.saveCalls)
		})
	}
}

func TestResolverPropagatesPromptCancellation(testInstance *testing.T) {
	issuer := &recordingIssuer{token: testIssuedTokenConstant}
	resolver := newTestResolver(testInstance, githubauth.ResolverDependencies{
		Store:    &memoryStore{},
		Prompter: &scriptedPrompter{runError: prompt.ErrCancelled},
		Issuer:   issuer,
	})

	_, resolveError := resolver.Resolve(context.Background())
	require.ErrorIs(testInstance, resolveError, prompt.ErrCancelled)
	require.Empty(testInstance, issuer.requests)
}

func TestResolverUsesExternalSourcesWithoutPersisting(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	store := &memoryStore{}
	prompter := newCredentialPrompter()

	resolver := newTestResolver(testInstance, githubauth.ResolverDependencies{
		Logger: zap.New(observerCore),
		Store:  store,
		Sources: []githubauth.TokenSource{
			staticSource{name: "broken", err: errors.New("unavailable")},
			staticSource{name: githubauth.SourceNameEnvironment},
			staticSource{name: githubauth.SourceNameGitHubCLI, token: "gho_cli"},
		},
		Prompter: prompter,
		Issuer:   &recordingIssuer{},
	})

	resolved, resolveError := resolver.Resolve(context.Background())
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, githubauth.ResolvedToken{Value: "gho_cli", Source: githubauth.Source(githubauth.SourceNameGitHubCLI)}, resolved)
	require.Zero(testInstance, store.saveCalls)
	require.Zero(testInstance, prompter.runCalls)
	require.Equal(testInstance, 1, observedLogs.FilterMessage("token source failed").Len())
}

func TestResolverPrefersDeviceLoginWhenConfigured(testInstance *testing.T) {
	store := &memoryStore{}
	deviceAuthorizer := &stubDeviceAuthorizer{token: "gho_device"}

	resolver := newTestResolver(testInstance, githubauth.ResolverDependencies{Store: store, DeviceAuthorizer: deviceAuthorizer})
	resolved, resolveError := resolver.Resolve(context.Background())

	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, githubauth.SourceDevice, resolved.Source)
	require.Equal(testInstance, "gho_device", store.token)
	require.Equal(testInstance, 1, deviceAuthorizer.calls)
}

func TestResolverSurfacesStoreFailures(testInstance *testing.T) {
	loadFailure := errors.New("disk unavailable")
	resolver := newTestResolver(testInstance, githubauth.ResolverDependencies{
		Store:    &memoryStore{loadError: loadFailure},
		Prompter: newCredentialPrompter(),
		Issuer:   &recordingIssuer{token: testIssuedTokenConstant},
	})
	_, resolveError := resolver.Resolve(context.Background())
	require.ErrorIs(testInstance, resolveError, loadFailure)

	saveFailure := errors.New("read-only")
	resolver = newTestResolver(testInstance, githubauth.ResolverDependencies{
		Store:    &memoryStore{saveError: saveFailure},
		Prompter: newCredentialPrompter(),
		Issuer:   &recordingIssuer{token: testIssuedTokenConstant},
	})
	_, resolveError = resolver.Resolve(context.Background())
	require.ErrorIs(testInstance, resolveError, saveFailure)
}

func TestNewResolverValidatesDependencies(testInstance *testing.T) {
	testCases := []struct {
		name          string
		dependencies  githubauth.ResolverDependencies
		expectedError error
	}{
		{name: "missing_store", dependencies: githubauth.ResolverDependencies{Prompter: newCredentialPrompter(), Issuer: &recordingIssuer{}}, expectedError: githubauth.ErrStoreNotConfigured},
		{name: "missing_prompter", dependencies: githubauth.ResolverDependencies{Store: &memoryStore{}, Issuer: &recordingIssuer{}}, expectedError: githubauth.ErrPromptNotConfigured},
		{name: "missing_issuer", dependencies: githubauth.ResolverDependencies{Store: &memoryStore{}, Prompter: newCredentialPrompter()}, expectedError: githubauth.ErrIssuerNotConfigured},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolver, resolverError := githubauth.NewResolver(testCase.dependencies, githubauth.ResolverSettings{})
			require.ErrorIs(testInstance, resolverError, testCase.expectedError)
			require.Nil(testInstance, resolver)
		})
	}
}
