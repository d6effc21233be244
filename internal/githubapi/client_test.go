package githubapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/ginit/internal/githubapi"
)

const (
	testUsernameConstant     = "octo"
	testPasswordConstant     = "hunter2"
	testTokenConstant        = "gho_issued"
	testNoteConstant         = "ginit, the command-line tool for initializing Git repos"
	testRepositoryConstant   = "demo"
	testSSHURLConstant       = "git@github.com:octo/demo.git"
	testCloneURLConstant     = "https://github.com/octo/demo.git"
	testOrganizationConstant = "acme"
)

func newTestClient(testInstance *testing.T, handler http.HandlerFunc) *githubapi.Client {
	server := httptest.NewServer(handler)
	testInstance.Cleanup(server.Close)

	client, clientError := githubapi.NewClient(zap.NewNop(), server.URL)
	require.NoError(testInstance, clientError)
	return client
}

func TestCreateAuthorization(testInstance *testing.T) {
	testCases := []struct {
		name               string
		statusCode         int
		responseBody       string
		responseHeaders    map[string]string
		expectedToken      string
		expectedStatusCode int
	}{
		{name: "issued", statusCode: http.StatusCreated, responseBody: `{"token":"` + testTokenConstant + `"}`, expectedToken: testTokenConstant},
		{name: "empty_token", statusCode: http.StatusCreated, responseBody: `{}`},
		{name: "unauthorized", statusCode: http.StatusUnauthorized, responseBody: `{"message":"Bad credentials"}`, expectedStatusCode: http.StatusUnauthorized},
		{name: "two_factor_required", statusCode: http.StatusUnauthorized, responseBody: `{"message":"Must specify two-factor authentication OTP code."}`, responseHeaders: map[string]string{"X-GitHub-OTP": "required; sms"}, expectedStatusCode: http.StatusUnauthorized},
		{name: "duplicate", statusCode: http.StatusUnprocessableEntity, responseBody: `{"message":"Validation Failed"}`, expectedStatusCode: http.StatusUnprocessableEntity},
		{name: "server_error", statusCode: http.StatusInternalServerError, responseBody: `{"message":"boom"}`, expectedStatusCode: http.StatusInternalServerError},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var receivedPayload map[string]any
			var receivedUsername, receivedPassword string
			var receivedPath, receivedMethod string

			client := newTestClient(testInstance, func(responseWriter http.ResponseWriter, request *http.Request) {
				receivedPath = request.URL.Path
				receivedMethod = request.Method
				receivedUsername, receivedPassword, _ = request.BasicAuth()
				require.NoError(testInstance, json.NewDecoder(request.Body).Decode(&receivedPayload))
				for headerName, headerValue := range testCase.responseHeaders {
					responseWriter.Header().Set(headerName, headerValue)
				}
				responseWriter.Header().Set("Content-Type", "application/json")
				responseWriter.WriteHeader(testCase.statusCode)
				_, _ = responseWriter.Write([]byte(testCase.responseBody))
			})

			token, authorizationError := client.CreateAuthorization(context.Background(), githubapi.AuthorizationRequest{
				Username: testUsernameConstant,
				Password: testPasswordConstant,
				Scopes:   []string{"user", "public_repo", "repo", "repo:status"},
				Note:     testNoteConstant,
			})

			require.Equal(testInstance, "/authorizations", receivedPath)
			require.Equal(testInstance, http.MethodPost, receivedMethod)
			require.Equal(testInstance, testUsernameConstant, receivedUsername)
			require.Equal(testInstance, testPasswordConstant, receivedPassword)
			require.Equal(testInstance, testNoteConstant, receivedPayload["note"])
			require.Equal(testInstance, []any{"user", "public_repo", "repo", "repo:status"}, receivedPayload["scopes"])

			if testCase.expectedStatusCode != 0 {
				var operationError githubapi.OperationError
				require.ErrorAs(testInstance, authorizationError, &operationError)
				require.Equal(testInstance, testCase.expectedStatusCode, operationError.StatusCode)
				require.Equal(testInstance, testCase.expectedStatusCode, githubapi.StatusCode(authorizationError))
				return
			}
			require.NoError(testInstance, authorizationError)
			require.Equal(testInstance, testCase.expectedToken, token)
		})
	}
}

func TestCreateAuthorizationValidatesInput(testInstance *testing.T) {
	client, clientError := githubapi.NewClient(nil, "")
	require.NoError(testInstance, clientError)

	_, authorizationError := client.CreateAuthorization(context.Background(), githubapi.AuthorizationRequest{Password: testPasswordConstant})
	var inputError githubapi.InvalidInputError
	require.ErrorAs(testInstance, authorizationError, &inputError)
	require.Equal(testInstance, "username", inputError.FieldName)

	_, authorizationError = client.CreateAuthorization(context.Background(), githubapi.AuthorizationRequest{Username: testUsernameConstant})
	require.ErrorAs(testInstance, authorizationError, &inputError)
	require.Equal(testInstance, "password", inputError.FieldName)
}

func TestCreateRepository(testInstance *testing.T) {
	testCases := []struct {
		name         string
		request      githubapi.RepositoryRequest
		expectedPath string
	}{
		{
			name:         "user_repository",
			request:      githubapi.RepositoryRequest{Name: testRepositoryConstant, Description: "A demo", Private: true},
			expectedPath: "/user/repos",
		},
		{
			name:         "organization_repository",
			request:      githubapi.RepositoryRequest{Name: testRepositoryConstant, Organization: testOrganizationConstant},
			expectedPath: "/orgs/acme/repos",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var receivedPayload map[string]any
			var receivedPath, receivedAuthorization string

			client := newTestClient(testInstance, func(responseWriter http.ResponseWriter, request *http.Request) {
				receivedPath = request.URL.Path
				receivedAuthorization = request.Header.Get("Authorization")
				require.NoError(testInstance, json.NewDecoder(request.Body).Decode(&receivedPayload))
				responseWriter.Header().Set("Content-Type", "application/json")
				responseWriter.WriteHeader(http.StatusCreated)
				_, _ = responseWriter.Write([]byte(`{"full_name":"octo/demo","html_url":"https://github.com/octo/demo","ssh_url":"` + testSSHURLConstant + `","clone_url":"` + testCloneURLConstant + `"}`))
			})

			repository, createError := client.CreateRepository(context.Background(), testTokenConstant, testCase.request)
			require.NoError(testInstance, createError)

			require.Equal(testInstance, testCase.expectedPath, receivedPath)
			require.Equal(testInstance, "Bearer "+testTokenConstant, receivedAuthorization)
			require.Equal(testInstance, testRepositoryConstant, receivedPayload["name"])
			require.Equal(testInstance, testCase.request.Private, receivedPayload["private"])
			require.Equal(testInstance, githubapi.Repository{
				FullName: "octo/demo",
				HTMLURL:  "https://github.com/octo/demo",
				SSHURL:   testSSHURLConstant,
				CloneURL: testCloneURLConstant,
			}, repository)
		})
	}
}

func TestCreateRepositoryReportsFailures(testInstance *testing.T) {
	client := newTestClient(testInstance, func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.Header().Set("Content-Type", "application/json")
		responseWriter.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = responseWriter.Write([]byte(`{"message":"Repository creation failed.","errors":[{"resource":"Repository","code":"custom","field":"name","message":"name already exists on this account"}]}`))
	})

	_, createError := client.CreateRepository(context.Background(), testTokenConstant, githubapi.RepositoryRequest{Name: testRepositoryConstant})

	var operationError githubapi.OperationError
	require.ErrorAs(testInstance, createError, &operationError)
	require.Equal(testInstance, http.StatusUnprocessableEntity, operationError.StatusCode)
	require.Contains(testInstance, createError.Error(), "CreateRepository operation failed")
}

func TestCreateRepositoryValidatesInput(testInstance *testing.T) {
	client, clientError := githubapi.NewClient(nil, "")
	require.NoError(testInstance, clientError)

	_, createError := client.CreateRepository(context.Background(), "", githubapi.RepositoryRequest{Name: testRepositoryConstant})
	var inputError githubapi.InvalidInputError
	require.ErrorAs(testInstance, createError, &inputError)

	_, createError = client.CreateRepository(context.Background(), testTokenConstant, githubapi.RepositoryRequest{Name: "  "})
	require.ErrorAs(testInstance, createError, &inputError)
}

func TestNewClientRejectsInvalidURL(testInstance *testing.T) {
	_, clientError := githubapi.NewClient(nil, "not a url")
	var inputError githubapi.InvalidInputError
	require.ErrorAs(testInstance, clientError, &inputError)
}
