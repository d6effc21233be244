package githubauth

import (
	"context"
	"os"
	"strings"

	"github.com/cli/go-gh/v2/pkg/auth"
)

// Environment variable names consulted by the environment token source, in precedence order.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

// Token source names accepted by github.token_sources.
const (
	SourceNameEnvironment = "environment"
	SourceNameGitHubCLI   = "gh"
	defaultGitHubHost     = "github.com"
)

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// TokenSource supplies an existing token that ginit did not issue.
type TokenSource interface {
	Name() string
	Token(executionContext context.Context) (string, bool, error)
}

// EnvironmentTokenSource reads the first non-empty token variable.
type EnvironmentTokenSource struct {
	lookup func(string) (string, bool)
}

// NewEnvironmentTokenSource constructs a source over the process environment.
func NewEnvironmentTokenSource() EnvironmentTokenSource {
	return EnvironmentTokenSource{lookup: os.LookupEnv}
}

// NewEnvironmentTokenSourceFromMap constructs a source over a fixed environment.
func NewEnvironmentTokenSourceFromMap(environment map[string]string) EnvironmentTokenSource {
	return EnvironmentTokenSource{lookup: func(key string) (string, bool) {
		value, exists := environment[key]
		return value, exists
	}}
}

// Name identifies the source.
func (source EnvironmentTokenSource) Name() string {
	return SourceNameEnvironment
}

// Token returns the first non-blank variable in tokenPreference order.
func (source EnvironmentTokenSource) Token(context.Context) (string, bool, error) {
	lookup := source.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range tokenPreference {
		value, exists := lookup(key)
		if !exists {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) > 0 {
			return value, true, nil
		}
	}
	return "", false, nil
}

// GitHubCLITokenSource reuses the token the gh CLI stored for a host.
type GitHubCLITokenSource struct {
	host         string
	tokenForHost func(string) (string, string)
}

// NewGitHubCLITokenSource constructs a source for host, defaulting to github.com.
func NewGitHubCLITokenSource(host string) GitHubCLITokenSource {
	trimmedHost := strings.TrimSpace(host)
	if len(trimmedHost) == 0 {
		trimmedHost = defaultGitHubHost
	}
	return GitHubCLITokenSource{host: trimmedHost, tokenForHost: auth.TokenForHost}
}

// Name identifies the source.
func (source GitHubCLITokenSource) Name() string {
	return SourceNameGitHubCLI
}

// Token asks gh for its token.
func (source GitHubCLITokenSource) Token(context.Context) (string, bool, error) {
	token, _ := source.tokenForHost(source.host)
	token = strings.TrimSpace(token)
	return token, len(token) > 0, nil
}
