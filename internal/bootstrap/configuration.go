package bootstrap

import (
	"strings"

	"github.com/temirov/ginit/internal/preferences"
)

const (
	githubConfigurationKeyConstant      = "github"
	preferencesConfigurationKeyConstant = "preferences"
	repositoryConfigurationKeyConstant  = "repository"
	ignoreConfigurationKeyConstant      = "ignore"
	promptConfigurationKeyConstant      = "prompt"
	configurationKeySeparatorConstant   = "."

	defaultAuthorizationNoteConstant  = "ginit, the command-line tool for initializing Git repos"
	defaultRemoteProtocolConstant     = "ssh"
	defaultPreferencesBackendConstant = "file"
	defaultVisibilityConstant         = "public"
	defaultBranchConstant             = "master"
	defaultRemoteNameConstant         = "origin"
	defaultCommitMessageConstant      = "Initial commit"
	defaultIgnoreFileNameConstant     = ".gitignore"
	defaultPromptModeConstant         = "auto"
)

// Configuration holds every setting the bootstrap flow reads.
type Configuration struct {
	GitHub      GitHubConfiguration       `mapstructure:"github"`
	Preferences preferences.Configuration `mapstructure:"preferences"`
	Repository  RepositoryConfiguration   `mapstructure:"repository"`
	Ignore      IgnoreConfiguration       `mapstructure:"ignore"`
	Prompt      PromptConfiguration       `mapstructure:"prompt"`
}

// GitHubConfiguration locates the API and describes how tokens are obtained.
type GitHubConfiguration struct {
	APIURL              string   `mapstructure:"api_url"`
	AuthorizationNote   string   `mapstructure:"authorization_note"`
	AuthorizationScopes []string `mapstructure:"authorization_scopes"`
	RemoteProtocol      string   `mapstructure:"remote_protocol"`
	TokenSources        []string `mapstructure:"token_sources"`
	OAuthClientID       string   `mapstructure:"oauth_client_id"`
}

// RepositoryConfiguration seeds repository creation and the first push.
type RepositoryConfiguration struct {
	DefaultVisibility string `mapstructure:"default_visibility"`
	Organization      string `mapstructure:"organization"`
	DefaultBranch     string `mapstructure:"default_branch"`
	RemoteName        string `mapstructure:"remote_name"`
	CommitMessage     string `mapstructure:"commit_message"`
}

// IgnoreConfiguration controls the generated ignore file.
type IgnoreConfiguration struct {
	FileName          string   `mapstructure:"file_name"`
	DefaultSelections []string `mapstructure:"default_selections"`
}

// PromptConfiguration selects the prompt front end.
type PromptConfiguration struct {
	Mode       string `mapstructure:"mode"`
	Accessible bool   `mapstructure:"accessible"`
}

// DefaultAuthorizationScopes lists the scopes requested for issued tokens.
func DefaultAuthorizationScopes() []string {
	return []string{"user", "public_repo", "repo", "repo:status"}
}

// DefaultIgnoreSelections lists the entries preselected in the ignore prompt.
func DefaultIgnoreSelections() []string {
	return []string{"node_modules", "bower_components"}
}

// DefaultConfiguration returns the built-in settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		GitHub: GitHubConfiguration{
			AuthorizationNote:   defaultAuthorizationNoteConstant,
			AuthorizationScopes: DefaultAuthorizationScopes(),
			RemoteProtocol:      defaultRemoteProtocolConstant,
			TokenSources:        []string{},
		},
		Preferences: preferences.Configuration{Backend: defaultPreferencesBackendConstant},
		Repository: RepositoryConfiguration{
			DefaultVisibility: defaultVisibilityConstant,
			DefaultBranch:     defaultBranchConstant,
			RemoteName:        defaultRemoteNameConstant,
			CommitMessage:     defaultCommitMessageConstant,
		},
		Ignore: IgnoreConfiguration{
			FileName:          defaultIgnoreFileNameConstant,
			DefaultSelections: DefaultIgnoreSelections(),
		},
		Prompt: PromptConfiguration{Mode: defaultPromptModeConstant},
	}
}

// DefaultConfigurationValues flattens DefaultConfiguration into viper keys below prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		joinConfigurationKey(prefix, githubConfigurationKeyConstant, "api_url"):                defaults.GitHub.APIURL,
		joinConfigurationKey(prefix, githubConfigurationKeyConstant, "authorization_note"):     defaults.GitHub.AuthorizationNote,
		joinConfigurationKey(prefix, githubConfigurationKeyConstant, "authorization_scopes"):   defaults.GitHub.AuthorizationScopes,
		joinConfigurationKey(prefix, githubConfigurationKeyConstant, "remote_protocol"):        defaults.GitHub.RemoteProtocol,
		joinConfigurationKey(prefix, githubConfigurationKeyConstant, "token_sources"):          defaults.GitHub.TokenSources,
		joinConfigurationKey(prefix, githubConfigurationKeyConstant, "oauth_client_id"):        defaults.GitHub.OAuthClientID,
		joinConfigurationKey(prefix, preferencesConfigurationKeyConstant, "backend"):           defaults.Preferences.Backend,
		joinConfigurationKey(prefix, preferencesConfigurationKeyConstant, "path"):              defaults.Preferences.Path,
		joinConfigurationKey(prefix, repositoryConfigurationKeyConstant, "default_visibility"): defaults.Repository.DefaultVisibility,
		joinConfigurationKey(prefix, repositoryConfigurationKeyConstant, "organization"):       defaults.Repository.Organization,
		joinConfigurationKey(prefix, repositoryConfigurationKeyConstant, "default_branch"):     defaults.Repository.DefaultBranch,
		joinConfigurationKey(prefix, repositoryConfigurationKeyConstant, "remote_name"):        defaults.Repository.RemoteName,
		joinConfigurationKey(prefix, repositoryConfigurationKeyConstant, "commit_message"):     defaults.Repository.CommitMessage,
		joinConfigurationKey(prefix, ignoreConfigurationKeyConstant, "file_name"):              defaults.Ignore.FileName,
		joinConfigurationKey(prefix, ignoreConfigurationKeyConstant, "default_selections"):     defaults.Ignore.DefaultSelections,
		joinConfigurationKey(prefix, promptConfigurationKeyConstant, "mode"):                   defaults.Prompt.Mode,
		joinConfigurationKey(prefix, promptConfigurationKeyConstant, "accessible"):             defaults.Prompt.Accessible,
	}
}

// Sanitize trims values and restores defaults for blanks. Explicitly emptied lists stay empty.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration

	sanitized.GitHub.APIURL = strings.TrimSpace(configuration.GitHub.APIURL)
	sanitized.GitHub.AuthorizationNote = fallback(configuration.GitHub.AuthorizationNote, defaults.GitHub.AuthorizationNote)
	sanitized.GitHub.RemoteProtocol = fallback(configuration.GitHub.RemoteProtocol, defaults.GitHub.RemoteProtocol)
	sanitized.GitHub.OAuthClientID = strings.TrimSpace(configuration.GitHub.OAuthClientID)
	sanitized.GitHub.TokenSources = sanitizeList(configuration.GitHub.TokenSources)
	if configuration.GitHub.AuthorizationScopes == nil {
		sanitized.GitHub.AuthorizationScopes = defaults.GitHub.AuthorizationScopes
	} else {
		sanitized.GitHub.AuthorizationScopes = sanitizeList(configuration.GitHub.AuthorizationScopes)
	}

	sanitized.Preferences = configuration.Preferences.Sanitize()

	sanitized.Repository.DefaultVisibility = fallback(configuration.Repository.DefaultVisibility, defaults.Repository.DefaultVisibility)
	sanitized.Repository.Organization = strings.TrimSpace(configuration.Repository.Organization)
	sanitized.Repository.DefaultBranch = fallback(configuration.Repository.DefaultBranch, defaults.Repository.DefaultBranch)
	sanitized.Repository.RemoteName = fallback(configuration.Repository.RemoteName, defaults.Repository.RemoteName)
	sanitized.Repository.CommitMessage = fallback(configuration.Repository.CommitMessage, defaults.Repository.CommitMessage)

	sanitized.Ignore.FileName = fallback(configuration.Ignore.FileName, defaults.Ignore.FileName)
	if configuration.Ignore.DefaultSelections == nil {
		sanitized.Ignore.DefaultSelections = defaults.Ignore.DefaultSelections
	} else {
		sanitized.Ignore.DefaultSelections = sanitizeList(configuration.Ignore.DefaultSelections)
	}

	sanitized.Prompt.Mode = fallback(configuration.Prompt.Mode, defaults.Prompt.Mode)
	return sanitized
}

func joinConfigurationKey(segments ...string) string {
	nonEmptySegments := make([]string, 0, len(segments))
	for _, segment := range segments {
		if len(segment) > 0 {
			nonEmptySegments = append(nonEmptySegments, segment)
		}
	}
	return strings.Join(nonEmptySegments, configurationKeySeparatorConstant)
}

func fallback(value string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}

func sanitizeList(values []string) []string {
	sanitized := make([]string, 0, len(values))
	for _, value := range values {
		trimmedValue := strings.TrimSpace(value)
		if len(trimmedValue) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmedValue)
	}
	return sanitized
}
