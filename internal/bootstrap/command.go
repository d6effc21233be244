package bootstrap

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ginit/internal/execshell"
	"github.com/temirov/ginit/internal/filesystem"
	"github.com/temirov/ginit/internal/gitrepo"
	"github.com/temirov/ginit/internal/githubapi"
	"github.com/temirov/ginit/internal/githubauth"
	"github.com/temirov/ginit/internal/ignorefile"
	"github.com/temirov/ginit/internal/preferences"
	"github.com/temirov/ginit/internal/prompt"
	"github.com/temirov/ginit/internal/remoterepo"
	"github.com/temirov/ginit/internal/ui"
	"github.com/temirov/ginit/internal/utils/flags"
	"github.com/temirov/ginit/internal/workspace"
)

const (
	// ApplicationNameConstant names the binary, the preference namespace, and the config directory.
	ApplicationNameConstant = "ginit"
	// VisibilityFlagName selects the default repository visibility.
	VisibilityFlagName = "visibility"
	// OrganizationFlagName creates the repository under an organization.
	OrganizationFlagName = "org"
)

const (
	commandUseConstant                    = "ginit [name] [description]"
	commandShortDescriptionConstant       = "Create a GitHub repository for the current directory and push it"
	commandLongDescriptionConstant        = "ginit authenticates with GitHub, creates a remote repository, writes a .gitignore from the entries you pick, then initializes, commits, and pushes the working directory."
	repositoryNameArgumentIndexConstant   = 0
	repositoryDescriptionIndexConstant    = 1
	maximumArgumentsConstant              = 2
	visibilityFlagDescriptionConstant     = "Default repository visibility offered in the prompt"
	organizationFlagDescriptionConstant   = "Organization that owns the new repository"
	workingDirectoryErrorTemplateConstant = "resolve working directory: %w"
	openStoreErrorTemplateConstant        = "open preference store: %w"
	protocolErrorTemplateConstant         = "github.remote_protocol: %w"
	promptModeErrorTemplateConstant       = "prompt.mode: %w"
	visibilityErrorTemplateConstant       = "repository.default_visibility: %w"
	tokenSourcesErrorTemplateConstant     = "github.token_sources: %w"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the bootstrap configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the root ginit command. Unset collaborators fall back to the real terminal, git, and GitHub.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	WorkingDirectory             string
	Input                        *os.File
	Output                       io.Writer
	Prompter                     prompt.Runner
	Store                        preferences.Store
	GitExecutor                  gitrepo.GitExecutor
	UserConfigDirectoryResolver  preferences.UserConfigDirectoryResolver
}

// Build constructs the root command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		Args:          cobra.MaximumNArgs(maximumArgumentsConstant),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          builder.run,
	}

	command.Flags().String(VisibilityFlagName, "", flags.FormatChoiceUsage(string(remoterepo.VisibilityPublic), remoterepo.VisibilityChoices(), visibilityFlagDescriptionConstant))
	command.Flags().String(OrganizationFlagName, "", organizationFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()

	options, optionsError := builder.parseOptions(command, arguments, configuration)
	if optionsError != nil {
		return optionsError
	}

	service, serviceError := builder.buildService(command, logger, configuration)
	if serviceError != nil {
		return serviceError
	}

	_, runError := service.Run(command.Context(), options)
	return runError
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, arguments []string, configuration Configuration) (Options, error) {
	workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return Options{}, workingDirectoryError
	}

	visibilityValue := configuration.Repository.DefaultVisibility
	if command.Flags().Changed(VisibilityFlagName) {
		flagValue, _ := command.Flags().GetString(VisibilityFlagName)
		parsedChoice, choiceError := flags.ParseChoice(VisibilityFlagName, flagValue, remoterepo.VisibilityChoices())
		if choiceError != nil {
			return Options{}, choiceError
		}
		visibilityValue = parsedChoice
	}
	visibility, visibilityError := remoterepo.ParseVisibility(visibilityValue)
	if visibilityError != nil {
		return Options{}, fmt.Errorf(visibilityErrorTemplateConstant, visibilityError)
	}

	organization := configuration.Repository.Organization
	if command.Flags().Changed(OrganizationFlagName) {
		flagValue, _ := command.Flags().GetString(OrganizationFlagName)
		organization = strings.TrimSpace(flagValue)
	}

	protocol, protocolError := gitrepo.ParseRemoteProtocol(configuration.GitHub.RemoteProtocol)
	if protocolError != nil {
		return Options{}, fmt.Errorf(protocolErrorTemplateConstant, protocolError)
	}

	options := Options{
		WorkingDirectory: workingDirectory,
		Visibility:       visibility,
		Organization:     organization,
		RemoteProtocol:   protocol,
		Ignore: ignorefile.Options{
			FileName:          configuration.Ignore.FileName,
			DefaultSelections: configuration.Ignore.DefaultSelections,
		},
		Setup: gitrepo.Options{
			IgnoreFileName: configuration.Ignore.FileName,
			Branch:         configuration.Repository.DefaultBranch,
			RemoteName:     configuration.Repository.RemoteName,
			CommitMessage:  configuration.Repository.CommitMessage,
		},
	}
	if len(arguments) > repositoryNameArgumentIndexConstant {
		options.RepositoryName = strings.TrimSpace(arguments[repositoryNameArgumentIndexConstant])
	}
	if len(arguments) > repositoryDescriptionIndexConstant {
		options.RepositoryDescription = strings.TrimSpace(arguments[repositoryDescriptionIndexConstant])
	}
	return options, nil
}

func (builder *CommandBuilder) buildService(command *cobra.Command, logger *zap.Logger, configuration Configuration) (*Service, error) {
	output := builder.resolveOutput(command)
	console := ui.NewConsole(output)
	progress := builder.resolveProgress(output)

	prompter, prompterError := builder.resolvePrompter(configuration)
	if prompterError != nil {
		return nil, prompterError
	}

	store, storeError := builder.resolveStore(configuration)
	if storeError != nil {
		return nil, storeError
	}

	gitExecutor, executorError := builder.resolveGitExecutor(logger, progress)
	if executorError != nil {
		return nil, executorError
	}

	client, clientError := githubapi.NewClient(logger, configuration.GitHub.APIURL)
	if clientError != nil {
		return nil, clientError
	}

	tokenSources, sourcesError := githubauth.NewTokenSources(configuration.GitHub.TokenSources, hostFromAPIURL(configuration.GitHub.APIURL))
	if sourcesError != nil {
		return nil, fmt.Errorf(tokenSourcesErrorTemplateConstant, sourcesError)
	}

	resolverDependencies := githubauth.ResolverDependencies{
		Logger:   logger,
		Store:    store,
		Sources:  tokenSources,
		Prompter: prompter,
		Issuer:   client,
		Progress: progress,
	}
	if len(configuration.GitHub.OAuthClientID) > 0 {
		resolverDependencies.DeviceAuthorizer = githubauth.NewDeviceAuthorizer(
			configuration.GitHub.OAuthClientID,
			githubauth.WebURLFromAPIURL(configuration.GitHub.APIURL),
			configuration.GitHub.AuthorizationScopes,
			output,
		)
	}
	resolver, resolverError := githubauth.NewResolver(resolverDependencies, githubauth.ResolverSettings{
		Scopes: configuration.GitHub.AuthorizationScopes,
		Note:   configuration.GitHub.AuthorizationNote,
	})
	if resolverError != nil {
		return nil, resolverError
	}

	creator, creatorError := remoterepo.NewCreator(logger, prompter, client, progress)
	if creatorError != nil {
		return nil, creatorError
	}

	fileSystem := filesystem.OSFileSystem{}
	inspector, inspectorError := workspace.NewInspector(fileSystem)
	if inspectorError != nil {
		return nil, inspectorError
	}

	ignoreBuilder, ignoreBuilderError := ignorefile.NewBuilder(logger, fileSystem, prompter)
	if ignoreBuilderError != nil {
		return nil, ignoreBuilderError
	}

	initializer, initializerError := gitrepo.NewInitializer(logger, gitExecutor)
	if initializerError != nil {
		return nil, initializerError
	}

	return NewService(ServiceDependencies{
		Logger:        logger,
		Inspector:     inspector,
		Resolver:      resolver,
		Creator:       creator,
		IgnoreBuilder: ignoreBuilder,
		Initializer:   initializer,
		Reporter:      console,
		Progress:      progress,
	})
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveWorkingDirectory() (string, error) {
	if len(strings.TrimSpace(builder.WorkingDirectory)) > 0 {
		return builder.WorkingDirectory, nil
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}
	return workingDirectory, nil
}

func (builder *CommandBuilder) resolveOutput(command *cobra.Command) io.Writer {
	if builder.Output != nil {
		return builder.Output
	}
	return command.OutOrStdout()
}

func (builder *CommandBuilder) resolveProgress(output io.Writer) *ui.ProgressIndicator {
	if outputFile, isFile := output.(*os.File); isFile {
		return ui.NewProgressIndicator(outputFile)
	}
	return ui.NewPlainProgressIndicator(output)
}

func (builder *CommandBuilder) resolvePrompter(configuration Configuration) (prompt.Runner, error) {
	if builder.Prompter != nil {
		return builder.Prompter, nil
	}
	mode, modeError := prompt.ParseMode(configuration.Prompt.Mode)
	if modeError != nil {
		return nil, fmt.Errorf(promptModeErrorTemplateConstant, modeError)
	}
	input := builder.Input
	if input == nil {
		input = os.Stdin
	}
	return prompt.NewTerminalRunner(mode, configuration.Prompt.Accessible, input, os.Stdout), nil
}

func (builder *CommandBuilder) resolveStore(configuration Configuration) (preferences.Store, error) {
	if builder.Store != nil {
		return builder.Store, nil
	}
	resolveUserConfigDirectory := builder.UserConfigDirectoryResolver
	if resolveUserConfigDirectory == nil {
		resolveUserConfigDirectory = os.UserConfigDir
	}
	store, openError := preferences.OpenStore(configuration.Preferences, ApplicationNameConstant, resolveUserConfigDirectory)
	if openError != nil {
		return nil, fmt.Errorf(openStoreErrorTemplateConstant, openError)
	}
	return store, nil
}

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger, progress *ui.ProgressIndicator) (gitrepo.GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}

	observers := []execshell.CommandEventObserver{progress}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		observers = append(observers, ui.NewConsoleCommandEventLogger(logger))
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), observers...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func hostFromAPIURL(apiURL string) string {
	webURL := githubauth.WebURLFromAPIURL(apiURL)
	if len(webURL) == 0 {
		return ""
	}
	parsedURL, parseError := url.Parse(webURL)
	if parseError != nil {
		return ""
	}
	return parsedURL.Host
}
