package bootstrap

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ginit/internal/preferences"
	"github.com/temirov/ginit/internal/ui"
)

const (
	logoutCommandUseConstant              = "logout"
	logoutCommandShortDescriptionConstant = "Forget the stored GitHub token"
	logoutCommandLongDescriptionConstant  = "logout deletes the GitHub token ginit saved in its preference store. Tokens imported from the environment or the gh CLI are not affected."
	tokenRemovedMessageConstant           = "Stored GitHub token removed."
	tokenAbsentMessageConstant            = "No stored GitHub token found."
	deleteTokenErrorTemplateConstant      = "remove stored token: %w"
	tokenRemovedLogMessageConstant        = "stored token removed"
	logFieldRemovedConstant               = "removed"
)

// LogoutCommandBuilder assembles the logout subcommand.
type LogoutCommandBuilder struct {
	LoggerProvider              LoggerProvider
	ConfigurationProvider       ConfigurationProvider
	Output                      io.Writer
	Store                       preferences.Store
	UserConfigDirectoryResolver preferences.UserConfigDirectoryResolver
}

// Build constructs the logout command.
func (builder *LogoutCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   logoutCommandUseConstant,
		Short: logoutCommandShortDescriptionConstant,
		Long:  logoutCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *LogoutCommandBuilder) run(command *cobra.Command, _ []string) error {
	store, storeError := builder.resolveStore()
	if storeError != nil {
		return storeError
	}

	removed, deleteError := store.Delete(command.Context())
	if deleteError != nil {
		return fmt.Errorf(deleteTokenErrorTemplateConstant, deleteError)
	}
	builder.resolveLogger().Debug(tokenRemovedLogMessageConstant, zap.Bool(logFieldRemovedConstant, removed))

	output := builder.Output
	if output == nil {
		output = command.OutOrStdout()
	}
	console := ui.NewConsole(output)
	if removed {
		console.Success(tokenRemovedMessageConstant)
	} else {
		console.Hint(tokenAbsentMessageConstant)
	}
	return nil
}

func (builder *LogoutCommandBuilder) resolveStore() (preferences.Store, error) {
	if builder.Store != nil {
		return builder.Store, nil
	}
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider().Sanitize()
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

func (builder *LogoutCommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
