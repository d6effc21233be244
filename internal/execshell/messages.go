package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitInitSubcommandNameConstant   = "init"
	gitAddSubcommandNameConstant    = "add"
	gitCommitSubcommandNameConstant = "commit"
	gitRemoteSubcommandNameConstant = "remote"
	gitRemoteAddSubcommandConstant  = "add"
	gitPushSubcommandNameConstant   = "push"
	gitMessageFlagConstant          = "-m"
)

const (
	gitInitStartTemplateConstant                 = "Initializing repository in %s"
	gitInitSuccessTemplateConstant               = "Initialized repository in %s"
	gitInitFailureTemplateConstant               = "Failed to initialize repository in %s (exit code %d%s)"
	gitInitExecutionFailureTemplateConstant      = "Unable to initialize repository in %s: %s"
	gitAddStartTemplateConstant                  = "Staging %s in %s"
	gitAddSuccessTemplateConstant                = "Staged %s in %s"
	gitAddFailureTemplateConstant                = "Failed to stage %s in %s (exit code %d%s)"
	gitAddExecutionFailureTemplateConstant       = "Unable to stage %s in %s: %s"
	gitCommitStartTemplateConstant               = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant             = "Created commit in %s with message %q"
	gitCommitFailureTemplateConstant             = "Failed to create commit in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant    = "Unable to create commit in %s with message %q: %s"
	gitRemoteAddStartTemplateConstant            = "Adding %s remote %s in %s"
	gitRemoteAddSuccessTemplateConstant          = "Added %s remote %s in %s"
	gitRemoteAddFailureTemplateConstant          = "Failed to add %s remote %s in %s (exit code %d%s)"
	gitRemoteAddExecutionFailureTemplateConstant = "Unable to add %s remote %s in %s: %s"
	gitPushStartTemplateConstant                 = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant               = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant               = "Failed to push %s to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant      = "Unable to push %s to %s from %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	// templates are indexed by messageStage.
	var templates [4]string
	var leadingArguments []any

	workingDirectory := formatter.describeWorkingDirectory(command)
	arguments := command.Details.Arguments
	switch strings.TrimSpace(arguments[0]) {
	case gitInitSubcommandNameConstant:
		templates = [4]string{gitInitStartTemplateConstant, gitInitSuccessTemplateConstant, gitInitFailureTemplateConstant, gitInitExecutionFailureTemplateConstant}
		leadingArguments = []any{workingDirectory}
	case gitAddSubcommandNameConstant:
		templates = [4]string{gitAddStartTemplateConstant, gitAddSuccessTemplateConstant, gitAddFailureTemplateConstant, gitAddExecutionFailureTemplateConstant}
		leadingArguments = []any{formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments[1:])), workingDirectory}
	case gitCommitSubcommandNameConstant:
		templates = [4]string{gitCommitStartTemplateConstant, gitCommitSuccessTemplateConstant, gitCommitFailureTemplateConstant, gitCommitExecutionFailureTemplateConstant}
		leadingArguments = []any{workingDirectory, formatter.extractCommitMessage(arguments)}
	case gitRemoteSubcommandNameConstant:
		if formatter.argumentAtIndex(arguments, 1) != gitRemoteAddSubcommandConstant {
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
		templates = [4]string{gitRemoteAddStartTemplateConstant, gitRemoteAddSuccessTemplateConstant, gitRemoteAddFailureTemplateConstant, gitRemoteAddExecutionFailureTemplateConstant}
		leadingArguments = []any{
			formatter.ensureValue(formatter.argumentAtIndex(arguments, 2)),
			formatter.ensureValue(formatter.argumentAtIndex(arguments, 3)),
			workingDirectory,
		}
	case gitPushSubcommandNameConstant:
		remoteName, references := formatter.extractRemoteAndReferences(arguments[1:])
		templates = [4]string{gitPushStartTemplateConstant, gitPushSuccessTemplateConstant, gitPushFailureTemplateConstant, gitPushExecutionFailureTemplateConstant}
		leadingArguments = []any{formatter.ensureValue(strings.Join(references, ", ")), formatter.ensureValue(remoteName), workingDirectory}
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch stage {
	case messageStageStart, messageStageSuccess:
		return fmt.Sprintf(templates[stage], leadingArguments...)
	case messageStageFailure:
		return fmt.Sprintf(templates[stage], append(leadingArguments, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))...)
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates[stage], append(leadingArguments, formatter.describeFailure(failure))...)
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = commandLabel + commandArgumentsJoinSeparatorConstant + strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant)
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return strings.TrimSpace(arguments[index])
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) extractRemoteAndReferences(arguments []string) (string, []string) {
	remoteName := emptyStringConstant
	references := []string{}
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		if len(remoteName) == 0 {
			remoteName = trimmed
			continue
		}
		references = append(references, trimmed)
	}
	return remoteName, references
}

func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		return trimmed
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) extractCommitMessage(arguments []string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == gitMessageFlagConstant && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return fallbackUnknownValueLabelConstant
}
