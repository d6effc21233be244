package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"slices"
	"time"
)

const (
	environmentAssignmentSeparatorConstant = "="
	interruptGracePeriodConstant           = 5 * time.Second
)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the supplied command. Cancelling the context interrupts the process and,
// after a grace period, kills it; the context error is then returned.
// A non-zero exit status is reported through ExecutionResult.ExitCode rather than as an error.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	var capturedOutput, capturedError bytes.Buffer
	process := runner.prepare(executionContext, command)
	process.Stdout = &capturedOutput
	process.Stderr = &capturedError

	runError := process.Run()
	if contextError := executionContext.Err(); contextError != nil {
		return ExecutionResult{}, contextError
	}

	result := ExecutionResult{StandardOutput: capturedOutput.String(), StandardError: capturedError.String()}
	var exitError *exec.ExitError
	switch {
	case runError == nil:
		return result, nil
	case errors.As(runError, &exitError):
		result.ExitCode = exitError.ExitCode()
		return result, nil
	default:
		return ExecutionResult{}, runError
	}
}

func (runner *OSCommandRunner) prepare(executionContext context.Context, command ShellCommand) *exec.Cmd {
	process := exec.CommandContext(executionContext, string(command.Name), slices.Clone(command.Details.Arguments)...)
	process.Cancel = func() error {
		return process.Process.Signal(os.Interrupt)
	}
	process.WaitDelay = interruptGracePeriodConstant
	process.Dir = command.Details.WorkingDirectory

	if len(command.Details.EnvironmentVariables) > 0 {
		process.Env = os.Environ()
		for variableName, variableValue := range command.Details.EnvironmentVariables {
			process.Env = append(process.Env, variableName+environmentAssignmentSeparatorConstant+variableValue)
		}
	}
	if len(command.Details.StandardInput) > 0 {
		process.Stdin = bytes.NewReader(command.Details.StandardInput)
	}
	return process
}
