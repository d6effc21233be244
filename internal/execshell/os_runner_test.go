package execshell_test

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ginit/internal/execshell"
)

const testShellExecutableConstant = execshell.CommandName("sh")

func TestOSCommandRunnerRun(testInstance *testing.T) {
	if _, lookupError := exec.LookPath(string(testShellExecutableConstant)); lookupError != nil {
		testInstance.Skip("sh is not available")
	}

	testCases := []struct {
		name           string
		details        execshell.CommandDetails
		expectedResult execshell.ExecutionResult
	}{
		{
			name:           "captures_standard_output",
			details:        execshell.CommandDetails{Arguments: []string{"-c", "printf hello"}},
			expectedResult: execshell.ExecutionResult{StandardOutput: "hello"},
		},
		{
			name:           "reports_exit_code",
			details:        execshell.CommandDetails{Arguments: []string{"-c", "printf oops >&2; exit 3"}},
			expectedResult: execshell.ExecutionResult{StandardError: "oops", ExitCode: 3},
		},
		{
			name: "passes_environment_and_input",
			details: execshell.CommandDetails{
				Arguments:            []string{"-c", "printf \"$GINIT_TEST_VALUE\"; cat"},
				EnvironmentVariables: map[string]string{"GINIT_TEST_VALUE": "env-"},
				StandardInput:        []byte("stdin"),
			},
			expectedResult: execshell.ExecutionResult{StandardOutput: "env-stdin"},
		},
		{
			name:           "honors_working_directory",
			details:        execshell.CommandDetails{Arguments: []string{"-c", "ls"}, WorkingDirectory: testInstance.TempDir()},
			expectedResult: execshell.ExecutionResult{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			runner := execshell.NewOSCommandRunner()
			executionResult, runError := runner.Run(context.Background(), execshell.ShellCommand{Name: testShellExecutableConstant, Details: testCase.details})
			require.NoError(testInstance, runError)
			require.Equal(testInstance, testCase.expectedResult, executionResult)
		})
	}
}

func TestOSCommandRunnerReturnsContextError(testInstance *testing.T) {
	if _, lookupError := exec.LookPath(string(testShellExecutableConstant)); lookupError != nil {
		testInstance.Skip("sh is not available")
	}

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	runner := execshell.NewOSCommandRunner()
	_, runError := runner.Run(cancelledContext, execshell.ShellCommand{Name: testShellExecutableConstant, Details: execshell.CommandDetails{Arguments: []string{"-c", "true"}}})
	require.ErrorIs(testInstance, runError, context.Canceled)
}
