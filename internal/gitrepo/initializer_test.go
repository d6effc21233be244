package gitrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/ginit/internal/execshell"
	"github.com/temirov/ginit/internal/gitrepo"
)

const (
	testWorkingDirectoryConstant = "/workspace/project"
	testRemoteURLConstant        = "git@github.com:octo/demo.git"
)

type recordingGitExecutor struct {
	recordedDetails []execshell.CommandDetails
	failOnCall      int
	failure         error
}

func (executor *recordingGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if executor.failOnCall == len(executor.recordedDetails) {
		return execshell.ExecutionResult{}, executor.failure
	}
	return execshell.ExecutionResult{}, nil
}

func (executor *recordingGitExecutor) arguments() [][]string {
	recordedArguments := make([][]string, 0, len(executor.recordedDetails))
	for _, details := range executor.recordedDetails {
		recordedArguments = append(recordedArguments, details.Arguments)
	}
	return recordedArguments
}

func TestInitializerRunsStepsInOrder(testInstance *testing.T) {
	testCases := []struct {
		name              string
		options           gitrepo.Options
		expectedArguments [][]string
	}{
		{
			name:    "classic_defaults",
			options: gitrepo.Options{},
			expectedArguments: [][]string{
				{"init", "--initial-branch=master"},
				{"add", ".gitignore"},
				{"add", "./*"},
				{"commit", "-m", "Initial commit"},
				{"remote", "add", "origin", testRemoteURLConstant},
				{"push", "origin", "master"},
			},
		},
		{
			name:    "configured_branch_and_remote",
			options: gitrepo.Options{Branch: "main", RemoteName: "upstream", CommitMessage: "Bootstrap", IgnoreFileName: ".ignore"},
			expectedArguments: [][]string{
				{"init", "--initial-branch=main"},
				{"add", ".ignore"},
				{"add", "./*"},
				{"commit", "-m", "Bootstrap"},
				{"remote", "add", "upstream", testRemoteURLConstant},
				{"push", "upstream", "main"},
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingGitExecutor{}
			initializer, initializerError := gitrepo.NewInitializer(nil, executor)
			require.NoError(testInstance, initializerError)

			stage, setupError := initializer.Setup(context.Background(), testWorkingDirectoryConstant, testRemoteURLConstant, testCase.options)
			require.NoError(testInstance, setupError)
			require.Equal(testInstance, gitrepo.StagePushed, stage)
			require.Equal(testInstance, testCase.expectedArguments, executor.arguments())
			for _, details := range executor.recordedDetails {
				require.Equal(testInstance, testWorkingDirectoryConstant, details.WorkingDirectory)
			}
		})
	}
}

func TestInitializerStopsAtFirstFailure(testInstance *testing.T) {
	gitFailure := errors.New("git exploded")

	testCases := []struct {
		name              string
		failOnCall        int
		expectedLastStage gitrepo.Stage
	}{
		{name: "init_fails", failOnCall: 1, expectedLastStage: gitrepo.StageUninitialized},
		{name: "add_ignore_fails", failOnCall: 2, expectedLastStage: gitrepo.StageInitialized},
		{name: "add_all_fails", failOnCall: 3, expectedLastStage: gitrepo.StageStagedIgnore},
		{name: "commit_fails", failOnCall: 4, expectedLastStage: gitrepo.StageStagedAll},
		{name: "remote_fails", failOnCall: 5, expectedLastStage: gitrepo.StageCommitted},
		{name: "push_fails", failOnCall: 6, expectedLastStage: gitrepo.StageRemoteAdded},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingGitExecutor{failOnCall: testCase.failOnCall, failure: gitFailure}
			initializer, initializerError := gitrepo.NewInitializer(nil, executor)
			require.NoError(testInstance, initializerError)

			stage, setupError := initializer.Setup(context.Background(), testWorkingDirectoryConstant, testRemoteURLConstant, gitrepo.Options{})
			require.Equal(testInstance, gitrepo.StageFailed, stage)
			require.ErrorIs(testInstance, setupError, gitFailure)

			var typedError gitrepo.SetupError
			require.ErrorAs(testInstance, setupError, &typedError)
			require.Equal(testInstance, testCase.expectedLastStage, typedError.Stage)
			require.Len(testInstance, executor.recordedDetails, testCase.failOnCall)
		})
	}
}

func TestInitializerRequiresRemoteURL(testInstance *testing.T) {
	executor := &recordingGitExecutor{}
	initializer, initializerError := gitrepo.NewInitializer(nil, executor)
	require.NoError(testInstance, initializerError)

	stage, setupError := initializer.Setup(context.Background(), testWorkingDirectoryConstant, "  ", gitrepo.Options{})
	require.Equal(testInstance, gitrepo.StageFailed, stage)
	require.Error(testInstance, setupError)
	require.Empty(testInstance, executor.recordedDetails)
}

func TestInitializerLogsRemoteAndStages(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	initializer, initializerError := gitrepo.NewInitializer(zap.New(observerCore), &recordingGitExecutor{})
	require.NoError(testInstance, initializerError)

	_, setupError := initializer.Setup(context.Background(), testWorkingDirectoryConstant, testRemoteURLConstant, gitrepo.Options{})
	require.NoError(testInstance, setupError)

	startedEntries := observedLogs.FilterMessage("repository setup started").All()
	require.Len(testInstance, startedEntries, 1)
	require.Equal(testInstance, "octo/demo", startedEntries[0].ContextMap()["remote_repository"])
	require.Equal(testInstance, 6, observedLogs.FilterMessage("repository setup stage reached").Len())
}

func TestNewInitializerRequiresExecutor(testInstance *testing.T) {
	_, initializerError := gitrepo.NewInitializer(nil, nil)
	require.ErrorIs(testInstance, initializerError, gitrepo.ErrExecutorNotConfigured)
}
