package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ginit/internal/utils"
)

func TestCommandContextAccessorRoundTrip(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, configurationAvailable := accessor.ConfigurationFilePath(context.Background())
	require.False(testInstance, configurationAvailable)

	executionContext := accessor.WithConfigurationFilePath(context.Background(), "/tmp/config.yaml")
	executionContext = accessor.WithRunIdentifier(executionContext, "run-1")

	configurationFilePath, configurationAvailable := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, configurationAvailable)
	require.Equal(testInstance, "/tmp/config.yaml", configurationFilePath)

	runIdentifier, runIdentifierAvailable := accessor.RunIdentifier(executionContext)
	require.True(testInstance, runIdentifierAvailable)
	require.Equal(testInstance, "run-1", runIdentifier)
}
