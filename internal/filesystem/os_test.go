package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ginit/internal/filesystem"
)

func TestOSFileSystemTouch(testInstance *testing.T) {
	testCases := []struct {
		name            string
		existingContent *string
		expectedContent string
	}{
		{
			name:            "creates_missing_file",
			expectedContent: "",
		},
		{
			name:            "preserves_existing_content",
			existingContent: func() *string { content := "dist"; return &content }(),
			expectedContent: "dist",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			targetPath := filepath.Join(testInstance.TempDir(), ".gitignore")
			if testCase.existingContent != nil {
				require.NoError(testInstance, os.WriteFile(targetPath, []byte(*testCase.existingContent), 0o644))
			}

			fileSystem := filesystem.OSFileSystem{}
			require.NoError(testInstance, fileSystem.Touch(targetPath))

			content, readError := os.ReadFile(targetPath)
			require.NoError(testInstance, readError)
			require.Equal(testInstance, testCase.expectedContent, string(content))
		})
	}
}

func TestOSFileSystemTouchFailsForMissingParent(testInstance *testing.T) {
	fileSystem := filesystem.OSFileSystem{}
	touchError := fileSystem.Touch(filepath.Join(testInstance.TempDir(), "missing", ".gitignore"))
	require.Error(testInstance, touchError)
}

func TestOSFileSystemReadDirSortsEntries(testInstance *testing.T) {
	directory := testInstance.TempDir()
	for _, name := range []string{"b.txt", "a.txt"} {
		require.NoError(testInstance, os.WriteFile(filepath.Join(directory, name), nil, 0o644))
	}

	entries, readError := filesystem.OSFileSystem{}.ReadDir(directory)
	require.NoError(testInstance, readError)
	require.Len(testInstance, entries, 2)
	require.Equal(testInstance, "a.txt", entries[0].Name())
	require.Equal(testInstance, "b.txt", entries[1].Name())
}
