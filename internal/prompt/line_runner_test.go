package prompt_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ginit/internal/prompt"
)

const (
	testNameFieldConstant        = "name"
	testPasswordFieldConstant    = "password"
	testVisibilityFieldConstant  = "visibility"
	testIgnoreFieldConstant      = "ignore"
	testNameValidationConstant   = "Please enter a name for the repository"
	testPasswordValidationString = "Please enter password"
)

func repositoryFields() []prompt.Field {
	return []prompt.Field{
		{
			Name:         testNameFieldConstant,
			Kind:         prompt.KindText,
			Message:      "Enter a name for the repository:",
			DefaultValue: "demo",
			Validator:    prompt.RequireNonEmpty(testNameValidationConstant),
		},
		{
			Name:         testVisibilityFieldConstant,
			Kind:         prompt.KindSingleChoice,
			Message:      "Public or private:",
			DefaultValue: "public",
			Choices:      []string{"public", "private"},
		},
	}
}

func TestLineRunnerCollectsAnswers(testInstance *testing.T) {
	testCases := []struct {
		name               string
		input              string
		expectedName       string
		expectedVisibility string
	}{
		{name: "defaults_on_blank_lines", input: "\n\n", expectedName: "demo", expectedVisibility: "public"},
		{name: "explicit_values", input: "widgets\nprivate\n", expectedName: "widgets", expectedVisibility: "private"},
		{name: "choice_by_number", input: "widgets\n2\n", expectedName: "widgets", expectedVisibility: "private"},
		{name: "choice_case_insensitive", input: "widgets\nPRIVATE\n", expectedName: "widgets", expectedVisibility: "private"},
		{name: "invalid_choice_reprompts", input: "widgets\ninternal\npublic\n", expectedName: "widgets", expectedVisibility: "public"},
		{name: "final_line_without_newline", input: "widgets\nprivate", expectedName: "widgets", expectedVisibility: "private"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output := &bytes.Buffer{}
			runner := prompt.NewLineRunner(strings.NewReader(testCase.input), output, nil)

			answers, runError := runner.Run(context.Background(), repositoryFields())
			require.NoError(testInstance, runError)
			require.Equal(testInstance, testCase.expectedName, answers.Value(testNameFieldConstant))
			require.Equal(testInstance, testCase.expectedVisibility, answers.Value(testVisibilityFieldConstant))
		})
	}
}

func TestLineRunnerRepromptsBlankRequiredText(testInstance *testing.T) {
	fields := []prompt.Field{{
		Name:      testNameFieldConstant,
		Kind:      prompt.KindText,
		Message:   "Enter a name for the repository:",
		Validator: prompt.RequireNonEmpty(testNameValidationConstant),
	}}

	output := &bytes.Buffer{}
	runner := prompt.NewLineRunner(strings.NewReader("   \nwidgets\n"), output, nil)

	answers, runError := runner.Run(context.Background(), fields)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, "widgets", answers.Value(testNameFieldConstant))
	require.Contains(testInstance, output.String(), ">> "+testNameValidationConstant)
	require.Equal(testInstance, 2, strings.Count(output.String(), "Enter a name for the repository:"))
}

func TestLineRunnerReadsSecretsThroughSecretReader(testInstance *testing.T) {
	fields := []prompt.Field{{
		Name:      testPasswordFieldConstant,
		Kind:      prompt.KindSecret,
		Message:   "Enter your password:",
		Validator: prompt.RequireNonEmpty(testPasswordValidationString),
	}}

	secrets := []string{"", "hunter2"}
	secretReader := func() ([]byte, error) {
		secret := secrets[0]
		secrets = secrets[1:]
		return []byte(secret), nil
	}

	output := &bytes.Buffer{}
	runner := prompt.NewLineRunner(strings.NewReader(""), output, secretReader)

	answers, runError := runner.Run(context.Background(), fields)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, "hunter2", answers.Value(testPasswordFieldConstant))
	require.Contains(testInstance, output.String(), testPasswordValidationString)
	require.NotContains(testInstance, output.String(), "hunter2")
}

func TestLineRunnerMultiChoice(testInstance *testing.T) {
	field := prompt.Field{
		Name:              testIgnoreFieldConstant,
		Kind:              prompt.KindMultiChoice,
		Message:           "Select the files and/or folders you wish to ignore:",
		Choices:           []string{"a.txt", "b.txt", "node_modules"},
		DefaultSelections: []string{"node_modules", "bower_components"},
	}

	testCases := []struct {
		name               string
		input              string
		expectedSelections []string
	}{
		{name: "blank_keeps_present_defaults", input: "\n", expectedSelections: []string{"node_modules"}},
		{name: "dash_clears", input: "-\n", expectedSelections: []string{}},
		{name: "names_and_numbers_in_choice_order", input: "node_modules, 1\n", expectedSelections: []string{"a.txt", "node_modules"}},
		{name: "unknown_token_reprompts", input: "zzz\nb.txt\n", expectedSelections: []string{"b.txt"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output := &bytes.Buffer{}
			runner := prompt.NewLineRunner(strings.NewReader(testCase.input), output, nil)

			answers, runError := runner.Run(context.Background(), []prompt.Field{field})
			require.NoError(testInstance, runError)
			require.Equal(testInstance, testCase.expectedSelections, answers.Selections(testIgnoreFieldConstant))
			require.Contains(testInstance, output.String(), "[x] node_modules")
			require.NotContains(testInstance, output.String(), "bower_components")
		})
	}
}

func TestLineRunnerCancellation(testInstance *testing.T) {
	testInstance.Run("end_of_input", func(testInstance *testing.T) {
		runner := prompt.NewLineRunner(strings.NewReader(""), io.Discard, nil)
		_, runError := runner.Run(context.Background(), repositoryFields())
		require.ErrorIs(testInstance, runError, prompt.ErrCancelled)
	})

	testInstance.Run("context_cancelled", func(testInstance *testing.T) {
		blockingReader, blockingWriter := io.Pipe()
		defer blockingWriter.Close()

		cancelledContext, cancel := context.WithCancel(context.Background())
		cancel()

		runner := prompt.NewLineRunner(blockingReader, io.Discard, nil)
		_, runError := runner.Run(cancelledContext, repositoryFields())
		require.ErrorIs(testInstance, runError, prompt.ErrCancelled)
		require.ErrorIs(testInstance, runError, context.Canceled)
	})
}

func TestLineRunnerRejectsInvalidFields(testInstance *testing.T) {
	testCases := []struct {
		name   string
		fields []prompt.Field
	}{
		{name: "missing_name", fields: []prompt.Field{{Kind: prompt.KindText, Message: "x"}}},
		{name: "missing_message", fields: []prompt.Field{{Name: "x", Kind: prompt.KindText}}},
		{name: "unknown_kind", fields: []prompt.Field{{Name: "x", Kind: "slider", Message: "x"}}},
		{name: "choice_without_choices", fields: []prompt.Field{{Name: "x", Kind: prompt.KindSingleChoice, Message: "x"}}},
		{name: "default_not_a_choice", fields: []prompt.Field{{Name: "x", Kind: prompt.KindSingleChoice, Message: "x", Choices: []string{"a"}, DefaultValue: "b"}}},
		{name: "duplicate_names", fields: []prompt.Field{{Name: "x", Kind: prompt.KindText, Message: "x"}, {Name: "x", Kind: prompt.KindText, Message: "y"}}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			runner := prompt.NewLineRunner(strings.NewReader("\n"), io.Discard, nil)
			_, runError := runner.Run(context.Background(), testCase.fields)

			var fieldError prompt.InvalidFieldError
			require.True(testInstance, errors.As(runError, &fieldError))
		})
	}
}

func TestParseMode(testInstance *testing.T) {
	for input, expected := range map[string]prompt.Mode{"": prompt.ModeAuto, "AUTO": prompt.ModeAuto, "form": prompt.ModeForm, " line ": prompt.ModeLine} {
		mode, parseError := prompt.ParseMode(input)
		require.NoError(testInstance, parseError)
		require.Equal(testInstance, expected, mode)
	}

	_, parseError := prompt.ParseMode("gui")
	require.Error(testInstance, parseError)
}
