package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
)

const formFailureTemplateConstant = "interactive form failed: %w"

// FormRunner asks questions through interactive terminal forms.
type FormRunner struct {
	accessible bool
	input      io.Reader
	output     io.Writer
}

type fieldBinding struct {
	field      Field
	value      *string
	selections *[]string
}

// NewFormRunner constructs a form runner. Nil streams fall back to the terminal.
// Accessible mode replaces the full-screen widgets with sequential plain prompts.
func NewFormRunner(accessible bool, input io.Reader, output io.Writer) *FormRunner {
	return &FormRunner{accessible: accessible, input: input, output: output}
}

// Run shows one form group per field. Aborting the form yields ErrCancelled.
func (runner *FormRunner) Run(executionContext context.Context, fields []Field) (Answers, error) {
	if validationError := ValidateFields(fields); validationError != nil {
		return Answers{}, validationError
	}

	bindings := make([]fieldBinding, 0, len(fields))
	groups := make([]*huh.Group, 0, len(fields))
	for _, field := range fields {
		binding, formField := buildFormField(field)
		bindings = append(bindings, binding)
		groups = append(groups, huh.NewGroup(formField))
	}

	form := huh.NewForm(groups...).WithAccessible(runner.accessible).WithShowHelp(true)
	if runner.input != nil {
		form = form.WithInput(runner.input)
	}
	if runner.output != nil {
		form = form.WithOutput(runner.output)
	}

	if runError := form.RunWithContext(executionContext); runError != nil {
		return Answers{}, translateFormError(executionContext, runError)
	}

	return collectAnswers(bindings), nil
}

func buildFormField(field Field) (fieldBinding, huh.Field) {
	switch field.Kind {
	case KindSingleChoice:
		value := field.DefaultValue
		selectField := huh.NewSelect[string]().
			Title(field.Message).
			Options(huh.NewOptions(field.Choices...)...).
			Validate(field.validateAnswer).
			Value(&value)
		return fieldBinding{field: field, value: &value}, selectField
	case KindMultiChoice:
		preselected := field.preselected()
		selections := append([]string{}, preselected...)
		options := make([]huh.Option[string], 0, len(field.Choices))
		for _, choice := range field.Choices {
			options = append(options, huh.NewOption(choice, choice).Selected(slices.Contains(preselected, choice)))
		}
		multiSelectField := huh.NewMultiSelect[string]().
			Title(field.Message).
			Options(options...).
			Value(&selections)
		return fieldBinding{field: field, selections: &selections}, multiSelectField
	default:
		value := ""
		if field.Kind == KindText {
			value = field.DefaultValue
		}
		inputField := huh.NewInput().
			Title(field.Message).
			Validate(func(answer string) error {
				return field.validateAnswer(strings.TrimSpace(answer))
			}).
			Value(&value)
		if field.Kind == KindSecret {
			inputField = inputField.EchoMode(huh.EchoModePassword)
		}
		return fieldBinding{field: field, value: &value}, inputField
	}
}

func collectAnswers(bindings []fieldBinding) Answers {
	answers := NewAnswers()
	for _, binding := range bindings {
		if binding.selections != nil {
			answers.SetSelections(binding.field.Name, *binding.selections)
			continue
		}
		answers.SetValue(binding.field.Name, strings.TrimSpace(*binding.value))
	}
	return answers
}

func translateFormError(executionContext context.Context, runError error) error {
	switch {
	case errors.Is(runError, huh.ErrUserAborted):
		return ErrCancelled
	case executionContext.Err() != nil:
		return fmt.Errorf("%w: %w", ErrCancelled, executionContext.Err())
	default:
		return fmt.Errorf(formFailureTemplateConstant, runError)
	}
}
