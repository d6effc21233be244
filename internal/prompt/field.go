package prompt

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// FieldKind enumerates the supported question styles.
type FieldKind string

// Supported field kinds.
const (
	KindText         FieldKind = "text"
	KindSecret       FieldKind = "secret"
	KindSingleChoice FieldKind = "single_choice"
	KindMultiChoice  FieldKind = "multi_choice"
)

const (
	invalidFieldTemplateConstant     = "invalid prompt field %q: %s"
	missingNameMessageConstant       = "name is required"
	missingMessageMessageConstant    = "message is required"
	unknownKindMessageTemplate       = "unsupported kind %q"
	missingChoicesMessageConstant    = "choices are required"
	defaultNotAChoiceMessageTemplate = "default %q is not one of the choices"
	duplicateFieldMessageConstant    = "name is used more than once"
)

// ErrCancelled reports that the user aborted a prompt.
var ErrCancelled = errors.New("prompt cancelled")

// Validator checks a single answer. Returned error messages are shown to the user verbatim.
type Validator func(answer string) error

// Field declares one question.
type Field struct {
	Name              string
	Kind              FieldKind
	Message           string
	DefaultValue      string
	DefaultSelections []string
	Choices           []string
	Validator         Validator
}

// InvalidFieldError describes a structurally invalid field declaration.
type InvalidFieldError struct {
	FieldName string
	Message   string
}

// Error describes the invalid field.
func (fieldError InvalidFieldError) Error() string {
	return fmt.Sprintf(invalidFieldTemplateConstant, fieldError.FieldName, fieldError.Message)
}

// Runner asks the declared questions in order and collects the answers.
type Runner interface {
	Run(executionContext context.Context, fields []Field) (Answers, error)
}

// Answers holds collected responses keyed by field name.
type Answers struct {
	values     map[string]string
	selections map[string][]string
}

// NewAnswers constructs an empty answer set.
func NewAnswers() Answers {
	return Answers{values: map[string]string{}, selections: map[string][]string{}}
}

// Value returns the answer to a text, secret, or single choice field.
func (answers Answers) Value(fieldName string) string {
	return answers.values[fieldName]
}

// Selections returns the answer to a multi choice field.
func (answers Answers) Selections(fieldName string) []string {
	return slices.Clone(answers.selections[fieldName])
}

// SetValue records a scalar answer.
func (answers Answers) SetValue(fieldName string, value string) {
	answers.values[fieldName] = value
}

// SetSelections records a multi choice answer.
func (answers Answers) SetSelections(fieldName string, selections []string) {
	answers.selections[fieldName] = slices.Clone(selections)
}

// RequireNonEmpty builds a validator rejecting blank answers with the provided message.
func RequireNonEmpty(message string) Validator {
	return func(answer string) error {
		if len(strings.TrimSpace(answer)) == 0 {
			return errors.New(message)
		}
		return nil
	}
}

// ValidateFields checks every field declaration before any question is asked.
func ValidateFields(fields []Field) error {
	seenNames := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if validationError := field.validate(); validationError != nil {
			return validationError
		}
		if _, duplicate := seenNames[field.Name]; duplicate {
			return InvalidFieldError{FieldName: field.Name, Message: duplicateFieldMessageConstant}
		}
		seenNames[field.Name] = struct{}{}
	}
	return nil
}

func (field Field) validate() error {
	if len(strings.TrimSpace(field.Name)) == 0 {
		return InvalidFieldError{FieldName: field.Name, Message: missingNameMessageConstant}
	}
	if len(strings.TrimSpace(field.Message)) == 0 {
		return InvalidFieldError{FieldName: field.Name, Message: missingMessageMessageConstant}
	}

	switch field.Kind {
	case KindText, KindSecret:
		return nil
	case KindSingleChoice:
		if len(field.Choices) == 0 {
			return InvalidFieldError{FieldName: field.Name, Message: missingChoicesMessageConstant}
		}
		if len(field.DefaultValue) > 0 && !slices.Contains(field.Choices, field.DefaultValue) {
			return InvalidFieldError{FieldName: field.Name, Message: fmt.Sprintf(defaultNotAChoiceMessageTemplate, field.DefaultValue)}
		}
		return nil
	case KindMultiChoice:
		if len(field.Choices) == 0 {
			return InvalidFieldError{FieldName: field.Name, Message: missingChoicesMessageConstant}
		}
		return nil
	default:
		return InvalidFieldError{FieldName: field.Name, Message: fmt.Sprintf(unknownKindMessageTemplate, field.Kind)}
	}
}

// preselected keeps the default selections that are also choices, in choice order.
func (field Field) preselected() []string {
	selected := make([]string, 0, len(field.DefaultSelections))
	for _, choice := range field.Choices {
		if slices.Contains(field.DefaultSelections, choice) {
			selected = append(selected, choice)
		}
	}
	return selected
}

func (field Field) validateAnswer(answer string) error {
	if field.Validator == nil {
		return nil
	}
	return field.Validator(answer)
}
