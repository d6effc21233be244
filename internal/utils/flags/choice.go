// Package flags renders and validates choice-valued Cobra flags.
package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderPrefix      = "<"
	choicePlaceholderSuffix      = ">"
	choiceSeparatorLiteral       = "|"
	choiceUsageEmptyTemplate     = "`%s`"
	choiceUsageFullTemplate      = "`%s` %s"
	invalidChoiceMessageTemplate = "invalid value %q for --%s: expected one of %s"
	choiceListSeparatorLiteral   = ", "
)

// InvalidChoiceError reports a flag value outside the accepted choices.
type InvalidChoiceError struct {
	FlagName string
	Value    string
	Choices  []string
}

// Error describes the rejected value.
func (choiceError InvalidChoiceError) Error() string {
	return fmt.Sprintf(invalidChoiceMessageTemplate, choiceError.Value, choiceError.FlagName, strings.Join(choiceError.Choices, choiceListSeparatorLiteral))
}

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := buildChoicePlaceholder(defaultChoice, choices)
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// ParseChoice normalizes value case-insensitively against choices.
func ParseChoice(flagName string, value string, choices []string) (string, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	for _, choice := range choices {
		if strings.ToLower(strings.TrimSpace(choice)) == normalizedValue && len(normalizedValue) > 0 {
			return strings.TrimSpace(choice), nil
		}
	}
	return "", InvalidChoiceError{FlagName: flagName, Value: value, Choices: choices}
}

func buildChoicePlaceholder(defaultChoice string, choices []string) string {
	highlightedChoices := highlightDefaultChoice(defaultChoice, choices)
	return choicePlaceholderPrefix + strings.Join(highlightedChoices, choiceSeparatorLiteral) + choicePlaceholderSuffix
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		if len(trimmedChoice) == 0 {
			continue
		}

		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}

		displayValue := trimmedChoice
		if normalizedChoice == normalizedDefault && len(normalizedChoice) > 0 {
			displayValue = strings.ToUpper(trimmedChoice)
		}

		highlighted = append(highlighted, displayValue)
		seen[normalizedChoice] = struct{}{}
	}

	return highlighted
}
