package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

const (
	questionTemplateConstant             = "? %s "
	defaultSuffixTemplateConstant        = "(%s) "
	choiceLineTemplateConstant           = "  %d) %s\n"
	multiChoiceLineTemplateConstant      = "  %d) [%s] %s\n"
	singleChoiceAnswerTemplateConstant   = "Answer (%s): "
	multiChoiceAnswerPromptConstant      = "Answer (numbers or names separated by commas, blank keeps [x], - clears): "
	validationMessageTemplateConstant    = ">> %s\n"
	invalidChoiceMessageTemplateConstant = "Please choose from: %s"
	unknownChoiceMessageTemplateConstant = "Unknown choice %q"
	selectedMarkerConstant               = "x"
	unselectedMarkerConstant             = " "
	clearSelectionTokenConstant          = "-"
	choiceTokenSeparatorConstant         = ","
	choiceListSeparatorConstant          = ", "
	newlineConstant                      = "\n"
)

// SecretReader reads a secret without echoing it.
type SecretReader func() ([]byte, error)

// LineRunner asks questions one line at a time over plain reader and writer streams.
type LineRunner struct {
	reader       *bufio.Reader
	writer       io.Writer
	secretReader SecretReader
}

type lineReadResult struct {
	line      string
	readError error
}

// NewLineRunner constructs a runner reading answers from input and writing questions to output.
// Secrets are read as ordinary lines unless a SecretReader is supplied.
func NewLineRunner(input io.Reader, output io.Writer, secretReader SecretReader) *LineRunner {
	if output == nil {
		output = io.Discard
	}
	return &LineRunner{reader: bufio.NewReader(input), writer: output, secretReader: secretReader}
}

// Run asks every field in order. End of input or context cancellation yields ErrCancelled.
func (runner *LineRunner) Run(executionContext context.Context, fields []Field) (Answers, error) {
	if validationError := ValidateFields(fields); validationError != nil {
		return Answers{}, validationError
	}

	answers := NewAnswers()
	for _, field := range fields {
		var askError error
		switch field.Kind {
		case KindText, KindSecret:
			var value string
			value, askError = runner.askText(executionContext, field)
			answers.SetValue(field.Name, value)
		case KindSingleChoice:
			var value string
			value, askError = runner.askSingleChoice(executionContext, field)
			answers.SetValue(field.Name, value)
		case KindMultiChoice:
			var selections []string
			selections, askError = runner.askMultiChoice(executionContext, field)
			answers.SetSelections(field.Name, selections)
		}
		if askError != nil {
			return Answers{}, askError
		}
	}
	return answers, nil
}

func (runner *LineRunner) askText(executionContext context.Context, field Field) (string, error) {
	for {
		runner.write(fmt.Sprintf(questionTemplateConstant, field.Message))
		if field.Kind == KindText && len(field.DefaultValue) > 0 {
			runner.write(fmt.Sprintf(defaultSuffixTemplateConstant, field.DefaultValue))
		}

		var answer string
		var readError error
		if field.Kind == KindSecret {
			answer, readError = runner.readSecret(executionContext)
		} else {
			answer, readError = runner.readLine(executionContext)
		}
		if readError != nil {
			return "", readError
		}

		answer = strings.TrimSpace(answer)
		if len(answer) == 0 && field.Kind == KindText {
			answer = field.DefaultValue
		}

		if validationError := field.validateAnswer(answer); validationError != nil {
			runner.write(fmt.Sprintf(validationMessageTemplateConstant, validationError.Error()))
			continue
		}
		return answer, nil
	}
}

func (runner *LineRunner) askSingleChoice(executionContext context.Context, field Field) (string, error) {
	for {
		runner.write(fmt.Sprintf(questionTemplateConstant, field.Message) + newlineConstant)
		for choiceIndex, choice := range field.Choices {
			runner.write(fmt.Sprintf(choiceLineTemplateConstant, choiceIndex+1, choice))
		}
		runner.write(fmt.Sprintf(singleChoiceAnswerTemplateConstant, field.DefaultValue))

		line, readError := runner.readLine(executionContext)
		if readError != nil {
			return "", readError
		}

		token := strings.TrimSpace(line)
		answer := field.DefaultValue
		if len(token) > 0 {
			resolvedChoice, resolved := resolveChoice(field.Choices, token)
			if !resolved {
				runner.write(fmt.Sprintf(validationMessageTemplateConstant, fmt.Sprintf(invalidChoiceMessageTemplateConstant, strings.Join(field.Choices, choiceListSeparatorConstant))))
				continue
			}
			answer = resolvedChoice
		}

		if validationError := field.validateAnswer(answer); validationError != nil {
			runner.write(fmt.Sprintf(validationMessageTemplateConstant, validationError.Error()))
			continue
		}
		return answer, nil
	}
}

func (runner *LineRunner) askMultiChoice(executionContext context.Context, field Field) ([]string, error) {
	preselected := field.preselected()
	for {
		runner.write(fmt.Sprintf(questionTemplateConstant, field.Message) + newlineConstant)
		for choiceIndex, choice := range field.Choices {
			marker := unselectedMarkerConstant
			if slices.Contains(preselected, choice) {
				marker = selectedMarkerConstant
			}
			runner.write(fmt.Sprintf(multiChoiceLineTemplateConstant, choiceIndex+1, marker, choice))
		}
		runner.write(multiChoiceAnswerPromptConstant)

		line, readError := runner.readLine(executionContext)
		if readError != nil {
			return nil, readError
		}

		trimmedLine := strings.TrimSpace(line)
		switch trimmedLine {
		case "":
			return preselected, nil
		case clearSelectionTokenConstant:
			return []string{}, nil
		}

		selections, unknownToken := parseSelections(field.Choices, trimmedLine)
		if len(unknownToken) > 0 {
			runner.write(fmt.Sprintf(validationMessageTemplateConstant, fmt.Sprintf(unknownChoiceMessageTemplateConstant, unknownToken)))
			continue
		}
		return selections, nil
	}
}

// readLine blocks on input in a goroutine so an interrupt can abandon the read.
func (runner *LineRunner) readLine(executionContext context.Context) (string, error) {
	resultChannel := make(chan lineReadResult, 1)
	go func() {
		line, readError := runner.reader.ReadString('\n')
		resultChannel <- lineReadResult{line: line, readError: readError}
	}()

	select {
	case <-executionContext.Done():
		runner.write(newlineConstant)
		return "", fmt.Errorf("%w: %w", ErrCancelled, executionContext.Err())
	case result := <-resultChannel:
		if result.readError != nil {
			if errors.Is(result.readError, io.EOF) && len(result.line) > 0 {
				return result.line, nil
			}
			if errors.Is(result.readError, io.EOF) {
				runner.write(newlineConstant)
				return "", ErrCancelled
			}
			return "", result.readError
		}
		return result.line, nil
	}
}

func (runner *LineRunner) readSecret(executionContext context.Context) (string, error) {
	if runner.secretReader == nil {
		return runner.readLine(executionContext)
	}

	resultChannel := make(chan lineReadResult, 1)
	go func() {
		secret, readError := runner.secretReader()
		resultChannel <- lineReadResult{line: string(secret), readError: readError}
	}()

	select {
	case <-executionContext.Done():
		runner.write(newlineConstant)
		return "", fmt.Errorf("%w: %w", ErrCancelled, executionContext.Err())
	case result := <-resultChannel:
		runner.write(newlineConstant)
		if errors.Is(result.readError, io.EOF) {
			return "", ErrCancelled
		}
		return result.line, result.readError
	}
}

func (runner *LineRunner) write(text string) {
	_, _ = io.WriteString(runner.writer, text)
}

func resolveChoice(choices []string, token string) (string, bool) {
	if choiceNumber, parseError := strconv.Atoi(token); parseError == nil && choiceNumber >= 1 && choiceNumber <= len(choices) {
		return choices[choiceNumber-1], true
	}
	for _, choice := range choices {
		if strings.EqualFold(choice, token) {
			return choice, true
		}
	}
	return "", false
}

// parseSelections returns the chosen entries in choice order, or the first token that matches nothing.
func parseSelections(choices []string, line string) ([]string, string) {
	chosen := make(map[string]struct{})
	for _, rawToken := range strings.Split(line, choiceTokenSeparatorConstant) {
		token := strings.TrimSpace(rawToken)
		if len(token) == 0 {
			continue
		}
		resolvedChoice, resolved := resolveChoice(choices, token)
		if !resolved {
			return nil, token
		}
		chosen[resolvedChoice] = struct{}{}
	}

	selections := make([]string, 0, len(chosen))
	for _, choice := range choices {
		if _, isChosen := chosen[choice]; isChosen {
			selections = append(selections, choice)
		}
	}
	return selections, ""
}
