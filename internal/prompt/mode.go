package prompt

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Mode selects how questions are presented.
type Mode string

// Supported prompt modes.
const (
	ModeAuto Mode = "auto"
	ModeForm Mode = "form"
	ModeLine Mode = "line"
)

const unsupportedModeTemplateConstant = "unsupported prompt mode %q: expected auto, form, or line"

// ParseMode normalizes a configured mode; blank means auto.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeForm:
		return ModeForm, nil
	case ModeLine:
		return ModeLine, nil
	default:
		return "", fmt.Errorf(unsupportedModeTemplateConstant, value)
	}
}

// NewTerminalRunner picks a Runner for the given streams. Auto mode uses forms only
// when both streams are terminals.
func NewTerminalRunner(mode Mode, accessible bool, input *os.File, output *os.File) Runner {
	inputIsTerminal := isTerminal(input)
	if mode == ModeForm || (mode == ModeAuto && inputIsTerminal && isTerminal(output)) {
		return NewFormRunner(accessible, input, output)
	}

	var secretReader SecretReader
	if inputIsTerminal {
		secretReader = func() ([]byte, error) {
			return term.ReadPassword(int(input.Fd()))
		}
	}
	return NewLineRunner(input, output, secretReader)
}

func isTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
