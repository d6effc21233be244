package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

const (
	successColorConstant            = lipgloss.Color("2")
	failureColorConstant            = lipgloss.Color("1")
	bannerColorConstant             = lipgloss.Color("3")
	hintColorConstant               = lipgloss.Color("8")
	lineTemplateConstant            = "%s\n"
	bannerPaddingHorizontalConstant = 2
	bannerPaddingVerticalConstant   = 0
	bannerMarginBottomConstant      = 1
)

// Console writes user-facing messages with terminal styling.
// Styling degrades to plain text when the writer is not a color-capable terminal.
type Console struct {
	writer       io.Writer
	successStyle lipgloss.Style
	failureStyle lipgloss.Style
	hintStyle    lipgloss.Style
	bannerStyle  lipgloss.Style
}

// NewConsole constructs a Console rendering for the provided writer.
func NewConsole(writer io.Writer) *Console {
	if writer == nil {
		writer = os.Stdout
	}
	renderer := lipgloss.NewRenderer(writer)
	return &Console{
		writer:       writer,
		successStyle: renderer.NewStyle().Foreground(successColorConstant),
		failureStyle: renderer.NewStyle().Foreground(failureColorConstant),
		hintStyle:    renderer.NewStyle().Foreground(hintColorConstant),
		bannerStyle: renderer.NewStyle().
			Foreground(bannerColorConstant).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(bannerColorConstant).
			Padding(bannerPaddingVerticalConstant, bannerPaddingHorizontalConstant).
			MarginBottom(bannerMarginBottomConstant),
	}
}

// Banner prints the application title in a framed box.
func (console *Console) Banner(title string) {
	console.writeLine(console.bannerStyle.Render(title))
}

// Success prints a message in green.
func (console *Console) Success(message string) {
	console.writeLine(console.successStyle.Render(message))
}

// Failure prints a message in red.
func (console *Console) Failure(message string) {
	console.writeLine(console.failureStyle.Render(message))
}

// Hint prints a de-emphasized message.
func (console *Console) Hint(message string) {
	console.writeLine(console.hintStyle.Render(message))
}

// Plain prints an unstyled message.
func (console *Console) Plain(message string) {
	console.writeLine(message)
}

func (console *Console) writeLine(text string) {
	_, _ = fmt.Fprintf(console.writer, lineTemplateConstant, text)
}
