package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/temirov/ginit/internal/execshell"
)

const (
	spinnerLineTemplateConstant = "%s %s"
	detailLineTemplateConstant  = "\n  %s"
	plainTitleTemplateConstant  = "%s\n"
	spinnerColorConstant        = lipgloss.Color("6")
)

// ProgressTracker runs an action while telling the user it is in progress.
type ProgressTracker interface {
	Track(executionContext context.Context, title string, action func(context.Context) error) error
}

type actionFinishedMsg struct{}

type detailMsg string

type spinnerModel struct {
	spinner     spinner.Model
	title       string
	detail      string
	detailStyle lipgloss.Style
	finished    bool
}

func newSpinnerModel(title string, renderer *lipgloss.Renderer) spinnerModel {
	spinnerInstance := spinner.New(spinner.WithSpinner(spinner.Dot))
	spinnerInstance.Style = renderer.NewStyle().Foreground(spinnerColorConstant)
	return spinnerModel{
		spinner:     spinnerInstance,
		title:       title,
		detailStyle: renderer.NewStyle().Foreground(hintColorConstant),
	}
}

func (model spinnerModel) Init() tea.Cmd {
	return model.spinner.Tick
}

func (model spinnerModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch typedMessage := message.(type) {
	case actionFinishedMsg:
		model.finished = true
		return model, tea.Quit
	case detailMsg:
		model.detail = string(typedMessage)
		return model, nil
	case spinner.TickMsg:
		var tickCommand tea.Cmd
		model.spinner, tickCommand = model.spinner.Update(typedMessage)
		return model, tickCommand
	default:
		return model, nil
	}
}

func (model spinnerModel) View() string {
	if model.finished {
		return ""
	}
	view := fmt.Sprintf(spinnerLineTemplateConstant, model.spinner.View(), model.title)
	if len(model.detail) > 0 {
		view += fmt.Sprintf(detailLineTemplateConstant, model.detailStyle.Render(model.detail))
	}
	return view
}

// ProgressIndicator shows an animated spinner on terminals and a plain title line elsewhere.
// It also observes shell commands so the spinner can name the git step currently running.
type ProgressIndicator struct {
	writer      io.Writer
	interactive bool
	renderer    *lipgloss.Renderer
	formatter   execshell.CommandMessageFormatter

	programMutex  sync.Mutex
	activeProgram *tea.Program
}

// NewProgressIndicator constructs an indicator for output, animating only when it is a terminal.
func NewProgressIndicator(output *os.File) *ProgressIndicator {
	if output == nil {
		output = os.Stdout
	}
	return newProgressIndicator(output, term.IsTerminal(int(output.Fd())))
}

// NewPlainProgressIndicator constructs a non-animated indicator.
func NewPlainProgressIndicator(writer io.Writer) *ProgressIndicator {
	return newProgressIndicator(writer, false)
}

func newProgressIndicator(writer io.Writer, interactive bool) *ProgressIndicator {
	return &ProgressIndicator{
		writer:      writer,
		interactive: interactive,
		renderer:    lipgloss.NewRenderer(writer),
	}
}

// Track runs action, returning its error. The spinner never outlives the action.
func (indicator *ProgressIndicator) Track(executionContext context.Context, title string, action func(context.Context) error) error {
	if !indicator.interactive {
		_, _ = fmt.Fprintf(indicator.writer, plainTitleTemplateConstant, title)
		return action(executionContext)
	}

	program := tea.NewProgram(
		newSpinnerModel(title, indicator.renderer),
		tea.WithOutput(indicator.writer),
		tea.WithInput(nil),
		tea.WithContext(executionContext),
		tea.WithoutSignalHandler(),
	)
	indicator.setActiveProgram(program)
	defer indicator.setActiveProgram(nil)

	actionResult := make(chan error, 1)
	go func() {
		actionResult <- action(executionContext)
		program.Send(actionFinishedMsg{})
	}()

	_, _ = program.Run()
	return <-actionResult
}

// CommandStarted shows the running git step under the spinner.
func (indicator *ProgressIndicator) CommandStarted(command execshell.ShellCommand) {
	indicator.sendDetail(indicator.formatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver.
func (indicator *ProgressIndicator) CommandCompleted(execshell.ShellCommand, execshell.ExecutionResult) {}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (indicator *ProgressIndicator) CommandExecutionFailed(execshell.ShellCommand, error) {}

func (indicator *ProgressIndicator) sendDetail(detail string) {
	indicator.programMutex.Lock()
	program := indicator.activeProgram
	indicator.programMutex.Unlock()
	if program != nil {
		program.Send(detailMsg(detail))
	}
}

func (indicator *ProgressIndicator) setActiveProgram(program *tea.Program) {
	indicator.programMutex.Lock()
	indicator.activeProgram = program
	indicator.programMutex.Unlock()
}
