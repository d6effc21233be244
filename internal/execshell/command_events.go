package execshell

// CommandEventObserver is told about each command the executor runs.
// Progress displays and console loggers implement it.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed means no exit code was obtained (missing binary, cancelled context).
	CommandExecutionFailed(command ShellCommand, failure error)
}

// observerGroup fans events out in registration order.
type observerGroup []CommandEventObserver

func newObserverGroup(observers []CommandEventObserver) observerGroup {
	group := make(observerGroup, 0, len(observers))
	for _, observer := range observers {
		if observer != nil {
			group = append(group, observer)
		}
	}
	return group
}

func (group observerGroup) CommandStarted(command ShellCommand) {
	for _, observer := range group {
		observer.CommandStarted(command)
	}
}

func (group observerGroup) CommandCompleted(command ShellCommand, result ExecutionResult) {
	for _, observer := range group {
		observer.CommandCompleted(command, result)
	}
}

func (group observerGroup) CommandExecutionFailed(command ShellCommand, failure error) {
	for _, observer := range group {
		observer.CommandExecutionFailed(command, failure)
	}
}
