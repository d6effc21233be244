// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap logging and fans command
// lifecycle events out to CommandEventObserver implementations. OSCommandRunner
// is the os/exec backed runner; CommandMessageFormatter turns git invocations
// into sentences suitable for progress output.
package execshell
