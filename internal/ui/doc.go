// Package ui renders what the user sees while ginit runs.
//
// Console prints styled status lines, ProgressIndicator shows a spinner around
// long-running steps, and ConsoleCommandEventLogger turns git command events
// into readable log lines. Structured telemetry stays with the zap loggers.
package ui
