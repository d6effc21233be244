// Package workspace inspects the directory ginit is invoked in: whether it is
// already a git repository and which name it suggests for a new one.
package workspace
