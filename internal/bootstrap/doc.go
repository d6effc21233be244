// Package bootstrap wires the ginit flow: precondition check, token resolution,
// remote repository creation, ignore file selection, and the local git setup
// with its first push. Service runs those steps as an ordered railway; the
// command builders expose it and the logout helper through cobra.
package bootstrap
