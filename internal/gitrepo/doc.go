// Package gitrepo turns a freshly created GitHub repository into a local one.
//
// Initializer runs the git steps in order (init, stage the ignore file, stage
// everything else, commit, add the remote, push) and reports the stage that
// failed. ParseRemoteURL describes remotes for logging.
package gitrepo
