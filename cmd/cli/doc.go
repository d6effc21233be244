// Package cli constructs the ginit command-line interface: the Cobra root
// command that bootstraps a repository, its logout subcommand, the layered
// configuration loader, and the structured logger every run shares.
package cli
