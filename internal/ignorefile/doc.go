// Package ignorefile builds the initial .gitignore from the entries the user
// selects in the working directory.
package ignorefile
