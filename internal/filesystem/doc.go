// Package filesystem abstracts the filesystem operations used while bootstrapping a repository.
package filesystem
