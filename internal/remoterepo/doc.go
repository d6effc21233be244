// Package remoterepo asks for the new repository's name, description, and
// visibility, creates it on GitHub, and picks the URL the local repository will
// push to.
package remoterepo
