// Package githubapi wraps the GitHub REST calls ginit needs: issuing a personal
// access token from a username and password, and creating a repository.
package githubapi
