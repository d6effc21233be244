// Package githubauth resolves the GitHub access token used by ginit.
//
// Resolver checks the preference store, then any configured external token
// sources (environment variables or the gh CLI), and finally logs the user in,
// either with the OAuth device flow or by exchanging a username and password.
// Tokens it issues are persisted; imported ones are not.
package githubauth
