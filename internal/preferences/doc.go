// Package preferences persists the GitHub access token between runs.
//
// Two backends implement Store: BoltStore writes a bbolt file under the user
// configuration directory and KeyringStore uses the operating system keyring.
// OpenStore picks one from Configuration.
package preferences
