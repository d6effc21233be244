package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshSchemePrefixConstant             = "ssh://"
	httpsSchemePrefixConstant           = "https://"
	httpSchemePrefixConstant            = "http://"
	sshUserDelimiterConstant            = "@"
	scpPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	requiredValueMessageConstant        = "value required"
	invalidRemoteURLMessageConstant     = "invalid remote url"
	unknownProtocolMessageConstant      = "unsupported remote protocol"
	repositorySlugTemplateConstant      = "%s/%s"
)

// RemoteProtocol selects how git talks to the remote.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL is a parsed git remote address.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// Slug returns owner/repository.
func (remote RemoteURL) Slug() string {
	return fmt.Sprintf(repositorySlugTemplateConstant, remote.Owner, remote.Repository)
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// UnsupportedProtocolError indicates a protocol other than ssh or https.
type UnsupportedProtocolError struct {
	Protocol RemoteProtocol
}

// Error describes the unsupported protocol.
func (protocolError UnsupportedProtocolError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, protocolError.Protocol, unknownProtocolMessageConstant)
}

// ParseRemoteProtocol validates a configured protocol; blank yields ssh.
func ParseRemoteProtocol(value string) (RemoteProtocol, error) {
	switch protocol := RemoteProtocol(strings.ToLower(strings.TrimSpace(value))); protocol {
	case "", RemoteProtocolSSH:
		return RemoteProtocolSSH, nil
	case RemoteProtocolHTTPS:
		return RemoteProtocolHTTPS, nil
	default:
		return "", UnsupportedProtocolError{Protocol: protocol}
	}
}

// ParseRemoteURL accepts scp-like (git@host:owner/repo.git), ssh://, and http(s):// remotes.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmedRemote, sshSchemePrefixConstant):
		return parseSSHRemote(remote, strings.TrimPrefix(trimmedRemote, sshSchemePrefixConstant), false)
	case strings.HasPrefix(trimmedRemote, httpsSchemePrefixConstant):
		return parseHTTPRemote(remote, strings.TrimPrefix(trimmedRemote, httpsSchemePrefixConstant))
	case strings.HasPrefix(trimmedRemote, httpSchemePrefixConstant):
		return parseHTTPRemote(remote, strings.TrimPrefix(trimmedRemote, httpSchemePrefixConstant))
	case strings.Contains(trimmedRemote, sshUserDelimiterConstant):
		return parseSSHRemote(remote, trimmedRemote, true)
	default:
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
}

func parseSSHRemote(input string, remote string, scpStyle bool) (RemoteURL, error) {
	_, hostAndPath, hasUser := strings.Cut(remote, sshUserDelimiterConstant)
	if !hasUser {
		hostAndPath = remote
	}

	pathDelimiter := pathSeparatorConstant
	if scpStyle {
		pathDelimiter = scpPathDelimiterConstant
	}
	host, path, hasPath := strings.Cut(hostAndPath, pathDelimiter)
	if !hasPath {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	if hostName, _, hasPort := strings.Cut(host, scpPathDelimiterConstant); hasPort {
		host = hostName
	}
	return buildRemoteURL(input, RemoteProtocolSSH, host, path)
}

func parseHTTPRemote(input string, remote string) (RemoteURL, error) {
	host, path, hasPath := strings.Cut(remote, pathSeparatorConstant)
	if !hasPath {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	if _, hostWithoutUser, hasUser := strings.Cut(host, sshUserDelimiterConstant); hasUser {
		host = hostWithoutUser
	}
	return buildRemoteURL(input, RemoteProtocolHTTPS, host, path)
}

func buildRemoteURL(input string, protocol RemoteProtocol, host string, path string) (RemoteURL, error) {
	segments := strings.Split(strings.Trim(path, pathSeparatorConstant), pathSeparatorConstant)
	if len(host) == 0 || len(segments) != 2 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	owner := segments[0]
	repository := strings.TrimSuffix(segments[1], gitSuffixConstant)
	if len(owner) == 0 || len(repository) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	return RemoteURL{Protocol: protocol, Host: host, Owner: owner, Repository: repository}, nil
}
