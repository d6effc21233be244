package githubauth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cli/oauth"
)

const (
	defaultWebURLConstant              = "https://github.com"
	deviceInstructionsTemplateConstant = "Open %s and enter the code %s\n"
	deviceHTTPTimeoutConstant          = 30 * time.Second
	deviceFlowErrorTemplateConstant    = "device login failed: %w"
	invalidHostErrorTemplateConstant   = "invalid GitHub host %q: %w"
)

// DeviceAuthorizer obtains a token through GitHub's OAuth device flow.
type DeviceAuthorizer struct {
	clientID string
	webURL   string
	scopes   []string
	output   io.Writer
}

// NewDeviceAuthorizer constructs an authorizer for the OAuth app clientID. An empty webURL targets github.com.
func NewDeviceAuthorizer(clientID string, webURL string, scopes []string, output io.Writer) *DeviceAuthorizer {
	trimmedWebURL := strings.TrimSuffix(strings.TrimSpace(webURL), "/")
	if len(trimmedWebURL) == 0 {
		trimmedWebURL = defaultWebURLConstant
	}
	if output == nil {
		output = io.Discard
	}
	return &DeviceAuthorizer{
		clientID: strings.TrimSpace(clientID),
		webURL:   trimmedWebURL,
		scopes:   append([]string(nil), scopes...),
		output:   output,
	}
}

// Authorize prints the one-time code and waits until the user approves it in a browser.
func (authorizer *DeviceAuthorizer) Authorize(executionContext context.Context) (string, error) {
	host, hostError := oauth.NewGitHubHost(authorizer.webURL)
	if hostError != nil {
		return "", fmt.Errorf(invalidHostErrorTemplateConstant, authorizer.webURL, hostError)
	}

	flow := &oauth.Flow{
		Host:       host,
		ClientID:   authorizer.clientID,
		Scopes:     authorizer.scopes,
		HTTPClient: &http.Client{Timeout: deviceHTTPTimeoutConstant},
		DisplayCode: func(code string, verificationURL string) error {
			_, writeError := fmt.Fprintf(authorizer.output, deviceInstructionsTemplateConstant, verificationURL, code)
			return writeError
		},
		BrowseURL: func(string) error { return nil },
	}

	type flowResult struct {
		token string
		err   error
	}
	resultChannel := make(chan flowResult, 1)
	go func() {
		accessToken, flowError := flow.DeviceFlow()
		if flowError != nil {
			resultChannel <- flowResult{err: flowError}
			return
		}
		resultChannel <- flowResult{token: accessToken.Token}
	}()

	select {
	case result := <-resultChannel:
		if result.err != nil {
			return "", fmt.Errorf(deviceFlowErrorTemplateConstant, result.err)
		}
		return result.token, nil
	case <-executionContext.Done():
		return "", executionContext.Err()
	}
}

// WebURLFromAPIURL derives the web host from a REST root such as https://github.example.com/api/v3/.
// An empty apiURL yields an empty result so callers fall back to github.com.
func WebURLFromAPIURL(apiURL string) string {
	trimmedURL := strings.TrimSpace(apiURL)
	if len(trimmedURL) == 0 {
		return ""
	}
	parsedURL, parseError := url.Parse(trimmedURL)
	if parseError != nil || len(parsedURL.Host) == 0 {
		return ""
	}
	host := strings.TrimPrefix(parsedURL.Host, "api.")
	return parsedURL.Scheme + "://" + host
}
