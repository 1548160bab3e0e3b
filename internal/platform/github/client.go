// Package github provides GitHub API clients for the release feed.
package github

import (
	"fmt"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gogithub "github.com/google/go-github/v68/github"
)

// NewClient creates a GitHub API client on top of httpClient. An empty
// token means anonymous access, which is rate limited to 60 requests per
// hour.
func NewClient(httpClient *http.Client, token string) *gogithub.Client {
	client := gogithub.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return client
}

// NewAppClient creates a GitHub API client authenticated as a GitHub App
// installation. The ghinstallation transport wraps httpClient's transport
// and renews the installation token as needed.
func NewAppClient(httpClient *http.Client, appID, installationID int64, privateKeyPEM string) (*gogithub.Client, error) {
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	transport, err := ghinstallation.New(base, appID, installationID, []byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("creating github installation transport: %w", err)
	}
	return gogithub.NewClient(&http.Client{
		Transport: transport,
		Timeout:   httpClient.Timeout,
	}), nil
}
