// Package vonage implements the telephony capabilities against the Vonage
// Voice and Messages APIs.
package vonage

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultAPIBase = "https://api.nexmo.com"

	tokenEnvVar = "VONAGE_API_TOKEN"
)

// Client calls the Vonage voice and messages APIs on behalf of the
// workflow. One client serves both call control and SMS delivery.
type Client struct {
	token   string
	apiBase string

	httpClient *http.Client
}

type ClientOption func(*Client)

// WithToken overrides the bearer token read from VONAGE_API_TOKEN.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithAPIBase overrides the API base URL. Used by tests.
func WithAPIBase(apiBase string) ClientOption {
	return func(c *Client) { c.apiBase = apiBase }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		apiBase: defaultAPIBase,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.token == "" {
		token, ok := os.LookupEnv(tokenEnvVar)
		if !ok || token == "" {
			return nil, fmt.Errorf("vonage api token not found")
		}
		client.token = token
	}

	return client, nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
}
