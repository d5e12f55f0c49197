// Package finnhub is a client for Finnhub's real-time quote endpoint.
// The endpoint has no batch form; callers issue one request per symbol.
package finnhub

import (
	"net/http"
	"net/url"

	"marketdash/internal/market"
)

const baseURL = "https://finnhub.io/api/v1"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=finnhub_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the Finnhub API.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
	// names maps a symbol to the display name reported with its quote.
	names map[string]string
	// hasKey is false when no API token was configured.
	hasKey bool
}

// Option is a configuration option for the Finnhub client.
type Option func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithNames sets display names per symbol. Unmapped symbols use the symbol itself.
func WithNames(names map[string]string) Option {
	return func(c *Client) {
		for k, v := range names {
			c.names[k] = v
		}
	}
}

// NewClient creates a new Finnhub client. An empty key is accepted; every
// quote call then fails with finnhub_failed.
func NewClient(key string, options ...Option) *Client {
	var client = &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
		names:      map[string]string{},
	}
	if key != "" {
		// https://finnhub.io/docs/api/authentication
		client.query.Add("token", key)
		client.hasKey = true
	}
	for _, option := range options {
		option(client)
	}
	return client
}

func (c *Client) Name() string { return "finnhub" }

// MissingCredential reports finnhub_failed when the client has no token.
func (c *Client) MissingCredential() (market.Code, bool) {
	if c.hasKey {
		return "", false
	}
	return market.CodeFinnhubFailed, true
}
