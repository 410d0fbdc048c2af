package adaptor

import (
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// HTTPClient is interface of http.Client for feed and Slack access
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns http.Client with HTTP/2 enabled transport. Feeds are called once per
// stage, so a whole-request timeout is enough.
func NewHTTPClient(timeout time.Duration) (*http.Client, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		return nil, err
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
