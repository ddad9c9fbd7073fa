package utils

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "go-fit-offline"

// HTTPClient is the resty client used to talk to the fitness backend.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns a client bound to baseURL. Every request gets the
// timeout, a JSON Accept header and the offline layer's User-Agent.
//
// transport replaces resty's default round tripper when non-nil. The app
// passes the proxy registration here, so adapter calls see the same
// connectivity and cache as the pages do.
func NewHTTPClient(baseURL string, timeout time.Duration, transport http.RoundTripper) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)
	if transport != nil {
		client.SetTransport(transport)
	}

	return &HTTPClient{Client: client}
}
