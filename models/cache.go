package models

import (
	"net/http"
	"time"
)

// CachedResponse is a captured network response stored in a cache version.
type CachedResponse struct {
	// URL is the full request URL the response was captured for.
	URL string `json:"url"`

	// Status is the HTTP status code.
	Status int `json:"status"`

	// Header holds the response headers.
	Header http.Header `json:"header"`

	// Body is the raw response body.
	Body []byte `json:"body"`

	// StoredAt is the capture time.
	StoredAt time.Time `json:"stored_at"`
}
