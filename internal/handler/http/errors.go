// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors produced by the gateway itself. Service and store errors
// are passed through and mapped to status codes by statusFromError.
var (
	// ErrInvalidOrigin is returned by [NewHandler] when the backend address
	// cannot be parsed into an absolute URL.
	ErrInvalidOrigin = errors.New("invalid backend origin")

	// ErrInvalidJSON is returned when a control request body is not valid
	// JSON for the route.
	ErrInvalidJSON = errors.New("invalid JSON was passed")

	// ErrIntegrityCheckFailed is returned when the HashSHA256 header of an
	// inbound delivery is missing or does not match the body.
	ErrIntegrityCheckFailed = errors.New("integrity check failed")

	// ErrBackendUnreachable is reported to pages when a proxied read has
	// neither a network response nor a cached copy.
	ErrBackendUnreachable = errors.New("backend unreachable")
)
