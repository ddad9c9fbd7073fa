// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport-layer client for the fitness
// backend's REST API.
//
// The primary abstraction is [BackendAdapter], which decouples the service
// layer from the underlying protocol. The package ships a resty-based
// implementation ([NewHTTPBackendAdapter]) whose transport can be pointed at
// the caching proxy so that page writes flow through the background context
// like any other request.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling. Transport failures (no route, refused connection, timeout) are
// reported as [ErrNetworkUnavailable]: the signal the write path uses to
// queue a mutation instead of failing it.
package adapter

import (
	"context"
	"net/http"

	"github.com/MKhiriev/go-fit-offline/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/backend_adapter_mock.go -package=mock

// BackendAdapter defines communication with the fitness backend. Every
// method takes the bearer token explicitly so that callers always send the
// credential that is current at call time.
type BackendAdapter interface {
	// Send performs a single write and returns the backend response whatever
	// its status. Only transport failures are returned as errors, wrapped in
	// [ErrNetworkUnavailable].
	Send(ctx context.Context, req WriteRequest, token string) (Response, error)

	// Replay re-sends a queued mutation. Any non-2xx status is mapped to a
	// sentinel error by mapHTTPError.
	Replay(ctx context.Context, mutation models.QueuedMutation, token string) error

	// VAPIDPublicKey fetches the application server key used to create push
	// subscriptions. An empty key is returned as is; the caller decides
	// whether push is configured.
	VAPIDPublicKey(ctx context.Context, token string) (string, error)

	// SaveSubscription persists a push subscription in the backend's
	// subscription store.
	SaveSubscription(ctx context.Context, sub models.PushSubscription, token string) error

	// DeleteSubscription removes a push subscription from the backend. A 404
	// is reported as [ErrNotFound]; callers treating removal as idempotent
	// should match it.
	DeleteSubscription(ctx context.Context, endpoint string, token string) error
}

// WriteRequest is a mutation addressed to the backend API.
type WriteRequest struct {
	// Endpoint is relative to the configured API base, e.g. "/workouts".
	Endpoint string
	Method   string
	Body     []byte
	Headers  map[string]string
}

// Response is a backend response detached from the transport.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}
