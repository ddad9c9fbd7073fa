package server

import "context"

// Server defines the lifecycle contract for the gateway server.
type Server interface {
	// Run starts serving requests and blocks until ctx is cancelled or the
	// listener fails. Cancellation triggers a graceful shutdown.
	Run(ctx context.Context) error

	// Addr is the address the server listens on once Run has bound it.
	Addr() string
}
