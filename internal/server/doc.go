// Package server runs the local gateway's HTTP listener.
//
// The server is itself a worker: Run serves until its context is cancelled
// and then shuts down gracefully, giving in-flight requests a bounded time
// to finish.
package server
