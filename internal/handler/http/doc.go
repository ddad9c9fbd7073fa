// Package http implements the local gateway that exposes the background
// context to browser pages.
//
// Page traffic is reverse-proxied to the backend through the proxy
// registration, so reads get the caching strategies and writes go through
// the queueing writer. Control routes under /__sw, /__push, /__queue and
// /__session drive the registration, the push registrar, the mutation queue
// and the session store. Pages keep a websocket open on /__sw/clients to
// receive notification clicks and controller changes.
//
// Cross-cutting concerns such as request tracing, access logging, CORS,
// response compression and integrity checks are handled in this package
// before requests reach the services.
package http
