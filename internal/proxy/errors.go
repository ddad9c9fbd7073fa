package proxy

import "errors"

var (
	ErrNoActiveWorker    = errors.New("no active worker")
	ErrClientNotFound    = errors.New("client not found")
	ErrClientGone        = errors.New("client message channel is full or closed")
	ErrUnknownMessage    = errors.New("unknown control message")
	ErrNoEventHandler    = errors.New("no event handler registered")
	ErrInvalidAPIPattern = errors.New("invalid api route pattern")
)
