package service

import "errors"

var (
	ErrInvalidMethod   = errors.New("method cannot be queued")
	ErrEmptyEndpoint   = errors.New("endpoint is required")
	ErrQueueContention = errors.New("queue update kept conflicting")

	ErrSyncInProgress = errors.New("sync already in progress")
	ErrSessionExpired = errors.New("session token is expired")
	ErrEmptyToken     = errors.New("token is empty")

	ErrPushUnsupported   = errors.New("push is not supported")
	ErrPermissionDenied  = errors.New("notification permission denied")
	ErrPushNotConfigured = errors.New("push is not configured on the server")
	ErrSubscribeFailed   = errors.New("push subscription failed")
)
