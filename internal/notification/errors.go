package notification

import "errors"

var (
	ErrUnsupportedEncoding = errors.New("unsupported push content encoding")
	ErrNoSubscription      = errors.New("encrypted push received without a local subscription")
	ErrShowFailed          = errors.New("failed to show notification")
)
