package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAppConfigs indicates an unknown log level.
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidAdapterConfigs indicates invalid backend adapter settings
	// (for example, a negative request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, an in-memory DSN that would not survive a reload).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidQueueConfigs indicates negative queue limits.
	ErrInvalidQueueConfigs = errors.New("invalid queue configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings
	// (for example, a negative settle delay).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
	// ErrInvalidProxyConfigs indicates the offline page is not part of the
	// static manifest and therefore would never be cached.
	ErrInvalidProxyConfigs = errors.New("invalid proxy configuration")
)
