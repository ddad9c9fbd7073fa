package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrCacheMiss is returned by [CacheRepository.Match] when the named cache
	// holds no entry for the requested URL.
	ErrCacheMiss = errors.New("cache miss")

	// ErrMutationNotFound is returned when an update targets a queue entry
	// that is no longer present.
	ErrMutationNotFound = errors.New("queued mutation was not found")

	// ErrVersionConflict is returned when the queue version stamp read at the
	// start of a read-modify-write no longer matches at commit time, meaning
	// another writer changed the queue in between.
	ErrVersionConflict = errors.New("mutation queue version conflict occurred")

	// ErrSessionNotFound is returned when no credential has been stored yet.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSubscriptionNotFound is returned when no local push subscription
	// exists on this device.
	ErrSubscriptionNotFound = errors.New("push subscription not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrDecodingColumn is returned when a JSON encoded column cannot be
	// decoded back into its Go value.
	ErrDecodingColumn = errors.New("failed to decode column")
)
