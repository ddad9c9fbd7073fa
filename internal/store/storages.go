package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-fit-offline/internal/config"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
)

// Storages groups every SQLite-backed repository of the offline layer into
// a single value that can be passed to the service and proxy layers.
type Storages struct {
	// CacheRepository holds the named response caches.
	CacheRepository CacheRepository

	// MutationRepository holds the mutation queue and its failed history.
	MutationRepository MutationRepository

	// SessionRepository holds the current bearer credential.
	SessionRepository SessionRepository

	// PushRepository holds the push permission and local subscription.
	PushRepository PushRepository

	db *DB
}

// NewStorages initialises the storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to cfg.DB.DSN, creating the database file
//     if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs every repository on the shared connection.
func NewStorages(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return newStoragesFromDB(db, logger), nil
}

func newStoragesFromDB(db *DB, logger *logger.Logger) *Storages {
	return &Storages{
		CacheRepository:    NewCacheRepository(db, logger),
		MutationRepository: NewMutationRepository(db, logger),
		SessionRepository:  NewSessionRepository(db, logger),
		PushRepository:     NewPushRepository(db, logger),
		db:                 db,
	}
}

// Close releases the underlying database connection.
func (s *Storages) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
