package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-fit-offline/internal/config"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/store"
)

// newTestStorages — настоящая SQLite во временной директории.
func newTestStorages(t *testing.T) *store.Storages {
	t.Helper()
	s, err := store.NewStorages(context.Background(), config.Storage{DB: config.DB{
		DSN: filepath.Join(t.TempDir(), "service.db") + "?_busy_timeout=5000",
	}}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testQueueConfig() config.Queue {
	return config.Queue{Capacity: 100, MaxRetries: 3, CommitAttempts: 5}
}

func newTestQueue(t *testing.T, s *store.Storages, cfg config.Queue) *mutationQueue {
	t.Helper()
	return NewMutationQueue(s.MutationRepository, cfg, nil, logger.Nop()).(*mutationQueue)
}
