package service

import (
	"github.com/MKhiriev/go-fit-offline/internal/adapter"
	"github.com/MKhiriev/go-fit-offline/internal/config"
	"github.com/MKhiriev/go-fit-offline/internal/crypto"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/metrics"
	"github.com/MKhiriev/go-fit-offline/internal/store"
)

type Services struct {
	Queue      MutationQueue
	Reconciler SyncReconciler
	Writer     Writer
	Push       PushRegistrar
	Sessions   SessionService
}

func NewServices(
	storages *store.Storages,
	backend adapter.BackendAdapter,
	conn ConnectivitySource,
	keys crypto.PushKeyChain,
	cfg config.StructuredConfig,
	m *metrics.Metrics,
	logger *logger.Logger,
) *Services {
	queue := NewMutationQueue(storages.MutationRepository, cfg.Queue, m, logger)

	return &Services{
		Queue:      queue,
		Reconciler: NewSyncReconciler(queue, storages.SessionRepository, backend, conn, cfg.Workers, m, logger),
		Writer:     NewWriter(backend, queue, storages.SessionRepository, logger),
		Push:       NewPushRegistrar(backend, storages.PushRepository, storages.SessionRepository, keys, cfg.Push, m, logger),
		Sessions:   NewSessionService(storages.SessionRepository, logger),
	}
}
