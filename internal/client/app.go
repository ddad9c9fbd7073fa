package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MKhiriev/go-fit-offline/internal/adapter"
	"github.com/MKhiriev/go-fit-offline/internal/config"
	"github.com/MKhiriev/go-fit-offline/internal/connectivity"
	"github.com/MKhiriev/go-fit-offline/internal/crypto"
	"github.com/MKhiriev/go-fit-offline/internal/handler"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/metrics"
	"github.com/MKhiriev/go-fit-offline/internal/notification"
	"github.com/MKhiriev/go-fit-offline/internal/proxy"
	"github.com/MKhiriev/go-fit-offline/internal/server"
	"github.com/MKhiriev/go-fit-offline/internal/service"
	"github.com/MKhiriev/go-fit-offline/internal/store"
	"github.com/MKhiriev/go-fit-offline/internal/workers"
	"github.com/MKhiriev/go-fit-offline/models"
)

type App struct {
	storages     *store.Storages
	registration *proxy.Registration
	monitor      *connectivity.Monitor
	worker       *proxy.Worker
	server       server.Server
	workers      *workers.Workers
	installRetry time.Duration
	logger       *logger.Logger
}

// NewApp builds every component from cfg. Nothing runs until [App.Run].
func NewApp(ctx context.Context, cfg *config.StructuredConfig, build models.AppBuildInfo, log *logger.Logger) (*App, error) {
	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create storages: %w", err)
	}

	app, err := newApp(storages, cfg, build, http.DefaultTransport, log)
	if err != nil {
		storages.Close()
		return nil, err
	}
	return app, nil
}

func newApp(storages *store.Storages, cfg *config.StructuredConfig, build models.AppBuildInfo, network http.RoundTripper, log *logger.Logger) (*App, error) {
	monitor := connectivity.NewMonitor(true, log)
	m := metrics.New()
	m.BuildInfo(build)

	router, err := proxy.NewRouter(cfg.Proxy)
	if err != nil {
		return nil, fmt.Errorf("create proxy router: %w", err)
	}

	clients := proxy.NewClients(nil, log)
	registration := proxy.NewRegistration(storages.CacheRepository, clients, network, log)

	worker, err := proxy.NewWorker(proxy.WorkerConfig{
		Version:        cfg.App.CacheVersion,
		Origin:         cfg.Adapter.HTTPAddress,
		StaticManifest: cfg.Proxy.StaticManifest,
		OfflinePage:    cfg.Proxy.OfflinePage,
		Router:         router,
	}, storages.CacheRepository, network, monitor, m, log)
	if err != nil {
		return nil, fmt.Errorf("create proxy worker: %w", err)
	}

	// backend calls travel through the proxy like any page request
	backend, err := adapter.NewHTTPBackendAdapter(cfg.Adapter, cfg.App, registration, log)
	if err != nil {
		return nil, fmt.Errorf("create backend adapter: %w", err)
	}

	keys := crypto.NewPushKeyChain()
	services := service.NewServices(storages, backend, monitor, keys, *cfg, m, log)

	dispatcher := notification.NewDispatcher(
		cfg.App,
		notification.NewClientShower(clients, log),
		clients,
		keys,
		storages.PushRepository,
		m,
		log,
	)
	registration.SetEventHandler(dispatcher)

	handlers, err := handler.NewHandlers(services, registration, monitor, m, *cfg, log)
	if err != nil {
		return nil, fmt.Errorf("create handlers: %w", err)
	}

	srv, err := server.NewServer(handlers, cfg.Proxy, log)
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}

	app := &App{
		storages:     storages,
		registration: registration,
		monitor:      monitor,
		worker:       worker,
		server:       srv,
		installRetry: installRetryInterval,
		logger:       log,
	}

	app.workers = workers.NewWorkers(log).
		Add("registration", registration).
		Add("install", workers.Func(app.install)).
		Add("reconciler", services.Reconciler).
		Add("dropped-relay", workers.NewDroppedRelay(services.Reconciler.Dropped(), clients, log)).
		Add("gateway", srv)

	return app, nil
}

// Addr is the gateway address pages connect to.
func (a *App) Addr() string { return a.server.Addr() }

// Run blocks until ctx is cancelled or a worker fails, then closes storage.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info().Str("version", a.worker.Version()).Msg("offline layer starting")

	err := a.workers.Run(ctx)
	if closeErr := a.storages.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("close storages: %w", closeErr))
	}

	a.logger.Info().Msg("offline layer stopped")
	return err
}

// installRetryInterval paces install retries when no connectivity signal
// arrives.
const installRetryInterval = 30 * time.Second

// install registers the configured worker. A failed install (usually the
// backend being unreachable at startup) is retried on the next transition
// back online or after installRetryInterval; until then pages go straight
// to the network.
func (a *App) install(ctx context.Context) error {
	updates, unsubscribe := a.monitor.Subscribe(1)
	defer unsubscribe()

	for {
		err := a.registration.Register(ctx, a.worker)
		if err == nil {
			return nil
		}
		a.logger.Warn().Err(err).Str("version", a.worker.Version()).Msg("worker install failed, retrying when online")

		retry := time.NewTimer(a.installRetry)
		for waiting := true; waiting; {
			select {
			case <-ctx.Done():
				retry.Stop()
				return nil
			case tr := <-updates:
				waiting = !tr.Online
			case <-retry.C:
				waiting = false
			}
		}
		retry.Stop()
	}
}
