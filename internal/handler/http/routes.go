package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging, h.withCORS())

	// background context controls
	router.Route("/__sw", func(r chi.Router) {
		r.With(withGZip).Get("/state", h.workerState)
		r.Post("/skip-waiting", h.skipWaiting)
		r.Post("/cache-urls", h.cacheURLs)
		r.Post("/connectivity", h.setConnectivity)
		r.Get("/clients", h.clientChannel)
	})

	router.Route("/__push", func(r chi.Router) {
		r.Get("/state", h.pushState)
		r.Post("/permission", h.setPermission)
		r.Post("/subscribe", h.subscribe)
		r.Delete("/subscribe", h.unsubscribe)

		// relay deliveries
		r.Group(func(r chi.Router) {
			r.Use(h.withBodyHash)
			r.Post("/deliver", h.deliverPush)
			r.Post("/click", h.notificationClick)
		})
	})

	router.Route("/__queue", func(r chi.Router) {
		r.Use(withGZip)
		r.Get("/", h.queueList)
		r.Post("/sync", h.queueSync)
		r.Get("/failed", h.queueFailed)
	})

	router.Route("/__session", func(r chi.Router) {
		r.Post("/", h.login)
		r.Get("/", h.currentSession)
		r.Delete("/", h.logout)
	})

	router.Handle("/metrics", h.metrics.Handler())

	// page traffic
	router.With(h.withSessionCapture).HandleFunc("/*", h.forward)

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
