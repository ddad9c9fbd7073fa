package http

import (
	"errors"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"

	"github.com/MKhiriev/go-fit-offline/internal/adapter"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/models"
)

// maxWriteBody bounds page writes buffered for the queue.
const maxWriteBody = 1 << 20

// forward serves every page request that is not a control route. API
// writes go through the queueing writer; everything else is proxied through
// the registration and so through the active worker's caching strategy.
func (h *Handler) forward(w http.ResponseWriter, r *http.Request) {
	if models.IsWriteMethod(r.Method) && h.isAPI(r.URL.Path) {
		h.write(w, r)
		return
	}
	h.reverseProxy().ServeHTTP(w, r)
}

func (h *Handler) reverseProxy() *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(h.origin)
			pr.SetXForwarded()
		},
		Transport:    h.registration,
		ErrorHandler: h.proxyError,
	}
}

// proxyError runs when the worker had nothing to answer with: no network
// and no cached copy for a non-navigation read.
func (h *Handler) proxyError(w http.ResponseWriter, r *http.Request, err error) {
	if r.Context().Err() != nil {
		logger.FromRequest(r).Debug().Err(err).Msg("proxied request cancelled by client")
		return
	}
	writeError(w, r, errors.Join(ErrBackendUnreachable, err), "proxied request failed")
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWriteBody))
	if err != nil {
		log.Err(err).Str("func", "*Handler.write").Msg("failed to read request body")
		http.Error(w, "failed to read request body", http.StatusRequestEntityTooLarge)
		return
	}

	result, err := h.services.Writer.Write(r.Context(), adapter.WriteRequest{
		Endpoint: r.URL.RequestURI(),
		Method:   r.Method,
		Body:     body,
		Headers:  flattenHeader(r.Header),
	})
	if err != nil {
		writeError(w, r, err, "write failed")
		return
	}

	if result.Queued {
		log.Info().Str("id", result.ID).Str("endpoint", r.URL.Path).Msg("write queued for replay")
	}

	copyHeader(w.Header(), result.Header)
	w.WriteHeader(result.Status)
	w.Write(result.Body)
}

func (h *Handler) isAPI(path string) bool {
	return h.apiBase == "/" || path == h.apiBase || strings.HasPrefix(path, h.apiBase+"/")
}

// flattenHeader keeps the first value of each header. The writer filters
// them further before anything is queued.
func flattenHeader(header http.Header) map[string]string {
	out := make(map[string]string, len(header))
	for name, values := range header {
		if len(values) > 0 {
			out[name] = values[0]
		}
	}
	return out
}

// hopHeaders are connection-scoped and never copied to the page.
var hopHeaders = map[string]struct{}{
	"Connection":        {},
	"Keep-Alive":        {},
	"Transfer-Encoding": {},
	"Content-Length":    {},
	"Trailer":           {},
	"Upgrade":           {},
}

func copyHeader(dst, src http.Header) {
	for name, values := range src {
		if _, hop := hopHeaders[http.CanonicalHeaderKey(name)]; hop {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}
