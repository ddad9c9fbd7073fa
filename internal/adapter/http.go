package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-fit-offline/internal/config"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/utils"
	"github.com/MKhiriev/go-fit-offline/models"
)

// HashHeader carries the hex HMAC-SHA256 of the request body when a hash key
// is configured.
const HashHeader = "HashSHA256"

const (
	pushKeyPath       = "/push/vapid-public-key"
	pushSubscribePath = "/push/subscribe"
)

type httpBackendAdapter struct {
	client  *utils.HTTPClient
	apiBase string
	hasher  *utils.Hasher

	logger *logger.Logger
}

// NewHTTPBackendAdapter constructs an HTTP/REST implementation of
// [BackendAdapter]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress and configures the underlying HTTP client with the
// resolved base URL and request timeout.
//
// transport, when non-nil, replaces the client's round tripper. Passing the
// proxy registration here routes every backend call through the caching
// proxy.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPBackendAdapter(adapterCfg config.Adapter, appCfg config.App, transport http.RoundTripper, logger *logger.Logger) (BackendAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	a := &httpBackendAdapter{
		client:  utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout, transport),
		apiBase: "/" + strings.Trim(adapterCfg.APIBase, "/"),
		logger:  logger,
	}
	if appCfg.HashKey != "" {
		a.hasher = utils.NewHasher(appCfg.HashKey)
	}
	return a, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Send implements [BackendAdapter].
func (h *httpBackendAdapter) Send(ctx context.Context, req WriteRequest, token string) (Response, error) {
	resp, err := h.do(ctx, req, token)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Status: resp.StatusCode(),
		Header: resp.Header().Clone(),
		Body:   resp.Body(),
	}, nil
}

// Replay implements [BackendAdapter]. The body is sent byte for byte with the
// stored allow-listed headers and the supplied token.
func (h *httpBackendAdapter) Replay(ctx context.Context, mutation models.QueuedMutation, token string) error {
	resp, err := h.do(ctx, WriteRequest{
		Endpoint: mutation.Endpoint,
		Method:   mutation.Method,
		Body:     mutation.Body,
		Headers:  mutation.Headers,
	}, token)
	if err != nil {
		return err
	}

	return mapHTTPError(resp.StatusCode(), resp.Body())
}

// VAPIDPublicKey implements [BackendAdapter]. It GETs
// {api}/push/vapid-public-key and decodes {"publicKey": "..."}.
func (h *httpBackendAdapter) VAPIDPublicKey(ctx context.Context, token string) (string, error) {
	var result struct {
		PublicKey string `json:"publicKey"`
	}

	resp, err := h.authedRequest(ctx, token).Get(h.path(pushKeyPath))
	if err != nil {
		return "", h.transportError(ctx, "vapid key request", err)
	}
	if err = mapHTTPError(resp.StatusCode(), resp.Body()); err != nil {
		return "", err
	}

	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("decode vapid key response: %w", err)
	}
	return strings.TrimSpace(result.PublicKey), nil
}

// SaveSubscription implements [BackendAdapter]. It POSTs the subscription
// to {api}/push/subscribe.
func (h *httpBackendAdapter) SaveSubscription(ctx context.Context, sub models.PushSubscription, token string) error {
	resp, err := h.authedRequest(ctx, token).
		SetHeader("Content-Type", "application/json").
		SetBody(sub).
		Post(h.path(pushSubscribePath))
	if err != nil {
		return h.transportError(ctx, "save subscription request", err)
	}

	return mapHTTPError(resp.StatusCode(), resp.Body())
}

// DeleteSubscription implements [BackendAdapter]. It sends
// DELETE {api}/push/subscribe with {"endpoint": ...}.
func (h *httpBackendAdapter) DeleteSubscription(ctx context.Context, endpoint string, token string) error {
	resp, err := h.authedRequest(ctx, token).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"endpoint": endpoint}).
		Delete(h.path(pushSubscribePath))
	if err != nil {
		return h.transportError(ctx, "delete subscription request", err)
	}

	return mapHTTPError(resp.StatusCode(), resp.Body())
}

func (h *httpBackendAdapter) do(ctx context.Context, req WriteRequest, token string) (*resty.Response, error) {
	r := h.authedRequest(ctx, token)
	for name, value := range req.Headers {
		if strings.EqualFold(name, "Authorization") {
			continue
		}
		r.SetHeader(name, value)
	}
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
		if h.hasher != nil {
			r.SetHeader(HashHeader, h.hasher.Hex(req.Body))
		}
	}

	resp, err := r.Execute(req.Method, h.path(req.Endpoint))
	if err != nil {
		return nil, h.transportError(ctx, strings.ToLower(req.Method)+" "+req.Endpoint, err)
	}
	return resp, nil
}

func (h *httpBackendAdapter) authedRequest(ctx context.Context, token string) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token = strings.TrimSpace(token); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

// path joins the API base and an endpoint. Endpoints that already carry the
// base are left untouched.
func (h *httpBackendAdapter) path(endpoint string) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	if h.apiBase == "/" || endpoint == h.apiBase || strings.HasPrefix(endpoint, h.apiBase+"/") {
		return endpoint
	}
	return h.apiBase + endpoint
}

// transportError keeps caller cancellation distinguishable from an
// unreachable network.
func (h *httpBackendAdapter) transportError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	h.logger.Debug().Err(err).Str("op", op).Msg("backend unreachable")
	return fmt.Errorf("%s: %w: %w", op, ErrNetworkUnavailable, err)
}
