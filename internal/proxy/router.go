package proxy

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/MKhiriev/go-fit-offline/internal/config"
)

// Strategy is the caching behaviour applied to an intercepted request.
type Strategy int

const (
	// StrategyPassThrough sends non-read requests to the network untouched.
	StrategyPassThrough Strategy = iota
	// StrategyCacheFirst serves static assets from cache when present.
	StrategyCacheFirst
	// StrategyAPI is network-first with cache fallback for API reads.
	StrategyAPI
	// StrategyNavigation is network-first with cache, then offline page,
	// then synthesized 503 fallback.
	StrategyNavigation
	// StrategyNetworkFirst is network-first with cache fallback for any
	// other read.
	StrategyNetworkFirst
)

func (s Strategy) String() string {
	switch s {
	case StrategyPassThrough:
		return "pass_through"
	case StrategyCacheFirst:
		return "cache_first"
	case StrategyAPI:
		return "api_network_first"
	case StrategyNavigation:
		return "navigation"
	case StrategyNetworkFirst:
		return "network_first"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Router classifies requests. Suffixes are matched case-insensitively
// against the URL path; API patterns are doublestar globs.
type Router struct {
	staticSuffixes []string
	imageSuffixes  []string
	apiPatterns    []string
}

// NewRouter validates every API pattern.
func NewRouter(cfg config.Proxy) (Router, error) {
	for _, p := range cfg.APIPatterns {
		if !doublestar.ValidatePattern(p) {
			return Router{}, fmt.Errorf("%w: %q", ErrInvalidAPIPattern, p)
		}
	}
	return Router{
		staticSuffixes: lowerAll(cfg.StaticSuffixes),
		imageSuffixes:  lowerAll(cfg.ImageSuffixes),
		apiPatterns:    append([]string(nil), cfg.APIPatterns...),
	}, nil
}

// Classify picks the strategy for req.
func (r Router) Classify(req *http.Request) Strategy {
	if !isRead(req.Method) {
		return StrategyPassThrough
	}

	path := req.URL.Path
	switch {
	case hasAnySuffix(path, r.staticSuffixes):
		return StrategyCacheFirst
	case r.isAPI(path):
		return StrategyAPI
	case isNavigation(req):
		return StrategyNavigation
	default:
		return StrategyNetworkFirst
	}
}

// IsImage reports whether path names an image-like asset.
func (r Router) IsImage(path string) bool {
	return hasAnySuffix(path, r.imageSuffixes)
}

func (r Router) isAPI(path string) bool {
	for _, p := range r.apiPatterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

func isRead(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == ""
}

func isNavigation(req *http.Request) bool {
	if mode := req.Header.Get("Sec-Fetch-Mode"); mode != "" {
		return mode == "navigate"
	}
	return strings.Contains(req.Header.Get("Accept"), "text/html")
}

func hasAnySuffix(path string, suffixes []string) bool {
	path = strings.ToLower(path)
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}
