package proxy

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-fit-offline/models"
)

// CacheHeader marks responses produced by the proxy instead of the network.
const CacheHeader = "X-Offline-Cache"

const (
	cacheHeaderHit       = "hit"
	cacheHeaderOffline   = "offline-page"
	cacheHeaderSynthetic = "synthetic"
)

func newResponse(req *http.Request, status int, header http.Header, body []byte) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	if req != nil && req.Method == http.MethodHead {
		body = nil
	}
	header.Set("Content-Length", strconv.Itoa(len(body)))
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func cachedResponse(req *http.Request, cached models.CachedResponse, marker string) *http.Response {
	header := cached.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set(CacheHeader, marker)
	return newResponse(req, cached.Status, header, cached.Body)
}

// emptyNotFound is returned for image assets when both cache and network
// fail, so the page renders a broken image instead of an error.
func emptyNotFound(req *http.Request) *http.Response {
	header := http.Header{}
	header.Set(CacheHeader, cacheHeaderSynthetic)
	return newResponse(req, http.StatusNotFound, header, nil)
}

// serviceUnavailable is the last resort for a navigation with no network,
// no cached copy and no offline page.
func serviceUnavailable(req *http.Request) *http.Response {
	header := http.Header{}
	header.Set("Content-Type", "text/plain; charset=utf-8")
	header.Set(CacheHeader, cacheHeaderSynthetic)
	return newResponse(req, http.StatusServiceUnavailable, header, []byte("Service Unavailable: offline"))
}

// captureBody drains resp.Body and replaces it with an in-memory copy so the
// response can be both cached and returned.
func captureBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// maxCachedBody caps the size of a response body kept in the cache.
const maxCachedBody = 8 << 20

// cacheable reports whether resp may be copied into the cache at all.
// Event streams never end, so waiting for their EOF would hold the page.
func cacheable(resp *http.Response) bool {
	if media, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && media == "text/event-stream" {
		return false
	}
	return resp.ContentLength <= maxCachedBody
}

// cachingBody copies what the caller reads and hands the full body to commit
// at EOF. Closing early or reading past limit discards the copy.
type cachingBody struct {
	rc     io.ReadCloser
	buf    bytes.Buffer
	limit  int
	done   bool
	commit func([]byte)
}

func newCachingBody(rc io.ReadCloser, limit int, commit func([]byte)) *cachingBody {
	return &cachingBody{rc: rc, limit: limit, commit: commit}
}

func (b *cachingBody) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	if b.done {
		return n, err
	}

	if b.buf.Len()+n > b.limit {
		b.discard()
		return n, err
	}
	b.buf.Write(p[:n])

	if err == io.EOF {
		b.done = true
		b.commit(bytes.Clone(b.buf.Bytes()))
		b.buf.Reset()
	}
	return n, err
}

func (b *cachingBody) Close() error {
	if !b.done {
		b.discard()
	}
	return b.rc.Close()
}

func (b *cachingBody) discard() {
	b.done = true
	b.buf = bytes.Buffer{}
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
