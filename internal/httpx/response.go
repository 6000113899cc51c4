// Package httpx defines the HttpResponse contract the classifier core
// reads from and the Opener collaborator it sends probes through.
package httpx

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ghostpath/soft404/internal/urlx"
)

var nextID atomic.Int64

// NextID returns a process-wide unique response id, used for diagnostics
// only. The scanner that owns the real HTTP transport should call this
// once per response it builds.
func NextID() int64 {
	return nextID.Add(1)
}

// Response is the core's read-only view of an HTTP response: status,
// reason phrase, headers, body, request URL and a stable id.
type Response struct {
	ID       int64
	URL      urlx.Target
	Code     int
	Reason   string
	Headers  http.Header
	Body     []byte
	Duration time.Duration
}

// HeadersEmpty reports whether the response carries no headers at all.
// Used by the basic-rules sentinel-204 check.
func (r *Response) HeadersEmpty() bool {
	return len(r.Headers) == 0
}

// The Get* accessors below satisfy fingerprint's unexported response
// interface without fingerprint importing httpx.

func (r *Response) GetID() int64        { return r.ID }
func (r *Response) GetURL() urlx.Target { return r.URL }
func (r *Response) GetCode() int        { return r.Code }
func (r *Response) GetBody() []byte     { return r.Body }
