package httpx

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ghostpath/soft404/internal/urlx"
)

// Opener sends a request and returns a response. The core never
// constructs one directly; it is late-bound via
// classify.Classifier.SetOpener, which session.New calls.
type Opener interface {
	Send(ctx context.Context, method string, target urlx.Target, headers map[string]string) (*Response, error)
}

// HTTPOpener is the real net/http-backed Opener. Adapted from the
// scanner's Requester: same transport defaults (skip TLS verification
// for scanning untrusted targets, optional proxy, optional redirect
// following), plus Reason/ID capture the classifier needs.
type HTTPOpener struct {
	client    *http.Client
	headers   map[string]string
	userAgent string
}

// OpenerOptions configures a new HTTPOpener.
type OpenerOptions struct {
	Timeout         time.Duration
	Proxy           string
	FollowRedirects bool
	Headers         map[string]string
	UserAgent       string
	MaxIdlePerHost  int
}

// NewHTTPOpener builds an HTTPOpener from the given options.
func NewHTTPOpener(opts OpenerOptions) (*HTTPOpener, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		DialContext: (&net.Dialer{
			Timeout: opts.Timeout,
		}).DialContext,
		MaxIdleConnsPerHost: opts.MaxIdlePerHost,
		MaxIdleConns:        opts.MaxIdlePerHost,
	}

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", opts.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
	}
	if !opts.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "soft404/1.0"
	}

	return &HTTPOpener{client: client, headers: opts.Headers, userAgent: ua}, nil
}

// Send issues a single HTTP request for target and returns the parsed
// Response. method defaults to GET when empty.
func (o *HTTPOpener) Send(ctx context.Context, method string, target urlx.Target, headers map[string]string) (*Response, error) {
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target.URL().String(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", o.userAgent)
	for k, v := range o.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body for %s: %w", target.URL(), err)
	}

	return &Response{
		ID:       NextID(),
		URL:      target,
		Code:     resp.StatusCode,
		Reason:   strings.TrimPrefix(resp.Status, fmt.Sprintf("%d ", resp.StatusCode)),
		Headers:  resp.Header,
		Body:     body,
		Duration: time.Since(start),
	}, nil
}
