// Package classify implements the Classifier: the top-level entry point
// that composes the fingerprint, fuzzy comparator, diff extractor,
// signature store, prober, single-flight guard and recent-decision memo
// into the soft-404 decision algorithm.
package classify

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ghostpath/soft404/internal/diffx"
	"github.com/ghostpath/soft404/internal/fingerprint"
	"github.com/ghostpath/soft404/internal/fuzzycmp"
	"github.com/ghostpath/soft404/internal/guard"
	"github.com/ghostpath/soft404/internal/httpx"
	"github.com/ghostpath/soft404/internal/memo"
	"github.com/ghostpath/soft404/internal/prober"
	"github.com/ghostpath/soft404/internal/sigstore"
	"github.com/ghostpath/soft404/internal/urlx"
)

// IsEqualRatio is the default body-similarity ratio above which two
// bodies are considered the same page for classification purposes.
const IsEqualRatio = 0.90

// NoContentMsg is the sentinel reason phrase a scanner's error-swallowing
// proxy layer stamps on a synthetic 204 it generates when a plugin's
// request failed. The classifier must recognize this exact shape
// (code 204, this reason, no headers) as "not found" rather than real
// content.
const NoContentMsg = "OK - Zero Size Response"

// notFoundResponseCodes lists status codes that, when the path's
// known-404 genuinely returns 404, prove the server CAN emit a real 404
// here, so seeing one of these codes instead means the query is real
// content.
var notFoundResponseCodes = map[int]struct{}{
	200: {}, 500: {}, 301: {}, 302: {}, 303: {}, 307: {}, 401: {},
}

// Config holds the per-scan configuration the classifier reads. The
// always/never sets are read-only after construction.
type Config struct {
	AlwaysNotFound  []string
	NeverNotFound   []string
	StringMatch404  string
	SimilarityRatio float64 // 0 means IsEqualRatio
	MemoCapacity    int     // 0 means memo.DefaultCapacity
}

// Classifier is the process-wide-in-spirit, session-owned soft-404
// decision engine. One instance should be constructed per scan via
// session.Session; it is not a global.
type Classifier struct {
	alwaysNotFound map[string]struct{}
	neverNotFound  map[string]struct{}
	stringMatch    string
	ratio          float64

	store  *sigstore.Store
	guard  *guard.Guard
	memo   *memo.Memo
	opener httpx.Opener
	pool   WorkerPool
	log    zerolog.Logger
}

// New builds a Classifier. store is owned by the caller (session.Session
// typically); Classifier never closes it.
func New(cfg Config, store *sigstore.Store, log zerolog.Logger) (*Classifier, error) {
	m, err := memo.New(cfg.MemoCapacity)
	if err != nil {
		return nil, err
	}

	ratio := cfg.SimilarityRatio
	if ratio <= 0 {
		ratio = IsEqualRatio
	}

	return &Classifier{
		alwaysNotFound: toSet(cfg.AlwaysNotFound),
		neverNotFound:  toSet(cfg.NeverNotFound),
		stringMatch:    cfg.StringMatch404,
		ratio:          ratio,
		store:          store,
		guard:          guard.New(),
		memo:           m,
		log:            log,
	}, nil
}

// SetOpener late-binds the HTTP transport collaborator.
func (c *Classifier) SetOpener(o httpx.Opener) {
	c.opener = o
}

// SetWorkerPool late-binds a bound on concurrent forced-404 probes. Pass
// nil to go back to unbounded probing.
func (c *Classifier) SetWorkerPool(p WorkerPool) {
	c.pool = p
}

// Reset discards the recent-decision memo, used when a session moves on
// to a new target. The signature store is left intact: its keys are
// already scoped per scheme+host+directory, so entries from a previous
// target simply go unread rather than needing eviction.
func (c *Classifier) Reset() {
	c.memo.Purge()
}

// IsNotFound is the classifier's entry point: memo check, single-flight
// acquisition, basic rules, complex rules, memo insert.
func (c *Classifier) IsNotFound(ctx context.Context, resp *httpx.Response) bool {
	traceID := shortTraceID()
	bodyKey := memo.Key(resp.URL.URL().String(), resp.Body)

	if decision, ok := c.memo.Get(bodyKey); ok {
		c.event(traceID, resp, nil).Bool("memo_hit", true).Msg("classification served from memo")
		return decision
	}

	decision := guard.With(c.guard, resp.URL.NormalizedPath(), func() bool {
		return c.decide(ctx, resp, traceID)
	})

	c.memo.Put(bodyKey, decision)
	return decision
}

func (c *Classifier) decide(ctx context.Context, resp *httpx.Response, traceID string) bool {
	if matched, verdict := c.basicRules(resp, traceID); matched {
		return verdict
	}
	return c.complexRules(ctx, resp, traceID)
}

// basicRules checks the cheap, deterministic conditions in order: first
// match wins.
func (c *Classifier) basicRules(resp *httpx.Response, traceID string) (matched, verdict bool) {
	domainPath := resp.URL.DomainPath()

	if _, ok := c.alwaysNotFound[domainPath]; ok {
		c.event(traceID, resp, nil).Msg("is a 404 [domain path in always-404 set]")
		return true, true
	}
	if _, ok := c.neverNotFound[domainPath]; ok {
		c.event(traceID, resp, nil).Msg("is NOT a 404 [domain path in never-404 set]")
		return true, false
	}
	if c.stringMatch != "" && strings.Contains(searchSurface(resp), c.stringMatch) {
		c.event(traceID, resp, nil).Msg("is a 404 [literal string-match-404 marker found]")
		return true, true
	}
	if resp.Code == 404 {
		c.event(traceID, resp, nil).Msg("is a 404 [status code 404]")
		return true, true
	}
	if resp.Code == 204 && resp.Reason == NoContentMsg && resp.HeadersEmpty() {
		c.event(traceID, resp, nil).Msg("is a 404 [synthetic 204 from error-swallowing proxy]")
		return true, true
	}
	return false, false
}

// complexRules fetches or builds the known-404 baseline for resp's path
// and compares the query response against it: status-code sanity check,
// document-type check, exact body match, fuzzy match, and finally the
// large-body tie-break when the body is too long to trust a fuzzy match
// alone.
func (c *Classifier) complexRules(ctx context.Context, resp *httpx.Response, traceID string) bool {
	query := fingerprint.Build(resp)

	known404, err := c.getOrCreate404(ctx, resp, query.NormalizedPath)
	if err != nil {
		// Transport failure: un-classifiable for this call, fall back to
		// the basic rules' (negative) result.
		c.event(traceID, resp, nil).Err(err).Msg("is NOT a 404 [forced-404 probe failed, falling back]")
		return false
	}

	if _, notFoundCode := notFoundResponseCodes[query.Code]; notFoundCode && known404.Code == 404 {
		c.event(traceID, resp, &known404).Msg("is NOT a 404 [known 404 for this path uses code 404]")
		return false
	}

	if query.DocType != known404.DocType {
		c.event(traceID, resp, &known404).Msg("is NOT a 404 [document type mismatch]")
		return false
	}

	if query.Body == known404.Body {
		c.event(traceID, resp, &known404).Msg("is a 404 [body equals known 404]")
		return true
	}

	if !fuzzycmp.Equal(known404.Body, query.Body, c.ratio) {
		c.event(traceID, resp, &known404).Msg("is NOT a 404 [below similarity ratio]")
		return false
	}

	if len(query.Body) < fuzzycmp.MaxFuzzyLength {
		c.event(traceID, resp, &known404).Msg("is a 404 [above similarity ratio, body within fuzzy-trust length]")
		return true
	}

	return c.largeBodyTieBreak(ctx, resp, query, known404, traceID)
}

// largeBodyTieBreak resolves the ambiguous case where the query body is
// within the similarity ratio of the known 404 but too long to trust a
// fuzzy match alone: it probes a second forced 404, extracts the region
// that varies between the two, and checks whether the query's own
// variable region matches that template.
func (c *Classifier) largeBodyTieBreak(ctx context.Context, resp *httpx.Response, query, known404_1 fingerprint.Signature, traceID string) bool {
	if !known404_1.HasDiff() {
		known404_2, err := c.probe(ctx, resp.URL, known404_1.URL)
		if err != nil {
			c.event(traceID, resp, &known404_1).Err(err).Msg("is NOT a 404 [tie-break probe failed, falling back]")
			return false
		}

		variableRegion, _ := diffx.Diff(known404_1.Body, known404_2.Body)
		known404_1 = known404_1.WithDiff(variableRegion)

		if err := c.store.Put(query.NormalizedPath, known404_1); err != nil {
			c.event(traceID, resp, &known404_1).Err(err).Msg("signature store write failed, continuing best-effort")
		}
	}

	if *known404_1.Diff == "" {
		c.event(traceID, resp, &known404_1).Msg("is NOT a 404 [two forced 404s are byte-identical, query is not]")
		return false
	}

	_, diffY := diffx.Diff(known404_1.Body, query.Body)
	isEqual := fuzzycmp.Equal(*known404_1.Diff, diffY, c.ratio)

	if isEqual {
		c.event(traceID, resp, &known404_1).Msg("is a 404 [variable region matches known-404 template]")
	} else {
		c.event(traceID, resp, &known404_1).Msg("is NOT a 404 [variable region diverges from known-404 template]")
	}
	return isEqual
}

// getOrCreate404 fetches the signature store's known-404 for path,
// populating it via the prober on a miss.
func (c *Classifier) getOrCreate404(ctx context.Context, resp *httpx.Response, normalizedPath string) (fingerprint.Signature, error) {
	if sig, ok := c.store.Get(normalizedPath); ok {
		return sig, nil
	}

	sig, err := c.probe(ctx, resp.URL)
	if err != nil {
		return fingerprint.Signature{}, err
	}

	if err := c.store.Put(normalizedPath, sig); err != nil {
		c.log.Warn().Str("normalized_path", normalizedPath).Err(err).Msg("signature store write failed, continuing best-effort")
	}

	return sig, nil
}

// probe runs a forced-404 probe against target, bounding concurrent
// probes through the worker pool when one is set.
func (c *Classifier) probe(ctx context.Context, target urlx.Target, exclude ...urlx.Target) (fingerprint.Signature, error) {
	if c.pool != nil {
		if err := c.pool.Acquire(ctx); err != nil {
			return fingerprint.Signature{}, err
		}
		defer c.pool.Release()
	}
	return prober.Probe(ctx, c.opener, target, exclude...)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// searchSurface concatenates serialized headers and body so a literal
// match-404 marker string is caught wherever the server put it.
func searchSurface(resp *httpx.Response) string {
	var b strings.Builder
	for k, values := range resp.Headers {
		for _, v := range values {
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteString("\n")
		}
	}
	b.Write(resp.Body)
	return b.String()
}

func shortTraceID() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func (c *Classifier) event(traceID string, resp *httpx.Response, known *fingerprint.Signature) *zerolog.Event {
	e := c.log.Debug().
		Str("trace_id", traceID).
		Str("url", resp.URL.URL().String()).
		Int64("response_id", resp.ID).
		Int("code", resp.Code).
		Int("body_len", len(resp.Body))
	if known != nil {
		e = e.Int64("known_404_id", known.ID)
	}
	return e
}
