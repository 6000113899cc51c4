package classify

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/ghostpath/soft404/internal/httpx"
	"github.com/ghostpath/soft404/internal/logging"
	"github.com/ghostpath/soft404/internal/sigstore"
	"github.com/ghostpath/soft404/internal/urlx"
)

// scriptedOpener returns a fixed (code, body) for every request unless
// seq or perPath overrides it, and records every target it was asked to
// send to.
type scriptedOpener struct {
	code int
	body string

	// seq, when non-empty, supplies the body of the n-th request in call
	// order (its last entry repeats), used to make a second forced-404
	// probe return different filler than the first.
	seq []string

	// perPath overrides the (code, body) for exact URL strings.
	perPath map[string]struct {
		code int
		body string
	}
	requested []string
}

func (o *scriptedOpener) Send(ctx context.Context, method string, target urlx.Target, headers map[string]string) (*httpx.Response, error) {
	o.requested = append(o.requested, target.URL().String())

	code, body := o.code, o.body
	if len(o.seq) > 0 {
		body = o.seq[min(len(o.requested), len(o.seq))-1]
	}
	if o.perPath != nil {
		if override, ok := o.perPath[target.URL().String()]; ok {
			code, body = override.code, override.body
		}
	}

	return &httpx.Response{
		ID:      httpx.NextID(),
		URL:     target,
		Code:    code,
		Headers: http.Header{"Content-Type": []string{"text/html"}},
		Body:    []byte(body),
	}, nil
}

func newTestClassifier(t *testing.T, opener httpx.Opener) *Classifier {
	t.Helper()
	store, err := sigstore.Open(t.TempDir()+"/sig.db", sigstore.DefaultMaxInMemory)
	if err != nil {
		t.Fatalf("sigstore.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	c, err := New(Config{}, store, logging.Default)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.SetOpener(opener)
	return c
}

func resp(t *testing.T, rawURL string, code int, body string, headers http.Header) *httpx.Response {
	t.Helper()
	tgt, err := urlx.Parse(rawURL)
	if err != nil {
		t.Fatal(err)
	}
	if headers == nil {
		headers = http.Header{"Content-Type": []string{"text/html"}}
	}
	return &httpx.Response{
		ID:      httpx.NextID(),
		URL:     tgt,
		Code:    code,
		Headers: headers,
		Body:    []byte(body),
	}
}

func TestIsNotFound_RealStatusCode(t *testing.T) {
	op := &scriptedOpener{code: 200, body: "whatever"}
	c := newTestClassifier(t, op)

	r := resp(t, "http://h/missing", 404, "Not Found", nil)
	if !c.IsNotFound(context.Background(), r) {
		t.Error("expected true for literal 404 status")
	}
	if len(op.requested) != 0 {
		t.Error("basic rule match must not issue any probe")
	}
}

func TestIsNotFound_SyntheticNoContent(t *testing.T) {
	op := &scriptedOpener{code: 200, body: "whatever"}
	c := newTestClassifier(t, op)

	r := resp(t, "http://h/flaky", 204, "", http.Header{})
	r.Reason = NoContentMsg
	if !c.IsNotFound(context.Background(), r) {
		t.Error("expected true for synthetic zero-size 204")
	}
}

func TestIsNotFound_AlwaysNotFoundOverride(t *testing.T) {
	op := &scriptedOpener{code: 200, body: "real content"}
	store, _ := sigstore.Open(t.TempDir()+"/sig.db", sigstore.DefaultMaxInMemory)
	t.Cleanup(func() { _ = store.Close() })

	c, err := New(Config{AlwaysNotFound: []string{"http://h/forced"}}, store, logging.Default)
	if err != nil {
		t.Fatal(err)
	}
	c.SetOpener(op)

	r := resp(t, "http://h/forced", 200, "looks real but isn't", nil)
	if !c.IsNotFound(context.Background(), r) {
		t.Error("expected always_404 override to win over a 200 status")
	}
}

func TestIsNotFound_NeverNotFoundOverride(t *testing.T) {
	op := &scriptedOpener{code: 200, body: "filler"}
	store, _ := sigstore.Open(t.TempDir()+"/sig.db", sigstore.DefaultMaxInMemory)
	t.Cleanup(func() { _ = store.Close() })

	c, err := New(Config{NeverNotFound: []string{"http://h/keep"}}, store, logging.Default)
	if err != nil {
		t.Fatal(err)
	}
	c.SetOpener(op)

	r := resp(t, "http://h/keep", 404, "Not Found", nil)
	if c.IsNotFound(context.Background(), r) {
		t.Error("expected never_404 override to win over a 404 status")
	}
}

func TestIsNotFound_StringMatch(t *testing.T) {
	op := &scriptedOpener{code: 200, body: "whatever"}
	store, _ := sigstore.Open(t.TempDir()+"/sig.db", sigstore.DefaultMaxInMemory)
	t.Cleanup(func() { _ = store.Close() })

	c, err := New(Config{StringMatch404: "resource-unavailable"}, store, logging.Default)
	if err != nil {
		t.Fatal(err)
	}
	c.SetOpener(op)

	r := resp(t, "http://h/x", 200, "<html>resource-unavailable</html>", nil)
	if !c.IsNotFound(context.Background(), r) {
		t.Error("expected literal marker string to force a 404 verdict")
	}
}

func TestIsNotFound_ExactBodyMatchesForcedNotFound(t *testing.T) {
	// The forced-404 probe and the query come back with the same
	// templated body, so the exact-equality rule classifies the query as
	// not-found after a single probe.
	op := &scriptedOpener{code: 200, body: "Sorry, the page you requested could not be located."}
	c := newTestClassifier(t, op)

	r := resp(t, "http://h/a/gone", 200, "Sorry, the page you requested could not be located.", nil)
	if !c.IsNotFound(context.Background(), r) {
		t.Error("expected exact-body match against the forced 404 to classify as not-found")
	}
	if len(op.requested) != 1 {
		t.Errorf("expected exactly one probe, got %d", len(op.requested))
	}
}

func TestIsNotFound_GenuineContentDiffers(t *testing.T) {
	op := &scriptedOpener{code: 200, body: "Sorry, not found."}
	c := newTestClassifier(t, op)

	r := resp(t, "http://h/a/real-article", 200, strings.Repeat("Real article content. ", 50), nil)
	if c.IsNotFound(context.Background(), r) {
		t.Error("expected genuinely different content to classify as found")
	}
}

func TestIsNotFound_KnownRealCodeShortCircuits(t *testing.T) {
	// Forced-404 probe itself returns 404 -> any 200/301/etc response
	// under the same directory proves the server *can* distinguish,
	// so a matching-body 200 must not be called a soft-404.
	op := &scriptedOpener{code: 404, body: "Sorry, not found."}
	c := newTestClassifier(t, op)

	r := resp(t, "http://h/a/real-article", 200, "Sorry, not found.", nil)
	if c.IsNotFound(context.Background(), r) {
		t.Error("expected code short-circuit to prevent false soft-404")
	}
}

func TestIsNotFound_DocTypeMismatch(t *testing.T) {
	op := &scriptedOpener{code: 200, body: "<html>not found</html>"}
	c := newTestClassifier(t, op)

	r := resp(t, "http://h/a/image.png", 200, "not html at all, just bytes", http.Header{"Content-Type": []string{"image/png"}})
	if c.IsNotFound(context.Background(), r) {
		t.Error("expected a document type mismatch to classify as found")
	}
}

func TestIsNotFound_LargeBodyTieBreakPositive(t *testing.T) {
	filler := strings.Repeat("x", fuzzycmpMaxLen())
	op := &scriptedOpener{
		code: 200,
		seq: []string{
			filler + " nonce-0000000001",
			filler + " nonce-0000000002",
		},
	}
	c := newTestClassifier(t, op)

	r := resp(t, "http://h/a/big", 200, filler+" nonce-0000000003", nil)

	// The two forced 404s differ only in their trailing nonce token, so
	// the tie-break isolates that token as the variable region; the
	// query's own differing token is within the similarity ratio of it.
	// This exercises the large-body branch end-to-end.
	got := c.IsNotFound(context.Background(), r)
	if !got {
		t.Error("expected large templated bodies differing only in a trailing token to classify as not-found")
	}
	if len(op.requested) != 2 {
		t.Errorf("expected exactly two probes for the large-body tie-break, got %d", len(op.requested))
	}
}

func TestIsNotFound_MemoShortCircuitsRepeatedCalls(t *testing.T) {
	op := &scriptedOpener{code: 200, body: "Sorry, not found."}
	c := newTestClassifier(t, op)

	r := resp(t, "http://h/a/gone", 200, "Sorry, not found.", nil)

	first := c.IsNotFound(context.Background(), r)
	probesAfterFirst := len(op.requested)

	second := c.IsNotFound(context.Background(), r)
	if second != first {
		t.Error("memo must return a consistent decision for an identical response")
	}
	if len(op.requested) != probesAfterFirst {
		t.Error("memo hit must not issue additional probes")
	}
}

func fuzzycmpMaxLen() int {
	return 4096
}
