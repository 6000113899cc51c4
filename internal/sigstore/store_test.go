package sigstore

import (
	"path/filepath"
	"testing"

	"github.com/ghostpath/soft404/internal/fingerprint"
	"github.com/ghostpath/soft404/internal/urlx"
)

func newTestStore(t *testing.T, maxInMemory int) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "signatures.db")
	s, err := Open(dbPath, maxInMemory)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testSignature(t *testing.T, path, body string) fingerprint.Signature {
	t.Helper()
	tgt, err := urlx.Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	return fingerprint.Signature{
		URL:            tgt,
		Code:           200,
		DocType:        fingerprint.DocHTML,
		NormalizedPath: tgt.NormalizedPath(),
		Body:           body,
	}
}

func TestStore_PutGet(t *testing.T) {
	s := newTestStore(t, 50)
	sig := testSignature(t, "http://h/a/probe1", "not found")

	if err := s.Put("http://h/a/", sig); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := s.Get("http://h/a/")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Body != "not found" {
		t.Errorf("Body = %q, want %q", got.Body, "not found")
	}
}

func TestStore_MissReturnsAbsent(t *testing.T) {
	s := newTestStore(t, 50)
	if _, ok := s.Get("http://h/nonexistent/"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestStore_DemotesColdEntriesToDisk(t *testing.T) {
	s := newTestStore(t, 1)

	sig1 := testSignature(t, "http://h/a/probe", "page a")
	sig2 := testSignature(t, "http://h/b/probe", "page b")

	if err := s.Put("http://h/a/", sig1); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("http://h/b/", sig2); err != nil {
		t.Fatal(err)
	}

	// Hot tier capacity is 1, so "http://h/a/" was evicted to disk.
	if s.Len() > 1 {
		t.Errorf("hot tier Len() = %d, want <= 1", s.Len())
	}

	got, ok := s.Get("http://h/a/")
	if !ok {
		t.Fatal("expected cold hit promoted from disk")
	}
	if got.Body != "page a" {
		t.Errorf("Body = %q, want %q", got.Body, "page a")
	}
}

func TestStore_PutOverwritesIdempotently(t *testing.T) {
	s := newTestStore(t, 50)
	sig1 := testSignature(t, "http://h/a/probe", "first")
	sig2 := testSignature(t, "http://h/a/probe", "second")

	_ = s.Put("http://h/a/", sig1)
	_ = s.Put("http://h/a/", sig2)

	got, _ := s.Get("http://h/a/")
	if got.Body != "second" {
		t.Errorf("Body = %q, want %q (last write wins)", got.Body, "second")
	}
}

func TestStore_DiffRoundTrips(t *testing.T) {
	s := newTestStore(t, 50)
	sig := testSignature(t, "http://h/a/probe", "body")
	sig = sig.WithDiff("variable-region")

	_ = s.Put("http://h/a/", sig)
	got, _ := s.Get("http://h/a/")

	if !got.HasDiff() || *got.Diff != "variable-region" {
		t.Errorf("Diff round-trip failed: got %+v", got.Diff)
	}
}
