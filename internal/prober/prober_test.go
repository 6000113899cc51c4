package prober

import (
	"context"
	"net/http"
	"testing"

	"github.com/ghostpath/soft404/internal/httpx"
	"github.com/ghostpath/soft404/internal/urlx"
)

type fakeOpener struct {
	requested []urlx.Target
	body      string
	code      int
}

func (f *fakeOpener) Send(ctx context.Context, method string, target urlx.Target, headers map[string]string) (*httpx.Response, error) {
	f.requested = append(f.requested, target)
	return &httpx.Response{
		ID:      httpx.NextID(),
		URL:     target,
		Code:    f.code,
		Headers: http.Header{},
		Body:    []byte(f.body),
	}, nil
}

func TestProbe_TargetsSiblingUnderDirectory(t *testing.T) {
	ref, _ := urlx.Parse("http://h/x/a")
	op := &fakeOpener{code: 200, body: "not found"}

	sig, err := Probe(context.Background(), op, ref)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}

	if len(op.requested) != 1 {
		t.Fatalf("expected 1 request, got %d", len(op.requested))
	}
	got := op.requested[0].URL()
	if got.Path == "/x/a" {
		t.Errorf("probe must not hit the reference path itself, got %s", got)
	}
	if sig.Body != "not found" {
		t.Errorf("signature body = %q", sig.Body)
	}
}

func TestProbe_RespectsExclude(t *testing.T) {
	ref, _ := urlx.Parse("http://h/x/a")
	op := &fakeOpener{code: 200, body: "not found"}

	first, err := Probe(context.Background(), op, ref)
	if err != nil {
		t.Fatal(err)
	}

	second, err := Probe(context.Background(), op, ref, first.URL)
	if err != nil {
		t.Fatal(err)
	}

	if op.requested[0].URL().String() == op.requested[1].URL().String() {
		t.Error("second probe should target a different URL than the excluded first one")
	}
	_ = second
}
