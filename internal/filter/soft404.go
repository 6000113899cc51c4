package filter

import (
	"context"

	"github.com/ghostpath/soft404/internal/classify"
	"github.com/ghostpath/soft404/internal/httpx"
	"github.com/ghostpath/soft404/internal/scanner"
	"github.com/ghostpath/soft404/internal/urlx"
)

// Soft404Filter hides results the classifier decides are a soft-404: a
// custom not-found page served with a misleading status code. Unlike the
// bygone threshold-based calibration filter it replaces, every result is
// judged individually against a baseline fetched (and cached) on demand,
// rather than against a handful of probes taken once before the scan.
type Soft404Filter struct {
	classifier *classify.Classifier
}

// NewSoft404Filter wraps an already-constructed Classifier. The classifier
// is normally owned by the scan's session.Session and shared with whatever
// else needs it (e.g. a future interactive re-check command).
func NewSoft404Filter(c *classify.Classifier) *Soft404Filter {
	return &Soft404Filter{classifier: c}
}

func (f *Soft404Filter) Name() string { return "soft-404" }

func (f *Soft404Filter) ShouldFilter(result *scanner.ScanResult) bool {
	target, err := urlx.Parse(result.URL)
	if err != nil {
		return false
	}

	resp := &httpx.Response{
		ID:      httpx.NextID(),
		URL:     target,
		Code:    result.StatusCode,
		Reason:  result.Reason,
		Headers: result.Headers,
		Body:    result.Body,
	}

	return f.classifier.IsNotFound(context.Background(), resp)
}
