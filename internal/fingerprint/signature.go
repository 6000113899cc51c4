package fingerprint

import "github.com/ghostpath/soft404/internal/urlx"

// Signature is the cleaned, comparison-ready form of an HTTP response,
// cached per normalized path.
//
// A Signature is otherwise immutable once built; Diff is the one field
// that can be populated after the fact, and it is done by producing a
// new Signature value (WithDiff) rather than mutating a shared one in
// place. Callers only ever hand out copies.
type Signature struct {
	URL            urlx.Target
	ID             int64
	Code           int
	DocType        DocType
	NormalizedPath string
	Body           string
	Diff           *string
}

// HasDiff reports whether a tie-break diff has already been computed for
// this path. Absent until the first large-body tie-break, then reused.
func (s Signature) HasDiff() bool {
	return s.Diff != nil
}

// WithDiff returns a copy of s with Diff set to d.
func (s Signature) WithDiff(d string) Signature {
	s.Diff = &d
	return s
}
