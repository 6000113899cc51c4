// Package urlx provides the URL slicing primitives the classifier core
// consumes: the normalized path used as the signature-store key, and the
// domain path used as the key for the user's always/never-404 sets.
package urlx

import (
	"net/url"
	"path"
	"strings"
)

// Target wraps a parsed URL and exposes the slicing operations the
// classifier needs. It never mutates the underlying *url.URL.
type Target struct {
	u *url.URL
}

// Parse parses raw into a Target. Equivalent to url.Parse followed by New.
func Parse(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, err
	}
	return New(u), nil
}

// New wraps an already-parsed URL.
func New(u *url.URL) Target {
	return Target{u: u}
}

// URL returns the underlying *url.URL.
func (t Target) URL() *url.URL { return t.u }

// NormalizedPath is scheme+host+directory only, trailing filename
// stripped. Two URLs under the same directory share a signature.
//
//	http://h/a/b/c.php?x=1  ->  http://h/a/b/
//	http://h/a/b/           ->  http://h/a/b/
func (t Target) NormalizedPath() string {
	dir := t.Directory()
	return t.u.Scheme + "://" + t.u.Host + dir
}

// DomainPath is scheme+host+full path (no query, no fragment). It is the
// key used for the user-configured always_404/never_404 sets, which are
// per-resource, not per-directory.
func (t Target) DomainPath() string {
	p := t.u.Path
	if p == "" {
		p = "/"
	}
	return t.u.Scheme + "://" + t.u.Host + p
}

// Directory returns the path up to and including the last "/".
func (t Target) Directory() string {
	p := t.u.Path
	if p == "" || !strings.Contains(p, "/") {
		return "/"
	}
	return p[:strings.LastIndex(p, "/")+1]
}

// LastSegment returns the final path component (filename), empty for a
// directory URL. Used by the fingerprint cleaner to redact a reflected
// request path from the response body.
func (t Target) LastSegment() string {
	if t.u.Path == "" || strings.HasSuffix(t.u.Path, "/") {
		return ""
	}
	return path.Base(t.u.Path)
}

// WithPath returns a copy of the target with its path replaced, used by
// the prober to build a forced-404 URL under the same directory.
func (t Target) WithPath(p string) Target {
	cp := *t.u
	cp.Path = p
	cp.RawQuery = ""
	cp.Fragment = ""
	return Target{u: &cp}
}
