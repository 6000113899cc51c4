// Package fingerprint builds the canonical, comparison-ready form of an
// HTTP response: a Signature with its body cleaned of volatile tokens
// and its document type classified.
package fingerprint

import "github.com/ghostpath/soft404/internal/urlx"

// response is the minimal read-only view Build needs. httpx.Response
// satisfies it; kept as an unexported interface so this package does not
// import httpx and create a dependency cycle with packages that need
// both fingerprint and httpx.
type response interface {
	GetID() int64
	GetURL() urlx.Target
	GetCode() int
	GetBody() []byte
}

// Build converts a raw response into a Signature. It is total: there is
// no error return.
func Build(r response) Signature {
	body := string(r.GetBody())
	cleaned := Clean(body, r.GetURL())

	return Signature{
		URL:            r.GetURL(),
		ID:             r.GetID(),
		Code:           r.GetCode(),
		DocType:        ClassifyDocType(r.GetBody()),
		NormalizedPath: r.GetURL().NormalizedPath(),
		Body:           cleaned,
	}
}
