package fingerprint

import (
	"net/http"
	"strings"
)

// DocType is a coarse classification of a response body, used to
// short-circuit comparisons between documents that could never be fuzzy
// matches of each other.
type DocType int

const (
	DocUnknown DocType = iota
	DocEmpty
	DocHTML
	DocPlainText
	DocImage
	DocBinary
)

func (d DocType) String() string {
	switch d {
	case DocEmpty:
		return "empty"
	case DocHTML:
		return "html"
	case DocPlainText:
		return "text"
	case DocImage:
		return "image"
	case DocBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// ClassifyDocType is deterministic from body alone: two responses with
// identical bodies always get the same DocType, regardless of what
// Content-Type header (if any) accompanied either one. It uses the
// standard library sniffer (http.DetectContentType) as its primary
// signal; no third-party MIME sniffing library appears anywhere in the
// retrieved corpus, so pulling one in for this alone would be a
// dependency with no other use.
func ClassifyDocType(body []byte) DocType {
	if len(body) == 0 {
		return DocEmpty
	}

	ct := strings.ToLower(http.DetectContentType(body))

	switch {
	case strings.Contains(ct, "text/html"), strings.Contains(ct, "application/xhtml"):
		return DocHTML
	case strings.Contains(ct, "image/"):
		return DocImage
	case strings.Contains(ct, "text/plain"), strings.Contains(ct, "text/css"), strings.Contains(ct, "application/json"), strings.Contains(ct, "application/xml"), strings.Contains(ct, "text/xml"), strings.Contains(ct, "javascript"):
		return DocPlainText
	case strings.HasPrefix(ct, "text/"):
		return DocPlainText
	default:
		if looksLikeHTML(body) {
			return DocHTML
		}
		if looksLikeText(body) {
			return DocPlainText
		}
		return DocBinary
	}
}

func looksLikeHTML(body []byte) bool {
	head := strings.ToLower(strings.TrimSpace(string(body[:min(512, len(body))])))
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") || strings.Contains(head, "<body")
}

func looksLikeText(body []byte) bool {
	sample := body[:min(512, len(body))]
	for _, b := range sample {
		if b == 0 {
			return false
		}
	}
	return true
}
