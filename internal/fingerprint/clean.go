package fingerprint

import (
	"regexp"
	"strings"

	"github.com/ghostpath/soft404/internal/urlx"
)

// cleaningPattern pairs a volatile-token regex with the placeholder that
// replaces every match. Two responses that differ only in matches of
// these patterns must clean to an identical body.
type cleaningPattern struct {
	name string
	re   *regexp.Regexp
}

var cleaningPatterns = []cleaningPattern{
	// CSRF tokens of common shapes: hidden form fields and meta tags
	// carrying a 16-64 char hex/base64-ish value.
	{"csrf", regexp.MustCompile(`(?i)(csrf[_-]?token["'=:\s]+)[a-z0-9+/_=-]{16,64}`)},
	// Session identifiers in query strings or inline script blobs.
	{"session", regexp.MustCompile(`(?i)(PHPSESSID|JSESSIONID|ASP\.NET_SessionId|sessionid)=[a-z0-9]{8,64}`)},
	// Request ids, the kind a reverse proxy or app framework stamps on
	// every response for tracing.
	{"request-id", regexp.MustCompile(`(?i)(x-request-id|request[_-]?id)["'=:\s]+[a-f0-9-]{8,36}`)},
	// RFC3339-ish timestamps and common "Mon, 02 Jan 2006" HTTP-date text
	// that servers sometimes echo into error pages.
	{"timestamp", regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?`)},
	{"http-date", regexp.MustCompile(`(?i)(?:Mon|Tue|Wed|Thu|Fri|Sat|Sun), \d{2} (?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec) \d{4} \d{2}:\d{2}:\d{2} GMT`)},
	// Unix epoch millisecond/second timestamps embedded as nonce-looking
	// standalone numbers (10 or 13 digits).
	{"epoch", regexp.MustCompile(`\b1[5-9]\d{8}(?:\d{3})?\b`)},
}

const pathPlaceholder = "{PATH}"

// Clean redacts volatile tokens from body so that two otherwise-identical
// responses produce an equal cleaned body. It first strips the reflected
// request URL and its last path segment (the most common source of
// false negatives for soft-404 pages that echo "not found: <path>"),
// then applies the generic cleaningPatterns.
func Clean(body string, target urlx.Target) string {
	cleaned := body

	if full := target.URL().String(); full != "" {
		cleaned = strings.ReplaceAll(cleaned, full, pathPlaceholder)
	}
	if seg := target.LastSegment(); seg != "" && len(seg) > 2 {
		cleaned = strings.ReplaceAll(cleaned, seg, pathPlaceholder)
	}
	if p := target.URL().Path; p != "" && p != "/" {
		cleaned = strings.ReplaceAll(cleaned, p, pathPlaceholder)
	}

	for _, cp := range cleaningPatterns {
		cleaned = cp.re.ReplaceAllString(cleaned, "$1"+"{"+cp.name+"}")
	}

	return cleaned
}
