// Package logging wires up the structured diagnostic logger the
// classifier uses to trace each decision. CLI-facing narration (banners,
// progress) stays on the plain fmt.Fprintf(os.Stderr, "[*] ...") path
// used throughout internal/runner and internal/output; this package is
// only for the classifier's per-decision trace.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger writing to w. When pretty is true (an
// attached terminal, not --quiet/--no-color), output goes through
// zerolog's ConsoleWriter for human-readable lines; otherwise it emits
// compact JSON suitable for redirection into a log aggregator.
func New(w io.Writer, pretty bool) zerolog.Logger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// Default is a ready-to-use logger writing JSON to stderr, used where a
// caller hasn't configured one explicitly (mainly tests).
var Default = New(os.Stderr, false)
