package config

import "time"

// Options holds all configuration for a soft404 scan.
type Options struct {
	// Target
	URL             string
	URLsFile        string   // -l: file with one URL per line
	WordlistPath    string   // empty = use embedded
	Extensions      []string
	ForceExtensions bool

	// Performance
	Threads          int
	Timeout          time.Duration
	Delay            time.Duration
	AdaptiveThrottle bool // auto back-off on 429/rate limits
	MaxETA           time.Duration

	// Soft-404 classifier
	SmartFilter        bool     // enable the soft-404 classifier
	AlwaysNotFound     []string // domain-paths the user asserts are always 404
	NeverNotFound      []string // domain-paths the user asserts are never 404
	StringMatch404     string   // literal marker string that always means 404
	SimilarityRatio    float64  // 0 uses classify.IsEqualRatio
	SignatureCacheSize int      // in-memory tier size, 0 uses sigstore.DefaultMaxInMemory
	MemoCacheSize      int      // recent-decision memo size, 0 uses memo.DefaultCapacity
	SignatureDBPath    string   // empty = a process-scoped temp file

	// Status filtering
	IncludeStatus []int
	ExcludeStatus []int
	ExcludeSize   []int

	// Body filtering
	MatchBody   string // only show responses containing this string
	ExcludeBody string // hide responses containing this string

	// Duplicate suppression
	DuplicateThreshold int // 0 disables; N allows N identical bodies (3N near-identical, at least 5) through before hiding the rest

	// Output
	OutputFile   string
	OutputFormat string // "text", "json", "csv"
	Quiet        bool
	NoColor      bool
	SortBy       string // "", "status", "path", "size"
	Tree         bool   // print a directory tree summary after scan

	// Recursion
	Recursive bool
	MaxDepth  int

	// Resume
	ResumeFile string // path to save/load scan state

	// HTTP
	RequestFile     string // path to raw HTTP request file (e.g. Burp export)
	Headers         map[string]string
	UserAgent       string
	Proxy           string
	FollowRedirects bool

	// Crawl
	Crawl      bool // crawl discovered pages for additional paths
	CrawlDepth int  // maximum link-following hops

	// Hooks
	OnResultCmd string // command to run for each result (receives JSON on stdin)
}
