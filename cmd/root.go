package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ghostpath/soft404/internal/config"
	"github.com/ghostpath/soft404/internal/reqparse"
	"github.com/ghostpath/soft404/internal/runner"
	"github.com/ghostpath/soft404/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var opts config.Options
var rawHeaders []string

type flagGroup struct {
	title string
	flags []string
}

var helpGroups = []flagGroup{
	{"TARGET", []string{"url", "urls-file", "request-file", "wordlist", "extensions", "force-extensions"}},
	{"DISCOVERY", []string{"recursive", "max-depth", "crawl", "crawl-depth"}},
	{"MATCHERS", []string{"include-status", "match-body"}},
	{"SOFT-404", []string{"smart-filter", "similarity-ratio", "always-404", "never-404", "match-404-string", "signature-db"}},
	{"FILTERS", []string{"exclude-status", "exclude-size", "exclude-body", "duplicate-threshold"}},
	{"RATE-LIMIT", []string{"threads", "timeout", "delay", "adaptive-throttle", "max-eta"}},
	{"HTTP", []string{"header", "user-agent", "proxy", "follow-redirects"}},
	{"OUTPUT", []string{"output", "format", "quiet", "no-color", "sort", "tree", "on-result"}},
	{"CONFIGURATION", []string{"resume-file"}},
}

var rootCmd = &cobra.Command{
	Use:     "soft404 -u <url> [flags]",
	Short:   "Fast web path brute-forcer with soft-404 detection",
	Version: version.Version,
	Long: `soft404 is a web path/file brute-forcing tool designed for penetration
testing and bug bounty hunting. It classifies each response against an
on-demand, per-directory forced-404 baseline, so custom error pages served
with a 200 (or any other misleading status) are filtered out automatically
instead of cluttering results.`,
	Example: `  soft404 -u https://example.com
  soft404 -u https://example.com -e php,html -t 50
  soft404 -u https://example.com -w custom.txt --smart-filter=false
  soft404 -u https://example.com -x 403,500 -o results.json --format json
  soft404 -r burp.req -e php,html
  soft404 -l urls.txt -w wordlist.txt
  soft404 -u https://example.com --match-body "Welcome"
  soft404 -u https://example.com --always-404 https://example.com/graveyard
  soft404 -u https://example.com --resume-file scan.state
  soft404 -u https://example.com --on-result "notify-send {url}"`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(rawHeaders) > 0 {
			opts.Headers = make(map[string]string, len(rawHeaders))
			for _, h := range rawHeaders {
				parts := strings.SplitN(h, ":", 2)
				if len(parts) != 2 {
					return fmt.Errorf("invalid header format %q, expected 'Key: Value'", h)
				}
				opts.Headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
			}
		}
		// Parse raw HTTP request file (e.g. Burp export) if provided.
		if opts.RequestFile != "" {
			parsed, err := reqparse.ParseFile(opts.RequestFile)
			if err != nil {
				return fmt.Errorf("parsing request file: %w", err)
			}
			// Use parsed URL if -u was not explicitly set.
			if !cmd.Flags().Changed("url") {
				opts.URL = parsed.URL
			}
			// Merge parsed headers (explicit -H flags take precedence).
			if opts.Headers == nil {
				opts.Headers = make(map[string]string)
			}
			for key, val := range parsed.Headers {
				k := strings.ToLower(key)
				// Skip hop-by-hop and encoding headers that don't make sense for fuzzing.
				if k == "host" || k == "content-length" || k == "accept-encoding" {
					continue
				}
				// Only set if not already overridden by -H flag.
				if _, exists := opts.Headers[key]; !exists {
					opts.Headers[key] = val
				}
			}
			// Use parsed User-Agent if --user-agent was not explicitly set.
			if !cmd.Flags().Changed("user-agent") {
				if ua, ok := parsed.Headers["User-Agent"]; ok {
					opts.UserAgent = ua
				}
			}
			if !opts.Quiet {
				fmt.Fprintf(os.Stderr, "[+] Loaded request from %s -> %s\n", opts.RequestFile, opts.URL)
			}
		}
		if opts.URL == "" && opts.URLsFile == "" {
			_ = cmd.Help()
			fmt.Fprintln(os.Stderr)
			return fmt.Errorf("target required: use -u, -l, or --request-file")
		}
		if opts.URL != "" && !strings.HasPrefix(opts.URL, "http://") && !strings.HasPrefix(opts.URL, "https://") {
			opts.URL = "http://" + opts.URL
		}
		if len(opts.IncludeStatus) > 0 && len(opts.ExcludeStatus) > 0 {
			return fmt.Errorf("--include-status and --exclude-status are mutually exclusive")
		}
		if opts.SortBy != "" && opts.SortBy != "status" && opts.SortBy != "path" && opts.SortBy != "size" {
			return fmt.Errorf("--sort must be one of: status, path, size")
		}
		if opts.SimilarityRatio != 0 && (opts.SimilarityRatio <= 0 || opts.SimilarityRatio > 1) {
			return fmt.Errorf("--similarity-ratio must be between 0 and 1")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return runner.Run(ctx, &opts)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()

	// Target
	f.StringVarP(&opts.URL, "url", "u", "", "Target URL")
	f.StringVarP(&opts.URLsFile, "urls-file", "l", "", "File with one URL per line")
	f.StringVarP(&opts.WordlistPath, "wordlist", "w", "", "Custom wordlist path (default: built-in)")
	f.StringSliceVarP(&opts.Extensions, "extensions", "e", nil, "File extensions to test (e.g. php,html,js)")
	f.BoolVarP(&opts.ForceExtensions, "force-extensions", "f", false, "Append extensions to every wordlist entry")

	// Performance
	f.IntVarP(&opts.Threads, "threads", "t", 25, "Number of concurrent threads")
	f.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "HTTP request timeout")
	f.DurationVar(&opts.Delay, "delay", 0, "Delay between requests per thread")
	f.BoolVar(&opts.AdaptiveThrottle, "adaptive-throttle", false, "Auto back-off on 429/rate limits")
	f.DurationVar(&opts.MaxETA, "max-eta", time.Hour, "Skip target if ETA exceeds this duration (0 to disable)")

	// Soft-404 classifier
	f.BoolVar(&opts.SmartFilter, "smart-filter", true, "Enable soft-404 classification")
	f.Float64Var(&opts.SimilarityRatio, "similarity-ratio", 0, "Body similarity ratio required to call a response a soft-404 (default 0.90)")
	f.StringSliceVar(&opts.AlwaysNotFound, "always-404", nil, "URLs that are always classified as 404, regardless of status/body")
	f.StringSliceVar(&opts.NeverNotFound, "never-404", nil, "URLs that are never classified as 404, regardless of status/body")
	f.StringVar(&opts.StringMatch404, "match-404-string", "", "Literal string in headers or body that always means 404")
	f.StringVar(&opts.SignatureDBPath, "signature-db", "", "Path for the on-disk signature cache (default: temp file, removed at exit)")

	// Filtering
	f.VarP(&intSliceValue{target: &opts.IncludeStatus}, "include-status", "i", "Only show these status codes (comma-separated)")
	f.VarP(&intSliceValue{target: &opts.ExcludeStatus}, "exclude-status", "x", "Hide these status codes (comma-separated)")
	f.Var(&intSliceValue{target: &opts.ExcludeSize}, "exclude-size", "Hide responses of these sizes (comma-separated)")
	f.IntVar(&opts.DuplicateThreshold, "duplicate-threshold", 3, "Hide responses once this many identical bodies (3x as many near-identical, at least 5) have been seen (0 disables)")

	// Body filtering
	f.StringVar(&opts.MatchBody, "match-body", "", "Only show responses containing this string")
	f.StringVar(&opts.ExcludeBody, "exclude-body", "", "Hide responses containing this string")

	// Output
	f.StringVarP(&opts.OutputFile, "output", "o", "", "Output file path")
	f.StringVar(&opts.OutputFormat, "format", "text", "Output format: text, json, csv")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "Minimal output")
	f.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	f.StringVar(&opts.SortBy, "sort", "", "Sort results: status, path, size (buffers until scan completes)")
	f.BoolVar(&opts.Tree, "tree", false, "Print directory tree summary after scan")

	// Recursion
	f.BoolVar(&opts.Recursive, "recursive", false, "Enable recursive scanning")
	f.IntVarP(&opts.MaxDepth, "max-depth", "R", 3, "Maximum recursion depth")

	// Resume
	f.StringVar(&opts.ResumeFile, "resume-file", "", "File to save/load scan progress for resume")

	// HTTP
	f.StringVarP(&opts.RequestFile, "request-file", "r", "", "Raw HTTP request file (e.g. Burp Suite export)")
	f.StringSliceVarP(&rawHeaders, "header", "H", nil, "Custom headers (Key: Value)")
	f.StringVar(&opts.UserAgent, "user-agent", "", "Custom User-Agent string")
	f.StringVar(&opts.Proxy, "proxy", "", "HTTP/SOCKS proxy URL")
	f.BoolVar(&opts.FollowRedirects, "follow-redirects", false, "Follow HTTP redirects")

	// Crawl
	f.BoolVar(&opts.Crawl, "crawl", true, "Crawl discovered pages for additional paths")
	f.IntVar(&opts.CrawlDepth, "crawl-depth", 2, "Maximum crawl depth (link-following hops)")

	// Hooks
	f.StringVar(&opts.OnResultCmd, "on-result", "", "Shell command to run for each result (receives JSON on stdin)")

	// Custom help: categorized flags like httpx.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		w := os.Stderr
		fmt.Fprint(w, helpBanner(cmd.Version))
		fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())
		fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		fmt.Fprintf(w, "\nFlags:\n")
		for _, g := range helpGroups {
			fmt.Fprintf(w, "\n%s:\n", g.title)
			for _, name := range g.flags {
				if f := cmd.Flags().Lookup(name); f != nil {
					fmt.Fprintln(w, formatFlag(f))
				}
			}
		}
		fmt.Fprintln(w)
	})
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// intSliceValue implements pflag.Value for comma-separated int slices.
type intSliceValue struct {
	target *[]int
}

func (v *intSliceValue) String() string {
	if v.target == nil || len(*v.target) == 0 {
		return ""
	}
	parts := make([]string, len(*v.target))
	for i, val := range *v.target {
		parts[i] = strconv.Itoa(val)
	}
	return strings.Join(parts, ",")
}

func (v *intSliceValue) Set(s string) error {
	parts := strings.Split(s, ",")
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid status code %q: %w", p, err)
		}
		*v.target = append(*v.target, n)
	}
	return nil
}

func (v *intSliceValue) Type() string { return "ints" }

func formatFlag(f *pflag.Flag) string {
	var left string
	if f.Shorthand != "" {
		left = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	} else {
		left = fmt.Sprintf("    --%s", f.Name)
	}

	typ := f.Value.Type()
	if typ != "bool" {
		left += " " + typ
	}

	// Pad to fixed column width for aligned descriptions.
	const col = 36
	for len(left) < col {
		left += " "
	}

	right := f.Usage
	// Show default for non-zero values.
	def := f.DefValue
	if def != "" && def != "false" && def != "0" && def != "0s" && def != "[]" {
		right += fmt.Sprintf(" (default %s)", def)
	}

	return "   " + left + right
}

func helpBanner(ver string) string {
	if ver != "dev" && ver != "" && !strings.HasPrefix(ver, "v") {
		ver = "v" + ver
	}
	return fmt.Sprintf(`
   _________  _____/ /_  _____  _____
  / ___/ __ \/ ___/ __/ / / / / / _ \
 (__  ) /_/ / /  / /_/ /_/ / / /_/ /
/____/\____/_/   \__/\__,_/_/\____/    %s

`, ver)
}
