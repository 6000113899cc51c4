package runner

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ghostpath/soft404/internal/config"
	"github.com/ghostpath/soft404/internal/crawl"
	"github.com/ghostpath/soft404/internal/filter"
	"github.com/ghostpath/soft404/internal/hook"
	"github.com/ghostpath/soft404/internal/output"
	"github.com/ghostpath/soft404/internal/resume"
	"github.com/ghostpath/soft404/internal/scanner"
	"github.com/ghostpath/soft404/internal/session"
	"github.com/ghostpath/soft404/internal/wordlist"
	"github.com/ghostpath/soft404/pkg/version"
)

// Run executes the full scan pipeline. It supports multiple targets via -l
// (URL list file), scanning each one in sequence.
func Run(ctx context.Context, opts *config.Options) error {
	targets, err := resolveTargets(opts)
	if err != nil {
		return err
	}

	var sess *session.Session
	if opts.SmartFilter {
		sess, err = session.New(opts)
		if err != nil {
			return fmt.Errorf("starting classifier session: %w", err)
		}
		defer sess.Close()
	}

	for idx, target := range targets {
		if len(targets) > 1 && !opts.Quiet {
			fmt.Fprintf(os.Stderr, "\n[*] Target %d/%d: %s\n", idx+1, len(targets), target)
		}
		opts.URL = target
		if err := runSingleTarget(ctx, opts, sess); err != nil {
			if ctx.Err() != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "[!] Error scanning %s: %v\n", target, err)
		}
		if sess != nil && idx < len(targets)-1 {
			sess.Reset()
		}
	}
	return nil
}

// resolveTargets builds the list of URLs to scan from -u and -l.
func resolveTargets(opts *config.Options) ([]string, error) {
	var targets []string

	if opts.URL != "" {
		targets = append(targets, opts.URL)
	}

	if opts.URLsFile != "" {
		f, err := os.Open(opts.URLsFile)
		if err != nil {
			return nil, fmt.Errorf("opening URLs file: %w", err)
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line != "" && !strings.HasPrefix(line, "#") {
				if !strings.HasPrefix(line, "http://") && !strings.HasPrefix(line, "https://") {
					line = "http://" + line
				}
				targets = append(targets, line)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading URLs file: %w", err)
		}
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets specified (-u or -l)")
	}
	return targets, nil
}

func runSingleTarget(ctx context.Context, opts *config.Options, sess *session.Session) error {
	// 1. Load wordlist.
	paths, err := wordlist.Load(opts.WordlistPath, opts.Extensions, opts.ForceExtensions)
	if err != nil {
		return fmt.Errorf("loading wordlist: %w", err)
	}

	// 2. Create HTTP requester.
	req, err := scanner.NewRequester(opts)
	if err != nil {
		return fmt.Errorf("creating requester: %w", err)
	}

	// 3. Build filter chain. Body-dependent filters (soft-404, match/exclude)
	// need the response body retained past the worker pool.
	needBody := opts.MatchBody != "" || opts.ExcludeBody != "" || opts.Crawl || sess != nil
	chain := filter.NewChain()
	if len(opts.IncludeStatus) > 0 || len(opts.ExcludeStatus) > 0 {
		chain.Add(filter.NewStatusFilter(opts.IncludeStatus, opts.ExcludeStatus))
	}
	if len(opts.ExcludeSize) > 0 {
		chain.Add(filter.NewSizeFilter(opts.ExcludeSize))
	}
	if sess != nil {
		chain.Add(filter.NewSoft404Filter(sess.Classifier))
	}
	if opts.MatchBody != "" {
		chain.Add(filter.NewBodyMatchFilter(opts.MatchBody))
	}
	if opts.ExcludeBody != "" {
		chain.Add(filter.NewBodyExcludeFilter(opts.ExcludeBody))
	}
	if opts.DuplicateThreshold > 0 {
		chain.Add(filter.NewDuplicateFilter(opts.DuplicateThreshold))
	}

	// 4. Resume support.
	var resumeState *resume.State
	if opts.ResumeFile != "" {
		existing, err := resume.Load(opts.ResumeFile)
		if err != nil {
			return fmt.Errorf("loading resume file: %w", err)
		}
		if existing != nil && existing.URL == opts.URL {
			resumeState = existing
			before := len(paths)
			paths = resumeState.FilterRemaining(paths)
			if !opts.Quiet {
				fmt.Fprintf(os.Stderr, "[+] Resuming: skipping %d already completed paths\n", before-len(paths))
			}
		} else {
			resumeState = resume.New(opts.ResumeFile, opts.URL, len(paths))
		}

		// Save state on interrupt for resume.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			if resumeState != nil {
				_ = resumeState.Save()
				fmt.Fprintf(os.Stderr, "\n[*] Progress saved to %s — resume with --resume-file\n", opts.ResumeFile)
			}
		}()
	}

	if len(paths) == 0 {
		if !opts.Quiet {
			fmt.Fprintf(os.Stderr, "[+] All paths already completed\n")
		}
		return nil
	}

	// 5. Create output writer.
	out, err := createWriter(opts)
	if err != nil {
		return fmt.Errorf("creating output writer: %w", err)
	}
	defer out.Close()

	if err := out.WriteHeader(); err != nil {
		return err
	}

	// 6. Print banner.
	if !opts.Quiet {
		printBanner(opts, len(paths))
	}

	// 7. Create throttler, pauser, and hook runner.
	throttler := scanner.NewThrottler(opts.Delay, opts.AdaptiveThrottle, opts.Quiet)

	pauser, cleanupStdin := startStdinToggle(opts.Quiet)
	defer cleanupStdin()

	var hookRunner *hook.Runner
	if opts.OnResultCmd != "" {
		hookRunner = hook.NewRunner(opts.OnResultCmd, opts.Quiet)
	}

	workerCfg := scanner.WorkerConfig{
		Threads:   opts.Threads,
		Throttler: throttler,
		Pauser:    pauser,
		KeepBody:  needBody,
	}

	// 8. Build work items and run worker pool.
	items := expandItems(paths)

	progress := output.NewProgress(len(items), opts.Quiet)
	if pauser != nil {
		progress.SetPauser(pauser)
	}
	progress.Start()
	startTime := time.Now()

	scanCtx := ctx
	if opts.MaxETA > 0 {
		var cancel context.CancelFunc
		scanCtx, cancel = context.WithCancel(ctx)
		defer cancel()
		go watchETA(scanCtx, cancel, progress, opts.MaxETA, opts.URL, opts.Quiet)
	}

	results := scanner.RunWorkerPool(scanCtx, req, items, workerCfg)

	var stats output.Stats
	stats.TotalRequests = len(items)

	var discoveredDirs []string
	var allDirs []string
	var crawledPaths []string
	scannedSet := make(map[string]struct{}, len(items))
	for _, item := range items {
		scannedSet[item.Path] = struct{}{}
	}

	for result := range results {
		progress.Increment()

		if resumeState != nil {
			resumeState.MarkCompleted(result.Path)
		}

		if result.Error != nil {
			stats.ErrorCount++
			progress.IncrementErrors()
			continue
		}

		// Apply filter chain.
		filtered, reason := chain.Apply(&result)
		if filtered {
			result.Filtered = true
			result.FilterReason = reason
			stats.FilteredCount++
			progress.IncrementFiltered()
			continue
		}
		progress.IncrementFound()

		// Extract links before clearing body.
		if opts.Crawl && result.Body != nil {
			newPaths := crawl.ExtractPaths(result.Body, opts.URL)
			for _, p := range newPaths {
				if _, already := scannedSet[p]; !already {
					crawledPaths = append(crawledPaths, p)
					scannedSet[p] = struct{}{}
				}
			}
		}

		// Only a genuine hit (one that survived the filter chain, soft-404
		// classification included) justifies recursing into a directory.
		if opts.Recursive && looksLikeDirectory(result) {
			discoveredDirs = append(discoveredDirs, result.Path)
		}
		if opts.Tree && looksLikeDirectory(result) {
			allDirs = append(allDirs, result.Path)
		}

		// Clear body to free memory after filtering and crawling.
		result.Body = nil

		progress.ClearLine()
		if err := out.WriteResult(&result); err != nil {
			progress.Redraw()
			return err
		}
		progress.Redraw()

		// Run hook for non-filtered results.
		if hookRunner != nil {
			hookRunner.Run(&result)
		}
	}

	// 9. Resume save after the main pass.
	if resumeState != nil {
		_ = resumeState.Save()
	}

	// 10. Recursive scanning (breadth-first).
	if opts.Recursive && len(discoveredDirs) > 0 {
		nextDirs, err := runRecursive(scanCtx, opts, req, chain, out, progress, throttler, pauser, hookRunner, needBody, discoveredDirs, paths, &stats, resumeState, 1)
		allDirs = append(allDirs, nextDirs...)
		if err != nil {
			progress.Stop()
			return err
		}
	}

	// 11. Crawl passes.
	if opts.Crawl && len(crawledPaths) > 0 {
		err := runCrawlPasses(scanCtx, opts, req, chain, out, progress, throttler, pauser, hookRunner, needBody, crawledPaths, scannedSet, &stats, resumeState, 1)
		if err != nil {
			progress.Stop()
			return err
		}
	}

	progress.Stop()

	if opts.Tree && len(allDirs) > 0 {
		output.PrintTree(os.Stderr, allDirs)
	}

	// 12. Write footer.
	stats.Duration = time.Since(startTime)
	if stats.Duration.Seconds() > 0 {
		stats.RequestsPerSec = float64(stats.TotalRequests) / stats.Duration.Seconds()
	}

	// Clean up resume file on successful completion.
	if resumeState != nil {
		_ = resumeState.Remove()
	}

	return out.WriteFooter(stats)
}

// watchETA samples the measured completion rate and aborts the scan once
// the projected remaining duration exceeds maxETA. It waits for a minimum
// sample size before trusting the estimate, since the rate is noisy on the
// first few completions.
func watchETA(ctx context.Context, cancel context.CancelFunc, progress *output.Progress, maxETA time.Duration, target string, quiet bool) {
	const minSample = 20
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if progress.Completed() < minSample {
				continue
			}
			if eta := progress.ETA(); eta > maxETA {
				if !quiet {
					fmt.Fprintf(os.Stderr, "\n[!] Aborting %s: projected remaining time %s exceeds --max-eta %s\n", target, eta.Round(time.Second), maxETA)
				}
				cancel()
				return
			}
		}
	}
}

func runRecursive(
	ctx context.Context,
	opts *config.Options,
	req *scanner.Requester,
	chain *filter.Chain,
	out output.Writer,
	progress *output.Progress,
	throttler *scanner.Throttler,
	pauser *scanner.Pauser,
	hookRunner *hook.Runner,
	needBody bool,
	dirs []string,
	basePaths []string,
	stats *output.Stats,
	resumeState *resume.State,
	depth int,
) ([]string, error) {
	if depth > opts.MaxDepth {
		return nil, nil
	}

	var nextDirs []string
	var allFound []string

	for _, dir := range dirs {
		select {
		case <-ctx.Done():
			return allFound, ctx.Err()
		default:
		}

		// Build new paths by prepending the discovered directory.
		newPaths := make([]string, len(basePaths))
		for i, p := range basePaths {
			newPaths[i] = strings.TrimRight(dir, "/") + "/" + strings.TrimLeft(p, "/")
		}

		if !opts.Quiet {
			fmt.Fprintf(os.Stderr, "\n[*] Recursing into /%s (depth %d/%d, %d paths)\n",
				dir, depth, opts.MaxDepth, len(newPaths))
		}

		workerCfg := scanner.WorkerConfig{
			Threads:   opts.Threads,
			Throttler: throttler,
			Pauser:    pauser,
			KeepBody:  needBody,
		}

		newItems := expandItems(newPaths)
		results := scanner.RunWorkerPool(ctx, req, newItems, workerCfg)
		stats.TotalRequests += len(newItems)

		for result := range results {
			progress.Increment()

			if resumeState != nil {
				resumeState.MarkCompleted(result.Path)
			}

			if result.Error != nil {
				stats.ErrorCount++
				progress.IncrementErrors()
				continue
			}

			filtered, reason := chain.Apply(&result)
			if filtered {
				result.Filtered = true
				result.FilterReason = reason
				stats.FilteredCount++
				progress.IncrementFiltered()
				continue
			}
			progress.IncrementFound()

			if looksLikeDirectory(result) {
				nextDirs = append(nextDirs, result.Path)
				allFound = append(allFound, result.Path)
			}

			result.Body = nil

			progress.ClearLine()
			if err := out.WriteResult(&result); err != nil {
				progress.Redraw()
				return allFound, err
			}
			progress.Redraw()

			if hookRunner != nil {
				hookRunner.Run(&result)
			}
		}
	}

	if resumeState != nil {
		_ = resumeState.Save()
	}

	if len(nextDirs) > 0 {
		deeper, err := runRecursive(ctx, opts, req, chain, out, progress, throttler, pauser, hookRunner, needBody, nextDirs, basePaths, stats, resumeState, depth+1)
		allFound = append(allFound, deeper...)
		return allFound, err
	}

	return allFound, nil
}

func looksLikeDirectory(result scanner.ScanResult) bool {
	if strings.HasSuffix(result.Path, "/") {
		return true
	}
	if result.StatusCode >= 300 && result.StatusCode < 400 {
		if strings.HasSuffix(result.RedirectURL, result.Path+"/") ||
			strings.HasSuffix(result.RedirectURL, "/") {
			return true
		}
	}
	if result.StatusCode >= 200 && result.StatusCode < 300 {
		lastSegment := result.Path
		if idx := strings.LastIndex(result.Path, "/"); idx >= 0 {
			lastSegment = result.Path[idx+1:]
		}
		return !strings.Contains(lastSegment, ".")
	}
	return false
}

func createWriter(opts *config.Options) (output.Writer, error) {
	var w output.Writer
	var err error
	switch opts.OutputFormat {
	case "json":
		w, err = output.NewJSONWriter(opts.OutputFile)
	case "csv":
		w, err = output.NewCSVWriter(opts.OutputFile)
	default:
		w, err = output.NewTextWriter(opts.OutputFile, opts.NoColor, opts.Quiet)
	}
	if err != nil {
		return nil, err
	}
	if opts.SortBy != "" {
		w = output.NewSortedWriter(w, opts.SortBy)
	}
	return w, nil
}

func expandItems(paths []string) []scanner.WorkItem {
	items := make([]scanner.WorkItem, 0, len(paths))
	for _, p := range paths {
		items = append(items, scanner.WorkItem{Method: "GET", Path: p})
	}
	return items
}

func runCrawlPasses(
	ctx context.Context,
	opts *config.Options,
	req *scanner.Requester,
	chain *filter.Chain,
	out output.Writer,
	progress *output.Progress,
	throttler *scanner.Throttler,
	pauser *scanner.Pauser,
	hookRunner *hook.Runner,
	needBody bool,
	newPaths []string,
	scannedSet map[string]struct{},
	stats *output.Stats,
	resumeState *resume.State,
	depth int,
) error {
	if depth > opts.CrawlDepth || len(newPaths) == 0 {
		return nil
	}

	items := expandItems(newPaths)
	progress.AddTotal(len(items))
	stats.TotalRequests += len(items)

	if !opts.Quiet {
		progress.ClearLine()
		fmt.Fprintf(os.Stderr, "[*] Crawl pass %d/%d: %d new paths discovered\n",
			depth, opts.CrawlDepth, len(newPaths))
		progress.Redraw()
	}

	workerCfg := scanner.WorkerConfig{
		Threads:   opts.Threads,
		Throttler: throttler,
		Pauser:    pauser,
		KeepBody:  needBody,
	}

	results := scanner.RunWorkerPool(ctx, req, items, workerCfg)

	var nextPaths []string

	for result := range results {
		progress.Increment()

		if resumeState != nil {
			resumeState.MarkCompleted(result.Path)
		}
		if result.Error != nil {
			stats.ErrorCount++
			progress.IncrementErrors()
			continue
		}

		filtered, reason := chain.Apply(&result)
		if filtered {
			result.Filtered = true
			result.FilterReason = reason
			stats.FilteredCount++
			progress.IncrementFiltered()
			continue
		}
		progress.IncrementFound()

		// Extract links before clearing body.
		if result.Body != nil {
			discovered := crawl.ExtractPaths(result.Body, opts.URL)
			for _, p := range discovered {
				if _, already := scannedSet[p]; !already {
					nextPaths = append(nextPaths, p)
					scannedSet[p] = struct{}{}
				}
			}
		}
		result.Body = nil

		progress.ClearLine()
		if err := out.WriteResult(&result); err != nil {
			progress.Redraw()
			return err
		}
		progress.Redraw()

		if hookRunner != nil {
			hookRunner.Run(&result)
		}
	}

	if len(nextPaths) > 0 {
		return runCrawlPasses(ctx, opts, req, chain, out, progress, throttler, pauser, hookRunner, needBody, nextPaths, scannedSet, stats, resumeState, depth+1)
	}

	return nil
}

func printBanner(opts *config.Options, pathCount int) {
	const (
		cyan   = "\033[36m"
		white  = "\033[97m"
		dim    = "\033[2m"
		red    = "\033[31m"
		green  = "\033[32m"
		yellow = "\033[33m"
		reset  = "\033[0m"
	)

	c, w, d, r, g, y, rs := cyan, white, dim, red, green, yellow, reset
	if opts.NoColor {
		c, w, d, r, g, y, rs = "", "", "", "", "", "", ""
	}

	fmt.Fprintf(os.Stderr, `
%s     ___  _      ______                %s
%s    / _ \(_)____/ ____/_  __________   %s
%s   / // / / __/ /_/ / / / /_  /_  /   %s
%s  / ___/ / / / __/ / /_/ / / /_/ /_   %s
%s /_/  /_/_/ /_/   \__,_/ /___/___/   %s %sv%s%s
%s                                       %s
%s    Web Path Brute-Forcer              %s
%s    with Soft-404 Detection            %s
`,
		c, rs,
		c, rs,
		c, rs,
		c, rs,
		c, rs, d, version.Version, rs,
		c, rs,
		w, rs,
		d, rs,
	)

	smartLabel := fmt.Sprintf("%sON%s", g, rs)
	if !opts.SmartFilter {
		smartLabel = fmt.Sprintf("%sOFF%s", r, rs)
	}
	if opts.NoColor {
		smartLabel = "ON"
		if !opts.SmartFilter {
			smartLabel = "OFF"
		}
	}

	fmt.Fprintf(os.Stderr, "%s  ──────────────────────────────────────%s\n", d, rs)
	fmt.Fprintf(os.Stderr, "  %sTarget:%s       %s%s%s\n", d, rs, w, opts.URL, rs)
	fmt.Fprintf(os.Stderr, "  %sThreads:%s      %s%d%s\n", d, rs, y, opts.Threads, rs)
	fmt.Fprintf(os.Stderr, "  %sWordlist:%s     %s%d paths%s\n", d, rs, w, pathCount, rs)
	if len(opts.Extensions) > 0 {
		fmt.Fprintf(os.Stderr, "  %sExtensions:%s   %s%s%s\n", d, rs, w, strings.Join(opts.Extensions, ", "), rs)
	}
	fmt.Fprintf(os.Stderr, "  %sSoft-404 filter:%s %s\n", d, rs, smartLabel)
	fmt.Fprintf(os.Stderr, "%s  ──────────────────────────────────────%s\n\n", d, rs)
}
