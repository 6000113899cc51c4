package scanner

import (
	"context"
	"sync"
	"time"
)

// WorkerConfig configures a worker pool run.
type WorkerConfig struct {
	Threads   int
	Throttler *Throttler
	Pauser    *Pauser // may be nil
	KeepBody  bool    // retain ScanResult.Body past classification for downstream consumers (match/exclude/crawl)
}

// RunWorkerPool fans out work items across workers and returns a channel
// of results. The channel is closed when all items have been processed.
func RunWorkerPool(
	ctx context.Context,
	req *Requester,
	items []WorkItem,
	cfg WorkerConfig,
) <-chan ScanResult {
	itemsCh := make(chan WorkItem, cfg.Threads*2)
	resultsCh := make(chan ScanResult, cfg.Threads*2)

	var wg sync.WaitGroup

	go func() {
		defer close(itemsCh)
		for _, item := range items {
			select {
			case itemsCh <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	for i := 0; i < cfg.Threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemsCh {
				if cfg.Pauser != nil {
					cfg.Pauser.Wait()
				}
				if cfg.Throttler != nil {
					if d := cfg.Throttler.Delay(); d > 0 {
						select {
						case <-time.After(d):
						case <-ctx.Done():
							return
						}
					}
				}

				resp, err := req.Do(ctx, item.Method, item.Path)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					if cfg.Throttler != nil {
						cfg.Throttler.RecordError()
					}
					resultsCh <- ScanResult{
						Method: item.Method,
						Path:   item.Path,
						Error:  err,
					}
					continue
				}

				if cfg.Throttler != nil {
					cfg.Throttler.RecordStatus(resp.StatusCode)
				}

				result := ScanResult{
					Method:        item.Method,
					Path:          item.Path,
					URL:           resp.URL,
					StatusCode:    resp.StatusCode,
					Reason:        resp.Reason,
					ContentLength: resp.ContentLength,
					Headers:       resp.Headers,
					BodyHash:      resp.BodyHash,
					WordCount:     resp.WordCount,
					LineCount:     resp.LineCount,
					RedirectURL:   resp.RedirectURL,
					Duration:      resp.Duration,
				}
				// The body is always read off the wire (needed for
				// hashing above); whether it survives into the result
				// that filters/crawl/classification see is the only
				// thing KeepBody controls.
				if cfg.KeepBody {
					result.Body = resp.Body
				}

				resultsCh <- result
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	return resultsCh
}
