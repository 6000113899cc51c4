package classify

import "context"

// WorkerPool bounds how many forced-404 probes the classifier may have in
// flight at once. Without one, a burst of concurrent IsNotFound calls
// against cold paths can each fire its own probe simultaneously, adding
// a second, uncapped wave of requests on top of the scan's own thread
// count. A nil pool (the zero value of Classifier before SetWorkerPool is
// called) means unbounded: every probe runs immediately.
type WorkerPool interface {
	// Acquire blocks until a slot is free or ctx is done.
	Acquire(ctx context.Context) error
	// Release returns a slot acquired via Acquire.
	Release()
}

// semaphorePool is a counting semaphore over a buffered channel, sized
// for probe concurrency rather than request concurrency.
type semaphorePool struct {
	slots chan struct{}
}

// NewWorkerPool returns a WorkerPool that admits at most size concurrent
// probes. size <= 0 is treated as 1.
func NewWorkerPool(size int) WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &semaphorePool{slots: make(chan struct{}, size)}
}

func (p *semaphorePool) Acquire(ctx context.Context) error {
	select {
	case p.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *semaphorePool) Release() {
	<-p.slots
}
