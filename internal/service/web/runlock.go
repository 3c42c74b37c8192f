package web

import "golang.org/x/sync/semaphore"

// RunLock is a single-slot lock guarding the one-run-at-a-time convention.
// Both trigger paths (synchronous and streaming) acquire it, so concurrent
// triggers get a structured rejection instead of racing on the shared
// output and cache directories.
type RunLock struct {
	sem *semaphore.Weighted
}

func NewRunLock() *RunLock {
	return &RunLock{sem: semaphore.NewWeighted(1)}
}

// TryAcquire claims the run slot without blocking.
func (l *RunLock) TryAcquire() bool {
	return l.sem.TryAcquire(1)
}

// Release frees the run slot.
func (l *RunLock) Release() {
	l.sem.Release(1)
}
