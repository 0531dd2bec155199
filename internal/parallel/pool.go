// Package parallel runs kernel work-groups on a pool of goroutines and
// collects their variable-length output through atomic append buffers.
package parallel

import (
	"runtime"
	"sync"
)

// group is one work-group of a dispatch.
type group struct {
	x, y int
	fn   func(gx, gy int)
	done *sync.WaitGroup
}

// WorkerPool is a fixed set of goroutines that execute work-groups.
//
// Workers pull groups from one shared queue, so a worker that finishes early
// (e.g., on a group that only sees sentinel samples) simply takes the next.
// Dispatch may be called from several goroutines at once.
type WorkerPool struct {
	workers int
	queue   chan group
	wg      sync.WaitGroup

	mu     sync.RWMutex // guards closed against sends on a closed queue
	closed bool
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &WorkerPool{
		workers: workers,
		queue:   make(chan group, workers*4),
	}
	p.wg.Add(workers)
	for range workers {
		go p.work()
	}
	return p
}

func (p *WorkerPool) work() {
	defer p.wg.Done()
	for g := range p.queue {
		g.fn(g.x, g.y)
		g.done.Done()
	}
}

// Dispatch runs fn once per work-group of a groupsX × groupsY grid and blocks
// until every group has returned. Like a compute dispatch, groups run in no
// particular order. After Close the groups run on the calling goroutine.
func (p *WorkerPool) Dispatch(groupsX, groupsY int, fn func(gx, gy int)) {
	if groupsX <= 0 || groupsY <= 0 {
		return
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		for gy := range groupsY {
			for gx := range groupsX {
				fn(gx, gy)
			}
		}
		return
	}

	var done sync.WaitGroup
	done.Add(groupsX * groupsY)
	for gy := range groupsY {
		for gx := range groupsX {
			p.queue <- group{x: gx, y: gy, fn: fn, done: &done}
		}
	}
	p.mu.RUnlock()
	done.Wait()
}

// Close waits for queued groups to finish and stops the workers.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether Close has not been called yet.
func (p *WorkerPool) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.closed
}
