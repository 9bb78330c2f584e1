// Package parallel provides the work-stealing worker pool used to
// rasterize pending glyphs during a draw-cache population pass.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed pool of goroutines with work stealing.
//
// Tasks are seeded round-robin into per-worker queues; overflow goes to a
// shared queue. A worker drains its own queue first, then the shared queue,
// then steals from peers. This balances load when some tasks are slower
// than others (large glyphs next to tiny ones).
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers int

	// local holds the per-worker queues. Worker i primarily pulls from
	// local[i] but may steal from any other.
	local []chan func()

	// shared receives tasks that do not fit a local queue.
	shared chan func()

	// done signals workers to stop.
	done chan struct{}

	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool
}

// NewPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// Workers start immediately and wait for work.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Local queues stay small so excess work lands in the shared queue,
	// where any free worker can pick it up.
	const localSize = 4

	p := &Pool{
		workers: workers,
		local:   make([]chan func(), workers),
		shared:  make(chan func(), workers*8),
		done:    make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.local[i] = make(chan func(), localSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}

	return p
}

// worker is the main loop of each worker goroutine.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	mine := p.local[id]

	for {
		select {
		case <-p.done:
			p.drain(mine)
			return

		case task := <-mine:
			if task != nil {
				task()
			}

		case task := <-p.shared:
			if task != nil {
				task()
			}

		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			// Nothing anywhere, block until work or shutdown.
			select {
			case <-p.done:
				p.drain(mine)
				return
			case task := <-mine:
				if task != nil {
					task()
				}
			case task := <-p.shared:
				if task != nil {
					task()
				}
			}
		}
	}
}

// drain runs all remaining tasks in a queue.
func (p *Pool) drain(queue chan func()) {
	for {
		select {
		case task := <-queue:
			if task != nil {
				task()
			}
		default:
			return
		}
	}
}

// steal takes a task from another worker's local queue.
// Returns nil if every peer queue is empty.
func (p *Pool) steal(myID int) func() {
	for i := 0; i < p.workers; i++ {
		if i == myID {
			continue
		}
		select {
		case task := <-p.local[i]:
			return task
		default:
		}
	}
	return nil
}

// ExecuteAll distributes tasks across the workers and blocks until every
// task has run. If the pool is closed, remaining tasks are skipped.
func (p *Pool) ExecuteAll(tasks []func()) {
	if len(tasks) == 0 || !p.running.Load() {
		return
	}

	var completion sync.WaitGroup
	completion.Add(len(tasks))

	for i, fn := range tasks {
		task := fn
		wrapped := func() {
			defer completion.Done()
			task()
		}

		// Seed the owning worker's queue; fall back to the shared queue
		// when it is full so seeding never blocks behind a slow worker.
		select {
		case p.local[i%p.workers] <- wrapped:
		default:
			select {
			case p.shared <- wrapped:
			case <-p.done:
				completion.Done()
			}
		}
	}

	completion.Wait()
}

// Close stops accepting work, waits for queued tasks to finish, and stops
// all workers. Close is safe to call multiple times.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool is still accepting work.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}
