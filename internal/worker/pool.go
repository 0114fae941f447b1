package worker

import (
	"context"
	"sync"
)

// Task produces the value stored at one slot of the pool's output
type Task[T any] func(ctx context.Context) T

type slot[T any] struct {
	index int
	run   Task[T]
}

// Pool runs a fixed number of indexed tasks on a bounded set of goroutines.
// Each task writes only its own slot, so output order matches submission
// indices no matter which worker finishes first.
type Pool[T any] struct {
	workers int
	queue   chan slot[T]
	out     []T
	done    []bool

	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewPool creates a pool with room for size results. Cancelling parent stops
// workers from picking up further tasks.
func NewPool[T any](parent context.Context, workers, size int) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}
	if size < 0 {
		size = 0
	}
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool[T]{
		workers: workers,
		queue:   make(chan slot[T], workers*2),
		out:     make([]T, size),
		done:    make([]bool, size),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers
func (p *Pool[T]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
}

func (p *Pool[T]) work() {
	defer p.wg.Done()

	for {
		// Cancellation wins over queued tasks
		if p.ctx.Err() != nil {
			return
		}
		select {
		case <-p.ctx.Done():
			return
		case s, ok := <-p.queue:
			if !ok {
				return
			}
			p.out[s.index] = s.run(p.ctx)
			p.done[s.index] = true
		}
	}
}

// Submit queues task for slot index. It reports false when the index is out
// of range or the pool was cancelled; the task then never runs.
func (p *Pool[T]) Submit(index int, task Task[T]) bool {
	if index < 0 || index >= len(p.out) || p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.queue <- slot[T]{index: index, run: task}:
		return true
	}
}

// Wait closes the queue and blocks until running tasks return. done[i]
// reports whether slot i was filled by its task.
func (p *Pool[T]) Wait() (out []T, done []bool) {
	p.closeQueue()
	p.wg.Wait()
	p.cancel()
	return p.out, p.done
}

func (p *Pool[T]) closeQueue() {
	p.closeOnce.Do(func() {
		close(p.queue)
	})
}
