// Package worker runs tile loads on a fixed number of goroutines.
package worker

import (
	"context"
	"sync"
	"time"
)

// DefaultTimeout bounds a single task.
const DefaultTimeout = 10 * time.Second

type Pool struct {
	tasks   chan Task
	quit    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	timeout time.Duration
}

type Task struct {
	Ctx  context.Context
	Work func(ctx context.Context) error
}

// NewPool starts maxWorkers goroutines. queue is the number of tasks that
// may wait for a free worker.
func NewPool(maxWorkers, queue int) *Pool {
	p := &Pool{
		tasks:   make(chan Task, max(queue, 1)),
		quit:    make(chan struct{}),
		timeout: DefaultTimeout,
	}
	for i := 0; i < max(maxWorkers, 1); i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case task := <-p.tasks:
			p.run(task)
		}
	}
}

func (p *Pool) run(task Task) {
	parent := task.Ctx
	if parent == nil {
		parent = context.Background()
	}
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, p.timeout)
	defer cancel()
	_ = task.Work(ctx)
}

// Submit queues task without blocking. It reports false when the queue is
// full or the pool is shut down.
func (p *Pool) Submit(task Task) bool {
	select {
	case <-p.quit:
		return false
	default:
	}
	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

// Shutdown stops the workers and waits for running tasks to return.
// Queued tasks are dropped. It is safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}
