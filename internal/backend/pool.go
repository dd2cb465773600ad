package backend

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

type poolTask struct {
	fn     func(lo, hi int)
	lo, hi int
	done   chan error
}

// Pool is a fixed set of goroutines executing contiguous index ranges. It is
// safe for concurrent use; every For call waits only on its own ranges.
type Pool struct {
	size      int
	tasks     chan poolTask
	doneSlots chan chan error
	closed    atomic.Bool
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var (
	defaultPool     *Pool
	defaultPoolOnce sync.Once
)

var errPoolClosed = errors.New("worker pool closed")

// Default returns the process-wide pool sized by GOMAXPROCS.
func Default() *Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = NewPool(runtime.GOMAXPROCS(0))
	})
	return defaultPool
}

// NewPool starts size workers. A size below one is treated as one.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		size:      size,
		tasks:     make(chan poolTask, size*2),
		doneSlots: make(chan chan error, size),
	}
	// Each slot has room for one result per worker so workers never block
	// on a caller that is still queueing ranges.
	for i := 0; i < size; i++ {
		p.doneSlots <- make(chan error, size)
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for task := range p.tasks {
		task.done <- runRange(CPU, task.fn, task.lo, task.hi)
	}
}

func (p *Pool) Name() string {
	return CPU
}

// Workers returns the number of goroutines in the pool.
func (p *Pool) Workers() int {
	return p.size
}

// For splits [0, n) into at most Workers() contiguous ranges. A panic in any
// range is recovered and reported as an *ExecError with CodeExecution once
// all ranges have finished.
func (p *Pool) For(n int, fn func(lo, hi int)) error {
	if n <= 0 {
		return nil
	}
	if p.closed.Load() {
		return &ExecError{Backend: CPU, Code: CodeUnavailable, Err: errPoolClosed}
	}

	workers := min(p.size, n)
	if workers <= 1 {
		return runRange(CPU, fn, 0, n)
	}

	chunk := (n + workers - 1) / workers
	done := <-p.doneSlots

	active := 0
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		active++
		p.tasks <- poolTask{fn: fn, lo: lo, hi: hi, done: done}
	}

	var first error
	for i := 0; i < active; i++ {
		if err := <-done; err != nil && first == nil {
			first = err
		}
	}
	p.doneSlots <- done
	return first
}

// Close stops the workers and waits for them to exit. It must not race with
// For on the same pool.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.tasks)
		p.wg.Wait()
	})
}

// runRange converts a panic inside fn into an *ExecError.
func runRange(name string, fn func(lo, hi int), lo, hi int) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = executionError(name, rec)
		}
	}()
	fn(lo, hi)
	return nil
}
