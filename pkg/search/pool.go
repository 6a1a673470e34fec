package search

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Worker pool shared by every fan-out of a search. Holds 'workers - 1' tokens,
// the calling goroutine being the last worker. A task is moved to a new goroutine
// only if a token is free, otherwise it runs inline, so nested fan-outs never
// block on each other.
type pool struct {
	tokens *semaphore.Weighted
}

func newPool(workers int) *pool {
	if workers <= 1 {
		return &pool{}
	}
	return &pool{tokens: semaphore.NewWeighted(int64(workers - 1))}
}

// Panic raised on a worker goroutine, carried back to the forking goroutine
type panicError struct {
	value any
}

func (p panicError) Error() string {
	return fmt.Sprintf("search: panic in worker: %v", p.value)
}

// Single fan-out of sibling tasks, must be joined with 'wait'
type fanout struct {
	pool    *pool
	group   errgroup.Group
	spawned bool
	failure *panicError
}

func (p *pool) fork() *fanout {
	return &fanout{pool: p}
}

// Schedule the task, either on a new goroutine or on the current one.
// Returns true if the task has already completed on the current goroutine.
func (f *fanout) run(task func()) bool {
	if f.failure != nil {
		return false
	}

	if f.pool.tokens != nil && f.pool.tokens.TryAcquire(1) {
		f.spawned = true
		f.group.Go(func() (err error) {
			defer f.pool.tokens.Release(1)
			defer func() {
				if r := recover(); r != nil {
					err = panicError{value: r}
				}
			}()
			task()
			return nil
		})
		return false
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				f.failure = &panicError{value: r}
			}
		}()
		task()
	}()
	return f.failure == nil
}

// Wait for every spawned task, re-raising the first panic on this goroutine
func (f *fanout) wait() {
	var err error
	if f.spawned {
		err = f.group.Wait()
	}

	if f.failure != nil {
		panic(f.failure.value)
	}

	if err != nil {
		var pe panicError
		if errors.As(err, &pe) {
			panic(pe.value)
		}
		panic(err)
	}
}
