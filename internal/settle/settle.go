// Package settle runs independent side effects concurrently and reports
// every outcome. A failing or panicking task never cancels its siblings.
package settle

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Task is a named unit of work.
type Task struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Outcome is the settled result of one Task.
type Outcome struct {
	Name    string
	Err     error
	Elapsed time.Duration
}

// PanicError wraps a value recovered from a task.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// All runs tasks concurrently and returns once every task has returned.
// Outcomes are in task order.
func All(ctx context.Context, tasks ...Task) []Outcome {
	out := make([]Outcome, len(tasks))

	// The errgroup is used only for fan-out; tasks always report nil to it
	// so one failure cannot short-circuit the rest.
	var g errgroup.Group
	for i, t := range tasks {
		g.Go(func() error {
			out[i] = run(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func run(ctx context.Context, t Task) (o Outcome) {
	o.Name = t.Name
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			o.Err = &PanicError{Value: p, Stack: debug.Stack()}
		}
		o.Elapsed = time.Since(start)
	}()

	o.Err = t.Fn(ctx)
	return o
}

// Failed filters outcomes down to the ones that returned an error.
func Failed(outcomes []Outcome) []Outcome {
	var res []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			res = append(res, o)
		}
	}
	return res
}

// Group runs batches of tasks in the background, detached from the
// caller's cancellation but bounded by a timeout, and lets shutdown wait
// for them.
type Group struct {
	timeout time.Duration
	report  func(context.Context, Outcome)

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewGroup builds a Group. report, if non-nil, is called once per outcome.
func NewGroup(timeout time.Duration, report func(context.Context, Outcome)) *Group {
	return &Group{timeout: timeout, report: report}
}

// Go starts tasks in the background. Values carried by ctx (trace spans,
// request ids) are kept; its cancellation is not. It returns false once
// the group is closed.
func (g *Group) Go(ctx context.Context, tasks ...Task) bool {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return false
	}
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()

		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()

		for _, o := range All(bctx, tasks...) {
			if g.report != nil {
				g.report(bctx, o)
			}
		}
	}()
	return true
}

// Wait closes the group and blocks until running batches finish or ctx is
// done.
func (g *Group) Wait(ctx context.Context) error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
