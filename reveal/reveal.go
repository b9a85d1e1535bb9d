// Package reveal writes a target string out a few characters at a time to
// simulate live generation.
package reveal

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultInterval = 15 * time.Millisecond
	DefaultStep     = 1
)

// Options controls reveal pacing.
type Options struct {
	Interval time.Duration // time between writes
	Step     int           // characters (runes) added per write
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Step <= 0 {
		o.Step = DefaultStep
	}
	return o
}

// WriteFunc receives each successive prefix of the target. Returning an error
// stops the reveal.
type WriteFunc func(prefix string) error

// Animator starts reveal tasks with fixed pacing.
type Animator struct {
	opts Options
}

// NewAnimator creates an animator. Zero option fields take defaults.
func NewAnimator(opts Options) *Animator {
	return &Animator{opts: opts.withDefaults()}
}

// Options returns the effective pacing.
func (a *Animator) Options() Options { return a.opts }

// Start begins revealing target through write and returns immediately. The
// task ends on its own once the full target has been written, when write
// fails, when ctx is done, or when it is stopped.
func (a *Animator) Start(ctx context.Context, target string, write WriteFunc) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		target: target,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go t.run(ctx, a.opts, write)
	return t
}

// Task is one running reveal.
type Task struct {
	target string
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	written   int // runes written so far
	completed bool
	err       error
}

func (t *Task) run(ctx context.Context, opts Options, write WriteFunc) {
	defer close(t.done)
	defer t.cancel()

	runes := []rune(t.target)
	if len(runes) == 0 {
		t.finish(true, nil)
		return
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	cursor := 0
	for {
		select {
		case <-ctx.Done():
			t.finish(false, nil)
			return
		case <-ticker.C:
		}

		// A cancel racing with the tick must win.
		if ctx.Err() != nil {
			t.finish(false, nil)
			return
		}

		cursor = min(cursor+opts.Step, len(runes))
		if err := write(string(runes[:cursor])); err != nil {
			t.finish(false, err)
			return
		}

		t.mu.Lock()
		t.written = cursor
		t.mu.Unlock()

		if cursor == len(runes) {
			t.finish(true, nil)
			return
		}
	}
}

func (t *Task) finish(completed bool, err error) {
	t.mu.Lock()
	t.completed = completed
	t.err = err
	t.mu.Unlock()
}

// Stop cancels the task and waits for its goroutine to exit. Safe to call
// more than once.
func (t *Task) Stop() {
	t.cancel()
	<-t.done
}

// Done is closed when the task has stopped for any reason.
func (t *Task) Done() <-chan struct{} { return t.done }

// Target returns the full text being revealed.
func (t *Task) Target() string { return t.target }

// Completed reports whether the full target was written.
func (t *Task) Completed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

// Written returns how many runes have been written so far.
func (t *Task) Written() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.written
}

// Err returns the write error that stopped the task, if any.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}
