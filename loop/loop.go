// Package loop runs callbacks one at a time on a single goroutine.
package loop

import (
	"context"
	"sync"
)

// Loop is a FIFO callback queue drained by Run.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	done    chan struct{}
	quit    sync.Once
	stopped bool
}

// New returns a loop that is not running yet. Callbacks posted before Run
// are kept until Run drains them.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post enqueues fn. It is safe from any goroutine and never blocks.
// Posting after Quit is a no-op.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}

	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Quit stops the loop. Callbacks still queued are dropped.
func (l *Loop) Quit() {
	l.quit.Do(func() {
		l.mu.Lock()
		l.stopped = true
		l.queue = nil
		l.mu.Unlock()
		close(l.done)
	})
}

// Done is closed once Quit has been called.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Stopped reports whether Quit has been called.
func (l *Loop) Stopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}

// Run executes posted callbacks in order until Quit is called or ctx ends.
// It returns ctx.Err() when the context stopped the loop.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			fn()
		}

		select {
		case <-l.done:
			return nil
		case <-ctx.Done():
			l.Quit()
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped || len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}
