package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// ErrLoopClosed is returned by futures of coroutines submitted after the loop
// was closed.
var ErrLoopClosed = errors.New("loop is closed")

// Coroutine is a unit of work run by a Loop.
type Coroutine func(ctx context.Context) error

// Loop runs coroutines on goroutines it owns, separate from the goroutines
// that serve HTTP requests, and hands their outcome back through a Future.
// Closing the loop waits for every running coroutine to finish, which lets
// the server drain work before the process exits.
type Loop struct {
	logger *slog.Logger
	wg     sync.WaitGroup
	mx     sync.Mutex
	closed bool
}

// NewLoop returns a new Loop.
func NewLoop(logger *slog.Logger) *Loop {
	return &Loop{logger: logger}
}

// Go schedules co to run on the loop with ctx, and returns a Future resolved
// with its result. A panic in co is recovered and resolves the Future with an
// error.
func (l *Loop) Go(ctx context.Context, co Coroutine) *Future {
	f := newFuture()

	l.mx.Lock()
	if l.closed {
		l.mx.Unlock()
		f.resolve(ErrLoopClosed)
		return f
	}
	l.wg.Add(1)
	l.mx.Unlock()

	go func() {
		defer l.wg.Done()
		f.resolve(l.run(ctx, co))
	}()

	return f
}

func (l *Loop) run(ctx context.Context, co Coroutine) (err error) {
	defer func() {
		if p := recover(); p != nil {
			l.logger.Error("coroutine panicked",
				"panic", fmt.Sprint(p), "stack", string(debug.Stack()))
			err = fmt.Errorf("coroutine panicked: %v", p)
		}
	}()

	return co(ctx)
}

// Close stops the loop from accepting new coroutines, and waits for the
// running ones to finish or for ctx to be done, whichever happens first.
func (l *Loop) Close(ctx context.Context) error {
	l.mx.Lock()
	l.closed = true
	l.mx.Unlock()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed waiting for coroutines: %w", ctx.Err())
	}
}

// Future is the eventual result of a Coroutine.
type Future struct {
	done chan struct{}
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(err error) {
	f.err = err
	close(f.done)
}

// Done returns a channel that is closed once the coroutine has finished.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the coroutine has finished, and returns its error.
func (f *Future) Wait() error {
	<-f.done
	return f.err
}
