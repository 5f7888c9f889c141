package bridge

import (
	"context"
	"fmt"
)

// Promise is the asynchronous result of a bridge operation. The operation starts
// as soon as the Promise is created and settles exactly once.
type Promise[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newPromise[T any](fn func() (T, error)) *Promise[T] {
	p := &Promise[T]{done: make(chan struct{})}

	go func() {
		defer close(p.done)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				p.value = zero
				p.err = &Error{Code: CodeSMSError, Message: fmt.Sprintf("unexpected failure: %v", r)}
			}
		}()

		p.value, p.err = fn()
	}()

	return p
}

// Done is closed once the promise has settled.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Await blocks until the promise settles or ctx is done. Giving up on ctx does not
// stop the underlying operation.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Resolved returns an already settled, successful Promise.
func Resolved[T any](value T) *Promise[T] {
	p := &Promise[T]{done: make(chan struct{}), value: value}
	close(p.done)
	return p
}

// Rejected returns an already settled, failed Promise.
func Rejected[T any](err error) *Promise[T] {
	p := &Promise[T]{done: make(chan struct{}), err: err}
	close(p.done)
	return p
}
