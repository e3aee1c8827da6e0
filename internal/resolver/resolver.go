// Package resolver defines the uniform resolver signature used by the
// registry and the function runtime.
//
// Every resolver returns a *Future, so synchronous values, computations and
// goroutine-backed work share one shape. An object-typed field resolves to an
// Object whose entries are the resolvers of the next level.
package resolver

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Resolver produces the value of one field. args holds the coerced field
// arguments and is empty for fields without arguments.
type Resolver func(ctx context.Context, args map[string]any) *Future

// Object maps child field names to their resolvers.
type Object map[string]Resolver

// Future is a handle on a value that is possibly still being computed.
type Future struct {
	done  chan struct{}
	value any
	err   error
}

func newFuture() *Future { return &Future{done: make(chan struct{})} }

func (f *Future) complete(v any, err error) {
	f.value, f.err = v, err
	close(f.done)
}

// Ready returns an already-completed future.
func Ready(v any, err error) *Future {
	f := newFuture()
	f.complete(v, err)
	return f
}

// Done is closed once the value is available.
func (f *Future) Done() <-chan struct{} { return f.done }

// Await blocks until the value is ready or ctx is done.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Value returns a resolver that always yields v.
func Value(v any) Resolver {
	return func(context.Context, map[string]any) *Future { return Ready(v, nil) }
}

// Fail returns a resolver that always fails with err.
func Fail(err error) Resolver {
	return func(context.Context, map[string]any) *Future { return Ready(nil, err) }
}

// Func computes the value on the calling goroutine.
func Func(fn func(ctx context.Context, args map[string]any) (any, error)) Resolver {
	return func(ctx context.Context, args map[string]any) *Future {
		return Ready(fn(ctx, args))
	}
}

// Async runs fn on its own goroutine. A panic in fn completes the future
// with a *PanicError.
func Async(fn func(ctx context.Context, args map[string]any) (any, error)) Resolver {
	return func(ctx context.Context, args map[string]any) *Future {
		f := newFuture()
		go func() {
			var (
				v   any
				err error
			)
			defer func() {
				if r := recover(); r != nil {
					v, err = nil, &PanicError{Value: r, Stack: debug.Stack()}
				}
				f.complete(v, err)
			}()
			v, err = fn(ctx, args)
		}()
		return f
	}
}

type parentKey struct{}

// WithParent returns a context carrying the parent value of the field being
// resolved.
func WithParent(ctx context.Context, parent any) context.Context {
	return context.WithValue(ctx, parentKey{}, parent)
}

// Parent returns the parent value of the field being resolved. Type-level
// resolvers use it to reach the object they belong to.
func Parent(ctx context.Context) any {
	return ctx.Value(parentKey{})
}

// PanicError carries a value recovered from a panicking resolver.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("resolver panic: %v", e.Value) }
