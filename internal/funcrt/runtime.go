// Package funcrt implements executor.Runtime on top of function resolvers
// held by a registry.
package funcrt

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/hanpama/gqlhello/internal/executor"
	"github.com/hanpama/gqlhello/internal/registry"
	"github.com/hanpama/gqlhello/internal/resolver"
	"github.com/hanpama/gqlhello/internal/schema"
)

type Runtime struct {
	registry       *registry.Registry
	schema         *schema.Schema
	maxConcurrency int
}

type Option func(*Runtime)

// WithMaxConcurrency bounds the number of resolvers running at once within
// one depth. Zero or less means unbounded.
func WithMaxConcurrency(n int) Option { return func(r *Runtime) { r.maxConcurrency = n } }

// New returns a runtime bound to a sealed registry.
func New(reg *registry.Registry, opts ...Option) (*Runtime, error) {
	if err := reg.Seal(); err != nil {
		return nil, err
	}
	rt := &Runtime{registry: reg, schema: reg.Schema()}
	for _, opt := range opts {
		opt(rt)
	}
	return rt, nil
}

var _ executor.Runtime = (*Runtime)(nil)

func (rt *Runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	return rt.resolve(ctx, executor.AsyncResolveTask{ObjectType: objectType, Field: field, Source: source, Args: args})
}

// BatchResolveAsync starts every task of the depth concurrently and waits for
// all of them. Failures stay with their own task.
func (rt *Runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	if len(tasks) == 1 {
		v, err := rt.resolve(ctx, tasks[0])
		results[0] = executor.AsyncResolveResult{Value: v, Error: err}
		return results
	}

	var g errgroup.Group
	if rt.maxConcurrency > 0 {
		g.SetLimit(rt.maxConcurrency)
	}
	for i, task := range tasks {
		g.Go(func() error {
			v, err := rt.resolve(ctx, task)
			results[i] = executor.AsyncResolveResult{Value: v, Error: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// resolve finds the resolver of one field and awaits its value. The parent
// value is consulted first, then the type-level resolvers of the registry.
func (rt *Runtime) resolve(ctx context.Context, task executor.AsyncResolveTask) (value any, err error) {
	var res resolver.Resolver
	switch parent := task.Source.(type) {
	case resolver.Object:
		res = parent[task.Field]
	case map[string]any:
		if v, ok := parent[task.Field]; ok {
			return v, nil
		}
	}
	if res == nil {
		res = rt.registry.Resolvers(task.ObjectType)[task.Field]
	}
	if res == nil {
		return nil, &FieldResolutionError{
			Type:    task.ObjectType,
			Field:   task.Field,
			Code:    CodeResolverNotFound,
			Message: fmt.Sprintf("no resolver for field %s.%s", task.ObjectType, task.Field),
		}
	}

	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = panicError(task, &resolver.PanicError{Value: r, Stack: debug.Stack()})
		}
	}()

	args := task.Args
	if args == nil {
		args = map[string]any{}
	}
	v, err := res(resolver.WithParent(ctx, task.Source), args).Await(ctx)
	if err != nil {
		var pe *resolver.PanicError
		if errors.As(err, &pe) {
			return nil, panicError(task, pe)
		}
		return nil, &FieldResolutionError{Type: task.ObjectType, Field: task.Field, Code: CodeResolverFailed, Cause: err}
	}
	return v, nil
}

func panicError(task executor.AsyncResolveTask, pe *resolver.PanicError) error {
	return &FieldResolutionError{
		Type:    task.ObjectType,
		Field:   task.Field,
		Code:    CodeResolverPanic,
		Message: fmt.Sprintf("resolver for field %s.%s panicked: %v", task.ObjectType, task.Field, pe.Value),
		Cause:   pe,
	}
}

// SerializeLeafValue coerces a resolved value to its declared scalar or enum.
func (rt *Runtime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	var (
		out any
		err error
	)
	switch typeName {
	case "String":
		out, err = serializeString(value)
	case "Int":
		out, err = serializeInt(value)
	case "Float":
		out, err = serializeFloat(value)
	case "Boolean":
		out, err = serializeBoolean(value)
	case "ID":
		out, err = serializeID(value)
	default:
		t := rt.schema.Types[typeName]
		if t != nil && t.Kind == schema.TypeKindEnum {
			out, err = serializeEnum(t, value)
		} else {
			out = value
		}
	}
	if err != nil {
		return nil, &FieldResolutionError{Type: typeName, Code: CodeInvalidLeaf, Message: err.Error()}
	}
	return out, nil
}
