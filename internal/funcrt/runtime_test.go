package funcrt

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlhello/internal/executor"
	"github.com/hanpama/gqlhello/internal/registry"
	"github.com/hanpama/gqlhello/internal/resolver"
	"github.com/hanpama/gqlhello/internal/schema"
)

func newRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()
	reg, err := registry.FromSDL("test.graphql", `
enum Color { RED GREEN }
type Query { hello: String num: Int color: Color info: Info missing: String }
type Info { test: String test2: String }
`)
	require.NoError(t, err)
	require.NoError(t, reg.Bind("Info", resolver.Object{
		"test2": resolver.Func(func(ctx context.Context, args map[string]any) (any, error) {
			return resolver.Parent(ctx), nil
		}),
	}))
	rt, err := New(reg, opts...)
	require.NoError(t, err)
	return rt
}

func TestResolve_ParentObjectFirst(t *testing.T) {
	rt := newRuntime(t)
	root := resolver.Object{"hello": resolver.Value("Hello world!")}

	v, err := rt.ResolveSync(context.Background(), "Query", "hello", root, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello world!", v)
}

func TestResolve_TypeLevelFallbackSeesParent(t *testing.T) {
	rt := newRuntime(t)
	parent := resolver.Object{"test": resolver.Value("test")}

	v, err := rt.ResolveSync(context.Background(), "Info", "test2", parent, nil)
	require.NoError(t, err)
	require.IsType(t, resolver.Object{}, v)
	assert.Contains(t, v.(resolver.Object), "test")
}

func TestResolve_PlainMapProperty(t *testing.T) {
	rt := newRuntime(t)
	v, err := rt.ResolveSync(context.Background(), "Info", "test", map[string]any{"test": "plain"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "plain", v)
}

func TestResolve_Missing(t *testing.T) {
	rt := newRuntime(t)
	_, err := rt.ResolveSync(context.Background(), "Query", "missing", resolver.Object{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResolverNotFound)

	var ext executor.Extender
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, map[string]any{"code": CodeResolverNotFound}, ext.Extensions())
}

func TestResolve_FailureAndPanic(t *testing.T) {
	rt := newRuntime(t)
	boom := errors.New("boom")
	root := resolver.Object{
		"hello": resolver.Fail(boom),
		"num": resolver.Func(func(ctx context.Context, args map[string]any) (any, error) {
			panic("sync panic")
		}),
		"info": resolver.Async(func(ctx context.Context, args map[string]any) (any, error) {
			panic("async panic")
		}),
	}

	_, err := rt.ResolveSync(context.Background(), "Query", "hello", root, nil)
	assert.ErrorIs(t, err, ErrResolverFailed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "boom", err.Error())

	_, err = rt.ResolveSync(context.Background(), "Query", "num", root, nil)
	assert.ErrorIs(t, err, ErrResolverPanic)
	assert.Contains(t, err.Error(), "sync panic")

	_, err = rt.ResolveSync(context.Background(), "Query", "info", root, nil)
	assert.ErrorIs(t, err, ErrResolverPanic)
	assert.Contains(t, err.Error(), "async panic")
}

func TestBatchResolveAsync_ConcurrentAndOrdered(t *testing.T) {
	rt := newRuntime(t)
	var running, peak atomic.Int32
	slow := func(v string) resolver.Resolver {
		return resolver.Func(func(ctx context.Context, args map[string]any) (any, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			running.Add(-1)
			return v, nil
		})
	}
	root := resolver.Object{"hello": slow("a"), "num": slow("b"), "color": slow("c")}
	tasks := []executor.AsyncResolveTask{
		{ObjectType: "Query", Field: "hello", Source: root},
		{ObjectType: "Query", Field: "missing", Source: root},
		{ObjectType: "Query", Field: "num", Source: root},
		{ObjectType: "Query", Field: "color", Source: root},
	}

	results := rt.BatchResolveAsync(context.Background(), tasks)

	require.Len(t, results, 4)
	assert.Equal(t, "a", results[0].Value)
	assert.ErrorIs(t, results[1].Error, ErrResolverNotFound)
	assert.Equal(t, "b", results[2].Value)
	assert.Equal(t, "c", results[3].Value)
	assert.Greater(t, peak.Load(), int32(1), "siblings should run concurrently")
}

func TestBatchResolveAsync_MaxConcurrency(t *testing.T) {
	rt := newRuntime(t, WithMaxConcurrency(1))
	var running, peak atomic.Int32
	r := resolver.Func(func(ctx context.Context, args map[string]any) (any, error) {
		if n := running.Add(1); n > peak.Load() {
			peak.Store(n)
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return "x", nil
	})
	root := resolver.Object{"hello": r}
	tasks := make([]executor.AsyncResolveTask, 4)
	for i := range tasks {
		tasks[i] = executor.AsyncResolveTask{ObjectType: "Query", Field: "hello", Source: root}
	}

	results := rt.BatchResolveAsync(context.Background(), tasks)
	require.Len(t, results, 4)
	assert.Equal(t, int32(1), peak.Load())
}

func TestSerializeLeafValue(t *testing.T) {
	rt := newRuntime(t)
	ctx := context.Background()

	cases := []struct {
		typ  string
		in   any
		want any
	}{
		{"String", "Hello world!", "Hello world!"},
		{"String", true, "true"},
		{"String", 3, "3"},
		{"Int", 3, int32(3)},
		{"Int", int64(7), int32(7)},
		{"Int", float64(2), int32(2)},
		{"Int", false, int32(0)},
		{"Float", 3, float64(3)},
		{"Float", float32(0.5), float64(0.5)},
		{"Boolean", false, false},
		{"Boolean", 1, true},
		{"ID", 42, "42"},
		{"ID", "abc", "abc"},
		{"Color", "RED", "RED"},
	}
	for _, tc := range cases {
		got, err := rt.SerializeLeafValue(ctx, tc.typ, tc.in)
		require.NoError(t, err, "%s(%v)", tc.typ, tc.in)
		assert.Equal(t, tc.want, got, "%s(%v)", tc.typ, tc.in)
	}

	bad := []struct {
		typ string
		in  any
	}{
		{"Int", 1.5},
		{"Int", int64(1) << 40},
		{"Int", "three"},
		{"Float", "x"},
		{"Boolean", "yes"},
		{"ID", 1.5},
		{"String", struct{}{}},
		{"Color", "BLUE"},
	}
	for _, tc := range bad {
		_, err := rt.SerializeLeafValue(ctx, tc.typ, tc.in)
		require.Error(t, err, "%s(%v)", tc.typ, tc.in)
		assert.ErrorIs(t, err, ErrInvalidLeaf)
	}
}

func TestNew_SealFailure(t *testing.T) {
	reg := registry.New()
	_, err := New(reg)
	assert.ErrorIs(t, err, schema.ErrNoQueryType)
}
