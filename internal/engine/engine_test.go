package engine

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlhello/internal/eventbus"
	"github.com/hanpama/gqlhello/internal/events"
	"github.com/hanpama/gqlhello/internal/executor"
	"github.com/hanpama/gqlhello/internal/funcrt"
	"github.com/hanpama/gqlhello/internal/hello"
	"github.com/hanpama/gqlhello/internal/registry"
	"github.com/hanpama/gqlhello/internal/resolver"
)

func serverEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	reg, err := hello.ServerRegistry()
	require.NoError(t, err)
	e, err := New(reg, hello.ServerRoot(), opts...)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func resultJSON(t *testing.T, res *executor.ExecutionResult) string {
	t.Helper()
	b, err := json.Marshal(res)
	require.NoError(t, err)
	return string(b)
}

func TestExecute_Hello(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		reg, err := hello.MinimalRegistry()
		require.NoError(t, err)
		res, err := Execute(ctx, reg, "{ hello }", hello.MinimalRoot())
		require.NoError(t, err)
		assert.Equal(t, `{"data":{"hello":"Hello world!"}}`, resultJSON(t, res))
	}
}

func TestEngine_ServerSchema(t *testing.T) {
	e := serverEngine(t)
	tests := []struct {
		query string
		want  string
	}{
		{`{ hello }`, `{"data":{"hello":"Hello world!"}}`},
		{`{ num bool }`, `{"data":{"num":3,"bool":false}}`},
		{`{ info { test test2 } }`, `{"data":{"info":{"test":"test","test2":"test2"}}}`},
		{`{ info { test } }`, `{"data":{"info":{"test":"test"}}}`},
		{`{ a: hello b: hello }`, `{"data":{"a":"Hello world!","b":"Hello world!"}}`},
		{`query Q { __typename info { __typename } }`, `{"data":{"__typename":"Query","info":{"__typename":"Info"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, err := e.Execute(context.Background(), Request{Query: tt.query})
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, resultJSON(t, res))
		})
	}
}

func TestEngine_UnknownField(t *testing.T) {
	e := serverEngine(t)
	res, err := e.Execute(context.Background(), Request{Query: "{ hello nope }"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"hello": "Hello world!"}, res.Data)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, executor.Path{"nope"}, res.Errors[0].Path)
	assert.Contains(t, res.Errors[0].Message, "nope")
}

func TestEngine_ParseError(t *testing.T) {
	e := serverEngine(t)
	res, err := e.Execute(context.Background(), Request{Query: "{ hello "})
	assert.Nil(t, res)

	var pe *QueryParseError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, ErrInvalidQuery)
	errs := RequestErrors(err)
	require.Len(t, errs, 1)
	require.NotEmpty(t, errs[0].Locations)
	assert.Equal(t, 1, errs[0].Locations[0].Line)
}

func TestEngine_EmptyDocument(t *testing.T) {
	e := serverEngine(t)
	for _, q := range []string{"", "   ", "# c", "\n# only a comment\n"} {
		t.Run(q, func(t *testing.T) {
			res, err := e.Execute(context.Background(), Request{Query: q})
			assert.Nil(t, res)

			var pe *QueryParseError
			require.ErrorAs(t, err, &pe)
			assert.ErrorIs(t, err, ErrInvalidQuery)
			errs := RequestErrors(err)
			require.Len(t, errs, 1)
			assert.Equal(t, "Syntax Error: Unexpected <EOF>", errs[0].Message)
		})
	}
}

func TestEngine_ValidationError(t *testing.T) {
	e := serverEngine(t)
	tests := []string{
		`{ info }`,
		`{ hello { x } }`,
		`query($v: Int) { hello }`,
		`{ hello(arg: 1) }`,
	}
	for _, q := range tests {
		t.Run(q, func(t *testing.T) {
			res, err := e.Execute(context.Background(), Request{Query: q})
			assert.Nil(t, res)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.ErrorIs(t, err, ErrInvalidQuery)
			assert.NotEmpty(t, RequestErrors(err))
		})
	}
}

func TestEngine_MissingResolver(t *testing.T) {
	reg, err := registry.FromSDL("s.graphql", "type Query { a: String b: String }")
	require.NoError(t, err)
	e, err := New(reg, resolver.Object{"a": resolver.Value("x")})
	require.NoError(t, err)
	defer e.Close()

	res, err := e.Execute(context.Background(), Request{Query: "{ a b }"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "x", "b": nil}, res.Data)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, executor.Path{"b"}, res.Errors[0].Path)
	assert.Equal(t, funcrt.CodeResolverNotFound, res.Errors[0].Extensions["code"])
}

func TestEngine_TypeLevelResolvers(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register("Info", registry.Field{Name: "test", Type: "String", Resolve: resolver.Value("bound")}))
	require.NoError(t, reg.Register("Query",
		registry.Field{Name: "info", Type: "Info", Resolve: resolver.Value(map[string]any{})},
		registry.Field{Name: "greeting", Type: "String!", Resolve: resolver.Func(func(_ context.Context, args map[string]any) (any, error) {
			return "hi", nil
		})},
	))
	res, err := Execute(context.Background(), reg, "{ greeting info { test } }", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"greeting":"hi","info":{"test":"bound"}}}`, resultJSON(t, res))
}

func TestEngine_Variables(t *testing.T) {
	reg, err := registry.FromSDL("s.graphql", `type Query { echo(msg: String = "default"): String }`)
	require.NoError(t, err)
	echo := resolver.Func(func(_ context.Context, args map[string]any) (any, error) { return args["msg"], nil })
	e, err := New(reg, resolver.Object{"echo": echo})
	require.NoError(t, err)
	defer e.Close()

	res, err := e.Execute(context.Background(), Request{
		Query:         `query A($m: String) { echo(msg: $m) } query B { echo }`,
		OperationName: "A",
		Variables:     map[string]any{"m": "hey"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"echo": "hey"}, res.Data)

	res, err = e.Execute(context.Background(), Request{Query: `query A { echo } query B { echo }`, OperationName: "B"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"echo": "default"}, res.Data)
}

func TestEngine_ConcurrentSiblings(t *testing.T) {
	const n = 4
	var wg sync.WaitGroup
	wg.Add(n)
	wait := func(v string) resolver.Resolver {
		return resolver.Async(func(ctx context.Context, _ map[string]any) (any, error) {
			wg.Done()
			wg.Wait()
			return v, nil
		})
	}
	reg, err := registry.FromSDL("s.graphql", "type Query { a: String b: String c: String d: String }")
	require.NoError(t, err)
	e, err := New(reg, resolver.Object{"a": wait("a"), "b": wait("b"), "c": wait("c"), "d": wait("d")})
	require.NoError(t, err)
	defer e.Close()

	res, err := e.Execute(context.Background(), Request{Query: "{ a b c d }"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "a", "b": "b", "c": "c", "d": "d"}, res.Data)
}

func TestEngine_ResolverErrorIsolated(t *testing.T) {
	reg, err := hello.ServerRegistry()
	require.NoError(t, err)
	root := hello.ServerRoot()
	root["num"] = resolver.Fail(errors.New("no numbers today"))
	e, err := New(reg, root)
	require.NoError(t, err)
	defer e.Close()

	res, err := e.Execute(context.Background(), Request{Query: "{ hello num }"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"hello": "Hello world!", "num": nil}, res.Data)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "no numbers today", res.Errors[0].Message)
}

func TestEngine_QueryCache(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })
	var cached, total atomic.Int32
	eventbus.Subscribe(func(_ context.Context, e events.GraphQLFinish) {
		total.Add(1)
		if e.Cached {
			cached.Add(1)
		}
	})

	e := serverEngine(t)
	_, err := e.Execute(context.Background(), Request{Query: "{ hello }"})
	require.NoError(t, err)
	e.cache.Wait()
	_, err = e.Execute(context.Background(), Request{Query: "{ hello }"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), total.Load())
	assert.Equal(t, int32(1), cached.Load())
}

func TestEngine_QueryCacheDisabled(t *testing.T) {
	e := serverEngine(t, WithQueryCache(0))
	assert.Nil(t, e.cache)
	res, err := e.Execute(context.Background(), Request{Query: "{ hello }"})
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
}

func TestEngine_Introspection(t *testing.T) {
	e := serverEngine(t)
	res, err := e.Execute(context.Background(), Request{Query: `{ __type(name: "Info") { name kind fields { name type { name } } } }`})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"__type":{"name":"Info","kind":"OBJECT","fields":[
		{"name":"test","type":{"name":"String"}},
		{"name":"test2","type":{"name":"String"}}]}}}`, resultJSON(t, res))

	off := serverEngine(t, WithIntrospection(false))
	res, err = off.Execute(context.Background(), Request{Query: `{ __schema { queryType { name } } }`})
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Empty(t, res.Data)
}

func TestNew_SealFailure(t *testing.T) {
	_, err := New(registry.New(), nil)
	assert.True(t, registry.IsSchemaError(err))
}

func TestEngine_OperationEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })
	var got []events.GraphQLFinish
	eventbus.Subscribe(func(_ context.Context, e events.GraphQLFinish) { got = append(got, e) })

	e := serverEngine(t)
	_, _ = e.Execute(context.Background(), Request{Query: "query Q { hello }", OperationName: "Q"})
	_, _ = e.Execute(context.Background(), Request{Query: "{"})

	require.Len(t, got, 2)
	want := events.GraphQLFinish{Query: "query Q { hello }", OperationName: "Q", OperationType: "query"}
	if diff := cmp.Diff(want, got[0], cmpIgnoreDuration); diff != "" {
		t.Errorf("finish event mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, got[1].OperationType)
	assert.Len(t, got[1].Errors, 1)
}

var cmpIgnoreDuration = cmp.FilterPath(func(p cmp.Path) bool {
	return p.Last().String() == ".Duration"
}, cmp.Ignore())
