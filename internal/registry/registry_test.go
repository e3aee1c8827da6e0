package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlhello/internal/resolver"
	"github.com/hanpama/gqlhello/internal/schema"
)

func newDemoRegistry(t *testing.T) *Registry {
	t.Helper()
	r := New()
	require.NoError(t, r.Register("Info",
		Field{Name: "test", Type: "String", Resolve: resolver.Value("test")},
		Field{Name: "test2", Type: "String", Resolve: resolver.Value("test2")},
	))
	require.NoError(t, r.Register("Query",
		Field{Name: "hello", Type: "String", Resolve: resolver.Value("Hello world!"), Description: "Greets the world"},
		Field{Name: "num", Type: "Int"},
		Field{Name: "bool", Type: "Boolean!"},
		Field{Name: "info", Type: "Info"},
	))
	return r
}

func TestRegister_BuildsSchema(t *testing.T) {
	r := newDemoRegistry(t)

	s := r.Schema()
	require.NotNil(t, s)
	require.Equal(t, QueryType, s.QueryType)

	q := s.GetQueryType()
	require.Len(t, q.Fields, 4)
	assert.Equal(t, "Greets the world", q.Field("hello").Description)
	assert.Equal(t, "Boolean!", q.Field("bool").Type.String())
	assert.Equal(t, "Info", q.Field("info").Type.GetNamedType())

	require.NotNil(t, r.AST())
	require.NotNil(t, r.AST().Types["Info"])
	assert.Equal(t, []string{"Info", "Query"}, r.Types())
}

func TestRegister_Errors(t *testing.T) {
	cases := []struct {
		name   string
		typ    string
		fields []Field
		want   error
	}{
		{"unknown type", "Query", []Field{{Name: "x", Type: "Missing"}}, schema.ErrUnknownType},
		{"bad expression", "Query", []Field{{Name: "x", Type: "[Int"}}, schema.ErrInvalidSchema},
		{"bad field name", "Query", []Field{{Name: "x-y", Type: "Int"}}, schema.ErrInvalidSchema},
		{"reserved field name", "Query", []Field{{Name: "__x", Type: "Int"}}, schema.ErrInvalidSchema},
		{"duplicate field", "Query", []Field{{Name: "x", Type: "Int"}, {Name: "x", Type: "Int"}}, schema.ErrInvalidSchema},
		{"no fields", "Query", nil, schema.ErrInvalidSchema},
		{"builtin name", "String", []Field{{Name: "x", Type: "Int"}}, schema.ErrDuplicateType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := New().Register(tc.typ, tc.fields...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.True(t, IsSchemaError(err))
		})
	}
}

func TestRegister_SelfReference(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("Query", Field{Name: "self", Type: "Query"}, Field{Name: "ok", Type: "Boolean"}))
	require.NoError(t, r.Seal())
}

func TestRegister_Duplicate(t *testing.T) {
	r := newDemoRegistry(t)
	err := r.Register("Info", Field{Name: "x", Type: "Int"})
	assert.ErrorIs(t, err, schema.ErrDuplicateType)
}

func TestSeal(t *testing.T) {
	r := newDemoRegistry(t)
	require.NoError(t, r.Seal())
	require.NoError(t, r.Seal())

	assert.ErrorIs(t, r.Register("Other", Field{Name: "x", Type: "Int"}), schema.ErrSealed)
	assert.ErrorIs(t, r.Bind("Info", resolver.Object{"test": resolver.Value("x")}), schema.ErrSealed)
}

func TestSeal_NoQueryType(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("Info", Field{Name: "test", Type: "String"}))
	err := r.Seal()
	assert.ErrorIs(t, err, schema.ErrNoQueryType)
	assert.Nil(t, r.Schema())
	assert.Nil(t, r.AST())
	_, err = r.SDL()
	assert.ErrorIs(t, err, schema.ErrNoQueryType)
}

func TestFromSDL_Bind(t *testing.T) {
	r, err := FromSDL("server.graphql", `
type Query { hello: String info: Info }
type Info { test: String test2: String }
`)
	require.NoError(t, err)
	require.NoError(t, r.Bind("Query", resolver.Object{"hello": resolver.Value("Hello world!")}))
	require.NoError(t, r.Bind("Query", resolver.Object{"info": resolver.Value(resolver.Object{})}))

	assert.ErrorIs(t, r.Bind("Missing", resolver.Object{}), schema.ErrUnknownType)
	assert.ErrorIs(t, r.Bind("Query", resolver.Object{"nope": resolver.Value(1)}), schema.ErrUnknownType)

	obj := r.Resolvers("Query")
	require.Len(t, obj, 2)
	v, err := obj["hello"](context.Background(), nil).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hello world!", v)
	assert.Nil(t, r.Resolvers("Info"))

	sdl, err := r.SDL()
	require.NoError(t, err)
	assert.Equal(t, "type Info {\n  test: String\n  test2: String\n}\n\ntype Query {\n  hello: String\n  info: Info\n}\n", sdl)
}

func TestFromSDL_Errors(t *testing.T) {
	_, err := FromSDL("bad", `type Query { hello: }`)
	assert.ErrorIs(t, err, schema.ErrInvalidSchema)

	_, err = FromSDL("root", `schema { query: Root } type Root { ok: Boolean }`)
	assert.ErrorIs(t, err, schema.ErrInvalidSchema)

	_, err = FromSDL("union", `type A { a: Int } union U = A type Query { u: U }`)
	assert.ErrorIs(t, err, schema.ErrInvalidSchema)
}

func TestConcurrentReads(t *testing.T) {
	r := newDemoRegistry(t)
	require.NoError(t, r.Seal())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotNil(t, r.Schema())
			assert.NotNil(t, r.Resolvers("Query")["hello"])
		}()
	}
	wg.Wait()
}
