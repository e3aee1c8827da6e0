package executor

import (
	"context"
	"sync"

	language "github.com/hanpama/gqlhello/internal/language"
	schema "github.com/hanpama/gqlhello/internal/schema"
)

// MockResolver resolves a single item; MockRuntime adapts it for batched calls in tests.
type MockResolver func(ctx context.Context, source any, args map[string]any) (any, error)

const (
	CallKindSync  = "sync"
	CallKindAsync = "async"
)

func NewMockValueResolver(val any) MockResolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return val, nil
	}
}

func NewMockErrorResolver(err error) MockResolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return nil, err
	}
}

// Call records one task-level invocation. Async calls of one flush share a BatchID.
type Call struct {
	Kind       string
	ObjectType string
	Field      string
	Source     any
	Args       map[string]any
	BatchID    int
}

// MockRuntime implements Runtime over "Type.field" keyed resolvers and logs every call.
type MockRuntime struct {
	mu         sync.Mutex
	resolvers  map[string]MockResolver
	calls      []Call
	batchSeq   int
	serializer func(typeName string, val any) (any, error)
}

func NewMockRuntime(resolvers map[string]MockResolver) *MockRuntime {
	m := &MockRuntime{resolvers: make(map[string]MockResolver)}
	for k, v := range resolvers {
		m.resolvers[k] = v
	}
	return m
}

func (m *MockRuntime) resolve(ctx context.Context, kind string, batchID int, t AsyncResolveTask) AsyncResolveResult {
	m.mu.Lock()
	r := m.resolvers[t.ObjectType+"."+t.Field]
	m.calls = append(m.calls, Call{
		Kind:       kind,
		ObjectType: t.ObjectType,
		Field:      t.Field,
		Source:     t.Source,
		Args:       t.Args,
		BatchID:    batchID,
	})
	m.mu.Unlock()
	if r == nil {
		return AsyncResolveResult{}
	}
	v, err := r(ctx, t.Source, t.Args)
	return AsyncResolveResult{Value: v, Error: err}
}

func (m *MockRuntime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	res := m.resolve(ctx, CallKindSync, 0, AsyncResolveTask{ObjectType: objectType, Field: field, Source: source, Args: args})
	return res.Value, res.Error
}

func (m *MockRuntime) BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	m.mu.Lock()
	m.batchSeq++
	batchID := m.batchSeq
	m.mu.Unlock()

	results := make([]AsyncResolveResult, len(tasks))
	for i, t := range tasks {
		results[i] = m.resolve(ctx, CallKindAsync, batchID, t)
	}
	return results
}

func (m *MockRuntime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	if m.serializer == nil {
		return value, nil
	}
	return m.serializer(typeName, value)
}

// GetCalls returns a copy of the recorded calls in order.
func (m *MockRuntime) GetCalls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

func mustParseQuery(t interface {
	Helper()
	Fatalf(string, ...any)
}, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

func newSchemaWithQueryType(query *schema.Type, additional ...*schema.Type) *schema.Schema {
	sch := schema.NewSchema("")
	sch.SetQueryType(query.Name)
	sch.AddType(query)
	for _, t := range additional {
		sch.AddType(t)
	}
	return sch
}

func newObjectType(name string, fields ...*schema.Field) *schema.Type {
	t := schema.NewType(name, schema.TypeKindObject, "")
	for _, field := range fields {
		t.AddField(field)
	}
	return t
}

func syncField(name string, t *schema.TypeRef) *schema.Field {
	return schema.NewField(name, "", t)
}

func asyncField(name string, t *schema.TypeRef) *schema.Field {
	return schema.NewField(name, "", t).SetAsync(true)
}
