// Package registry holds the static schema of the service together with the
// type-level resolvers of its fields.
//
// A Registry is assembled at startup with Register or FromSDL, then sealed by
// Seal (or the first call to Schema or AST). A sealed registry is immutable
// and safe for concurrent reads.
package registry

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/gqlhello/internal/language"
	"github.com/hanpama/gqlhello/internal/resolver"
	"github.com/hanpama/gqlhello/internal/schema"
)

// QueryType is the name of the root operation type.
const QueryType = "Query"

var nameRE = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// Field declares one field of a registered type. Type is a GraphQL type
// expression such as "String", "Int!" or "[Info]". A nil Resolve is allowed;
// the field then has to be resolved through its parent value.
type Field struct {
	Name        string
	Type        string
	Resolve     resolver.Resolver
	Description string
}

type Registry struct {
	mu         sync.RWMutex
	order      []string
	types      map[string]*schema.Type
	directives []*schema.Directive
	resolvers  map[string]resolver.Object

	sealed  bool
	sealErr error
	schema  *schema.Schema
	ast     *ast.Schema
}

func New() *Registry {
	return &Registry{
		types:     make(map[string]*schema.Type),
		resolvers: make(map[string]resolver.Object),
	}
}

// FromSDL builds a registry from SDL text. Types may reference each other in
// any order. Resolvers are attached afterwards with Bind.
func FromSDL(name, sdl string) (*Registry, error) {
	s, _, err := schema.BuildFromSDL(name, sdl)
	if err != nil {
		return nil, err
	}
	if s.QueryType != QueryType {
		return nil, schema.NewSchemaError(schema.ErrInvalidSchema, s.QueryType,
			"root query type must be named "+QueryType)
	}
	r := New()
	for _, t := range sortedTypes(s) {
		r.order = append(r.order, t.Name)
		r.types[t.Name] = t
	}
	for _, d := range s.Directives {
		if d.Name != "include" && d.Name != "skip" && d.Name != "deprecated" {
			r.directives = append(r.directives, d)
		}
	}
	return r, nil
}

// Register declares typeName with the given fields. Each field type must name
// a built-in scalar, typeName itself or a previously registered type.
func (r *Registry) Register(typeName string, fields ...Field) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return schema.NewSchemaError(schema.ErrSealed, typeName, "cannot register after the registry is sealed")
	}
	if !nameRE.MatchString(typeName) || strings.HasPrefix(typeName, "__") {
		return schema.NewSchemaError(schema.ErrInvalidSchema, typeName, "invalid type name")
	}
	if _, exists := r.types[typeName]; exists || schema.IsBuiltinScalar(typeName) {
		return schema.NewSchemaError(schema.ErrDuplicateType, typeName, "type is already registered")
	}
	if len(fields) == 0 {
		return schema.NewSchemaError(schema.ErrInvalidSchema, typeName, "type must declare at least one field")
	}

	t := schema.NewType(typeName, schema.TypeKindObject, "")
	obj := make(resolver.Object, len(fields))
	for _, f := range fields {
		if !nameRE.MatchString(f.Name) || strings.HasPrefix(f.Name, "__") {
			return schema.NewSchemaError(schema.ErrInvalidSchema, typeName, "invalid field name").WithField(f.Name)
		}
		if t.Field(f.Name) != nil {
			return schema.NewSchemaError(schema.ErrInvalidSchema, typeName, "duplicate field").WithField(f.Name)
		}
		expr, err := language.ParseType(f.Type)
		if err != nil {
			return schema.NewSchemaError(schema.ErrInvalidSchema, typeName, "invalid type expression").
				WithField(f.Name).WithCause(err)
		}
		named := expr.Name()
		if named != typeName && !schema.IsBuiltinScalar(named) {
			if _, ok := r.types[named]; !ok {
				return schema.NewSchemaError(schema.ErrUnknownType, typeName, named).WithField(f.Name)
			}
		}
		t.AddField(schema.NewField(f.Name, f.Description, schema.BuildTypeRef(expr)).SetAsync(true))
		if f.Resolve != nil {
			obj[f.Name] = f.Resolve
		}
	}

	r.order = append(r.order, typeName)
	r.types[typeName] = t
	if len(obj) > 0 {
		r.resolvers[typeName] = obj
	}
	return nil
}

// Bind attaches type-level resolvers to a declared type. Entries for the
// same field replace earlier ones.
func (r *Registry) Bind(typeName string, obj resolver.Object) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return schema.NewSchemaError(schema.ErrSealed, typeName, "cannot bind after the registry is sealed")
	}
	t, ok := r.types[typeName]
	if !ok {
		return schema.NewSchemaError(schema.ErrUnknownType, typeName, "type is not declared")
	}
	existing := r.resolvers[typeName]
	if existing == nil {
		existing = make(resolver.Object, len(obj))
		r.resolvers[typeName] = existing
	}
	for name, res := range obj {
		if t.Field(name) == nil {
			return schema.NewSchemaError(schema.ErrUnknownType, typeName, "no such field").WithField(name)
		}
		existing[name] = res
	}
	return nil
}

// Seal freezes the registry and builds the executable schema. It is
// idempotent and returns the same error on every call.
func (r *Registry) Seal() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return r.sealErr
	}
	r.sealed = true
	r.schema, r.ast, r.sealErr = r.build()
	return r.sealErr
}

func (r *Registry) build() (*schema.Schema, *ast.Schema, error) {
	if _, ok := r.types[QueryType]; !ok {
		return nil, nil, schema.NewSchemaError(schema.ErrNoQueryType, QueryType, "root type is not registered")
	}
	s := schema.NewSchema("").SetQueryType(QueryType)
	for _, name := range r.order {
		s.AddType(r.types[name])
	}
	for _, d := range r.directives {
		s.AddDirective(d)
	}

	src, err := language.LoadSchema("registry.graphql", schema.Render(s))
	if err != nil {
		return nil, nil, schema.NewSchemaError(schema.ErrInvalidSchema, "", "schema does not validate").WithCause(err)
	}
	return s, src, nil
}

// Schema seals the registry and returns the executable schema, or nil when
// sealing failed.
func (r *Registry) Schema() *schema.Schema {
	if err := r.Seal(); err != nil {
		return nil
	}
	return r.schema
}

// AST seals the registry and returns the gqlparser schema used for query
// validation, or nil when sealing failed.
func (r *Registry) AST() *ast.Schema {
	if err := r.Seal(); err != nil {
		return nil
	}
	return r.ast
}

// Resolvers returns the type-level resolvers of typeName. The returned
// object must not be modified.
func (r *Registry) Resolvers(typeName string) resolver.Object {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolvers[typeName]
}

// Types lists the declared type names in registration order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// SDL renders the sealed schema.
func (r *Registry) SDL() (string, error) {
	if err := r.Seal(); err != nil {
		return "", err
	}
	return schema.Render(r.schema), nil
}

// IsSchemaError reports whether err originates from schema assembly.
func IsSchemaError(err error) bool {
	var se *schema.SchemaError
	return errors.As(err, &se)
}

func sortedTypes(s *schema.Schema) []*schema.Type {
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		if !schema.IsBuiltinScalar(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]*schema.Type, len(names))
	for i, name := range names {
		out[i] = s.Types[name]
	}
	return out
}
