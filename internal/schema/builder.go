package schema

import (
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/gqlhello/internal/language"
)

// BuildFromAST converts a gqlparser schema into an executable Schema.
// Only object, scalar, enum and input object definitions are accepted;
// interfaces and unions are reported as ErrInvalidSchema. Every object field
// is marked async so resolvers at one depth run concurrently.
func BuildFromAST(src *ast.Schema) (*Schema, error) {
	if src.Query == nil {
		return nil, NewSchemaError(ErrNoQueryType, "", "schema has no query root type")
	}
	s := NewSchema(src.Description)
	s.SetQueryType(src.Query.Name)
	if src.Mutation != nil {
		s.SetMutationType(src.Mutation.Name)
	}
	if src.Subscription != nil {
		s.SetSubscriptionType(src.Subscription.Name)
	}

	names := make([]string, 0, len(src.Types))
	for name, def := range src.Types {
		if def.BuiltIn || IsBuiltinScalar(name) || strings.HasPrefix(name, "__") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def := src.Types[name]
		switch def.Kind {
		case ast.Object:
			t, err := buildObject(src, def)
			if err != nil {
				return nil, err
			}
			s.AddType(t)
		case ast.Scalar:
			s.AddType(buildScalar(def))
		case ast.Enum:
			s.AddType(buildEnum(def))
		case ast.InputObject:
			s.AddType(buildInput(def))
		default:
			return nil, NewSchemaError(ErrInvalidSchema, def.Name,
				"unsupported kind "+strings.ToLower(string(def.Kind)))
		}
	}

	dirNames := make([]string, 0, len(src.Directives))
	for name, dir := range src.Directives {
		if dir.Position != nil && dir.Position.Src != nil && dir.Position.Src.BuiltIn {
			continue
		}
		dirNames = append(dirNames, name)
	}
	sort.Strings(dirNames)
	for _, name := range dirNames {
		s.AddDirective(buildDirective(src.Directives[name]))
	}
	return s, nil
}

func buildObject(src *ast.Schema, def *ast.Definition) (*Type, error) {
	t := NewType(def.Name, TypeKindObject, def.Description)
	if len(def.Interfaces) > 0 {
		return nil, NewSchemaError(ErrInvalidSchema, def.Name, "interfaces are not supported")
	}
	for _, fd := range def.Fields {
		if strings.HasPrefix(fd.Name, "__") {
			continue
		}
		named := src.Types[fd.Type.Name()]
		if named == nil {
			return nil, NewSchemaError(ErrUnknownType, def.Name, fd.Type.Name()).WithField(fd.Name)
		}
		if named.Kind == ast.InputObject {
			return nil, NewSchemaError(ErrInvalidSchema, def.Name,
				"input object "+named.Name+" used as output type").WithField(fd.Name)
		}
		t.AddField(buildField(fd))
	}
	return t, nil
}

func buildField(def *ast.FieldDefinition) *Field {
	f := NewField(def.Name, def.Description, BuildTypeRef(def.Type)).SetAsync(true)
	if deprecated, reason := deprecation(def.Directives); deprecated {
		f.Deprecate(reason)
	}
	for _, arg := range def.Arguments {
		f.AddArgument(buildArgument(arg))
	}
	return f
}

func buildArgument(a *ast.ArgumentDefinition) *InputValue {
	in := NewInputValue(a.Name, a.Description, BuildTypeRef(a.Type)).SetDefault(defaultValue(a.DefaultValue))
	if deprecated, reason := deprecation(a.Directives); deprecated {
		in.Deprecate(reason)
	}
	return in
}

func buildScalar(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindScalar, def.Description)
	if d := def.Directives.ForName("specifiedBy"); d != nil {
		if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
			url := arg.Value.Raw
			t.SpecifiedByURL = &url
		}
	}
	return t
}

func buildEnum(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindEnum, def.Description)
	for _, v := range def.EnumValues {
		e := NewEnumValue(v.Name, v.Description)
		if deprecated, reason := deprecation(v.Directives); deprecated {
			e.Deprecate(reason)
		}
		t.AddEnumValue(e)
	}
	return t
}

func buildInput(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindInputObject, def.Description)
	t.OneOf = def.Directives.ForName("oneOf") != nil
	for _, fd := range def.Fields {
		in := NewInputValue(fd.Name, fd.Description, BuildTypeRef(fd.Type)).SetDefault(defaultValue(fd.DefaultValue))
		if deprecated, reason := deprecation(fd.Directives); deprecated {
			in.Deprecate(reason)
		}
		t.AddInputField(in)
	}
	return t
}

func buildDirective(def *ast.DirectiveDefinition) *Directive {
	d := NewDirective(def.Name, def.Description).SetRepeatable(def.IsRepeatable)
	for _, loc := range def.Locations {
		d.AddLocations(string(loc))
	}
	for _, arg := range def.Arguments {
		d.AddArgument(buildArgument(arg))
	}
	return d
}

// BuildTypeRef converts a gqlparser type expression into a TypeRef.
func BuildTypeRef(t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(BuildTypeRef(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		ref = NonNullType(ref)
	}
	return ref
}

func deprecation(dirs ast.DirectiveList) (bool, string) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return false, ""
	}
	reason := "No longer supported"
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		reason = arg.Value.Raw
	}
	return true, reason
}

func defaultValue(v *ast.Value) any {
	if v == nil {
		return nil
	}
	val, err := v.Value(nil)
	if err != nil {
		return nil
	}
	return val
}

// BuildFromSDL parses SDL string and returns the corresponding Schema.
func BuildFromSDL(name, sdl string) (*Schema, *ast.Schema, error) {
	src, err := language.LoadSchema(name, sdl)
	if err != nil {
		return nil, nil, NewSchemaError(ErrInvalidSchema, "", "cannot load SDL").WithCause(err)
	}
	s, err := BuildFromAST(src)
	if err != nil {
		return nil, nil, err
	}
	return s, src, nil
}
