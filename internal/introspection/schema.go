package introspection

import (
	schema "github.com/hanpama/gqlhello/internal/schema"
)

// extend returns a copy of original carrying the introspection types and the
// __schema/__type root fields. original is left untouched.
func extend(original *schema.Schema) *schema.Schema {
	extended := &schema.Schema{
		QueryType:        original.QueryType,
		MutationType:     original.MutationType,
		SubscriptionType: original.SubscriptionType,
		Types:            make(map[string]*schema.Type, len(original.Types)+len(metaTypes)),
		Directives:       original.Directives,
		Description:      original.Description,
	}
	for name, typ := range original.Types {
		extended.Types[name] = typ
	}
	for _, build := range metaTypes {
		t := build()
		extended.Types[t.Name] = t
	}

	if query := original.GetQueryType(); query != nil {
		root := *query
		root.Fields = append(append([]*schema.Field(nil), query.Fields...),
			schema.NewField("__schema", "Access the current type schema of this server.",
				nonNull("__Schema")),
			schema.NewField("__type", "Request the type information of a single type.",
				schema.NamedType("__Type")).
				AddArgument(schema.NewInputValue("name", "The name of the type to look up.", nonNull("String"))),
		)
		extended.Types[root.Name] = &root
	}
	return extended
}

var metaTypes = []func() *schema.Type{
	schemaType,
	typeType,
	fieldType,
	inputValueType,
	enumValueType,
	directiveType,
	typeKindEnum,
	directiveLocationEnum,
}

func nonNull(name string) *schema.TypeRef { return schema.NonNullType(schema.NamedType(name)) }

// nonNullList is [name!]!
func nonNullList(name string) *schema.TypeRef {
	return schema.NonNullType(schema.ListType(nonNull(name)))
}

func includeDeprecated() *schema.InputValue {
	return schema.NewInputValue("includeDeprecated", "", schema.NamedType("Boolean")).SetDefault(false)
}

func schemaType() *schema.Type {
	return schema.NewType("__Schema", schema.TypeKindObject,
		"A GraphQL Schema defines the capabilities of a GraphQL server.").
		AddField(schema.NewField("description", "A description of the schema.", schema.NamedType("String"))).
		AddField(schema.NewField("types", "A list of all types supported by this server.", nonNullList("__Type"))).
		AddField(schema.NewField("queryType", "The type that query operations will be rooted at.", nonNull("__Type"))).
		AddField(schema.NewField("mutationType",
			"If this server supports mutation, the type that mutation operations will be rooted at.",
			schema.NamedType("__Type"))).
		AddField(schema.NewField("subscriptionType",
			"If this server support subscription, the type that subscription operations will be rooted at.",
			schema.NamedType("__Type"))).
		AddField(schema.NewField("directives", "A list of all directives supported by this server.", nonNullList("__Directive")))
}

func typeType() *schema.Type {
	typeList := schema.ListType(nonNull("__Type"))
	return schema.NewType("__Type", schema.TypeKindObject,
		"The fundamental unit of any GraphQL Schema is the type.").
		AddField(schema.NewField("kind", "", nonNull("__TypeKind"))).
		AddField(schema.NewField("name", "", schema.NamedType("String"))).
		AddField(schema.NewField("description", "", schema.NamedType("String"))).
		AddField(schema.NewField("specifiedByURL", "", schema.NamedType("String"))).
		AddField(schema.NewField("fields", "", schema.ListType(nonNull("__Field"))).AddArgument(includeDeprecated())).
		AddField(schema.NewField("interfaces", "", typeList)).
		AddField(schema.NewField("possibleTypes", "", typeList)).
		AddField(schema.NewField("enumValues", "", schema.ListType(nonNull("__EnumValue"))).AddArgument(includeDeprecated())).
		AddField(schema.NewField("inputFields", "", schema.ListType(nonNull("__InputValue"))).AddArgument(includeDeprecated())).
		AddField(schema.NewField("ofType", "", schema.NamedType("__Type"))).
		AddField(schema.NewField("isOneOf", "", schema.NamedType("Boolean")))
}

func fieldType() *schema.Type {
	return schema.NewType("__Field", schema.TypeKindObject,
		"Object and Interface types are described by a list of Fields, each of which has a name, potentially a list of arguments, and a return type.").
		AddField(schema.NewField("name", "", nonNull("String"))).
		AddField(schema.NewField("description", "", schema.NamedType("String"))).
		AddField(schema.NewField("args", "", nonNullList("__InputValue")).AddArgument(includeDeprecated())).
		AddField(schema.NewField("type", "", nonNull("__Type"))).
		AddField(schema.NewField("isDeprecated", "", nonNull("Boolean"))).
		AddField(schema.NewField("deprecationReason", "", schema.NamedType("String")))
}

func inputValueType() *schema.Type {
	return schema.NewType("__InputValue", schema.TypeKindObject,
		"Arguments provided to Fields or Directives and the input fields of an InputObject are represented as Input Values which describe their type and optionally a default value.").
		AddField(schema.NewField("name", "", nonNull("String"))).
		AddField(schema.NewField("description", "", schema.NamedType("String"))).
		AddField(schema.NewField("type", "", nonNull("__Type"))).
		AddField(schema.NewField("defaultValue",
			"A GraphQL-formatted string representing the default value for this input value.",
			schema.NamedType("String"))).
		AddField(schema.NewField("isDeprecated", "", nonNull("Boolean"))).
		AddField(schema.NewField("deprecationReason", "", schema.NamedType("String")))
}

func enumValueType() *schema.Type {
	return schema.NewType("__EnumValue", schema.TypeKindObject,
		"One possible value for a given Enum.").
		AddField(schema.NewField("name", "", nonNull("String"))).
		AddField(schema.NewField("description", "", schema.NamedType("String"))).
		AddField(schema.NewField("isDeprecated", "", nonNull("Boolean"))).
		AddField(schema.NewField("deprecationReason", "", schema.NamedType("String")))
}

func directiveType() *schema.Type {
	return schema.NewType("__Directive", schema.TypeKindObject,
		"A Directive provides a way to describe alternate runtime execution and type validation behavior in a GraphQL document.").
		AddField(schema.NewField("name", "", nonNull("String"))).
		AddField(schema.NewField("description", "", schema.NamedType("String"))).
		AddField(schema.NewField("isRepeatable", "", nonNull("Boolean"))).
		AddField(schema.NewField("locations", "", nonNullList("__DirectiveLocation"))).
		AddField(schema.NewField("args", "", nonNullList("__InputValue")).AddArgument(includeDeprecated()))
}

func enumType(name, description string, values ...string) *schema.Type {
	t := schema.NewType(name, schema.TypeKindEnum, description)
	for _, v := range values {
		t.AddEnumValue(schema.NewEnumValue(v, ""))
	}
	return t
}

func typeKindEnum() *schema.Type {
	return enumType("__TypeKind", "An enum describing what kind of type a given `__Type` is.",
		"SCALAR", "OBJECT", "INTERFACE", "UNION", "ENUM", "INPUT_OBJECT", "LIST", "NON_NULL")
}

func directiveLocationEnum() *schema.Type {
	return enumType("__DirectiveLocation",
		"A Directive can be adjacent to many parts of the GraphQL language, a __DirectiveLocation describes one such possible adjacencies.",
		"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION",
		"FRAGMENT_SPREAD", "INLINE_FRAGMENT", "VARIABLE_DEFINITION", "SCHEMA",
		"SCALAR", "OBJECT", "FIELD_DEFINITION", "ARGUMENT_DEFINITION", "INTERFACE",
		"UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT", "INPUT_FIELD_DEFINITION")
}
