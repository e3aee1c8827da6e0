package language

import (
	"errors"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

// fieldsOnCorrectTypeRule is the gqlparser rule reporting selections of
// fields that do not exist on their parent type.
const fieldsOnCorrectTypeRule = "FieldsOnCorrectType"

// ParseQuery parses an executable document. Syntax errors are returned as
// *Error carrying the offending location.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates SDL together with the built-in prelude
// (scalars, introspection types, @skip/@include).
func LoadSchema(name, source string) (*ASTSchema, error) {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Validate runs the standard validation rules against query. Selections of
// unknown fields are not reported; the executor records them as located
// field errors so that sibling fields still resolve.
func Validate(s *ASTSchema, query string) ErrorList {
	_, errs := gqlparser.LoadQuery(s, query)
	if len(errs) == 0 {
		return nil
	}
	var out ErrorList
	for _, e := range errs {
		if e.Rule == fieldsOnCorrectTypeRule {
			continue
		}
		out = append(out, e)
	}
	return out
}

// AsError converts err into a located GraphQL error.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var ge *gqlerror.Error
	if errors.As(err, &ge) {
		return ge
	}
	return &gqlerror.Error{Message: err.Error()}
}

// ParseType parses a standalone type expression such as "String", "Int!" or
// "[Info!]".
func ParseType(expr string) (*Type, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: "type", Input: "type T { f: " + expr + " }"})
	if err != nil {
		return nil, err
	}
	if len(doc.Definitions) != 1 || len(doc.Definitions[0].Fields) != 1 {
		return nil, &gqlerror.Error{Message: "invalid type expression " + expr}
	}
	f := doc.Definitions[0].Fields[0]
	if len(f.Arguments) > 0 || len(f.Directives) > 0 {
		return nil, &gqlerror.Error{Message: "invalid type expression " + expr}
	}
	return f.Type, nil
}
