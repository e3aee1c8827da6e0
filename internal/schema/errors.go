package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds carried by SchemaError.
var (
	ErrUnknownType   = errors.New("unknown type")
	ErrDuplicateType = errors.New("duplicate type")
	ErrInvalidSchema = errors.New("invalid schema")
	ErrSealed        = errors.New("schema is sealed")
	ErrNoQueryType   = errors.New("no query type")
)

// SchemaError reports a problem found while assembling a schema.
// It matches its Kind under errors.Is.
type SchemaError struct {
	Kind    error
	Type    string
	Field   string
	Message string
	Cause   error
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema: ")
	b.WriteString(e.Kind.Error())
	if e.Type != "" {
		b.WriteString(" ")
		b.WriteString(e.Type)
		if e.Field != "" {
			b.WriteString(".")
			b.WriteString(e.Field)
		}
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *SchemaError) Unwrap() error { return e.Cause }

func (e *SchemaError) Is(target error) bool {
	if t, ok := target.(*SchemaError); ok {
		return e.Kind == t.Kind
	}
	return e.Kind == target
}

// NewSchemaError creates a SchemaError of the given kind for typeName.
func NewSchemaError(kind error, typeName, message string) *SchemaError {
	return &SchemaError{Kind: kind, Type: typeName, Message: message}
}

// WithField records the offending field.
func (e *SchemaError) WithField(name string) *SchemaError {
	e.Field = name
	return e
}

// WithCause adds a cause to the error.
func (e *SchemaError) WithCause(err error) *SchemaError {
	e.Cause = err
	return e
}
