package executor

import (
	"errors"

	language "github.com/hanpama/gqlhello/internal/language"
)

// Location is a line/column pair into the query text, both 1-based.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLError represents an error that occurred during execution
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// ExecutionResult represents the result of executing a GraphQL query.
// Data is nil, and omitted from JSON, when the request failed before
// execution started.
type ExecutionResult struct {
	Data   any            `json:"data,omitempty"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// Extender is implemented by errors that contribute an "extensions" entry,
// such as a machine-readable code.
type Extender interface {
	Extensions() map[string]any
}

// newGraphQLError converts a resolver or runtime error into a located error.
func newGraphQLError(err error, path Path, fields []*language.Field) GraphQLError {
	ge := GraphQLError{Message: err.Error(), Path: path, Locations: fieldLocations(fields)}
	var ext Extender
	if errors.As(err, &ext) {
		ge.Extensions = ext.Extensions()
	}
	return ge
}

func fieldLocations(fields []*language.Field) []Location {
	if len(fields) == 0 || fields[0].Position == nil {
		return nil
	}
	return []Location{{Line: fields[0].Position.Line, Column: fields[0].Position.Column}}
}
