package engine

import (
	"errors"
	"strings"

	"github.com/hanpama/gqlhello/internal/executor"
	"github.com/hanpama/gqlhello/internal/language"
)

var (
	// ErrInvalidQuery matches both *QueryParseError and *ValidationError.
	ErrInvalidQuery = errors.New("engine: invalid query")
)

// QueryParseError reports query text that is not a GraphQL document. No
// part of the query was executed.
type QueryParseError struct {
	Err *language.Error
}

func (e *QueryParseError) Error() string { return "engine: parse query: " + e.Err.Message }
func (e *QueryParseError) Unwrap() error { return e.Err }

func (e *QueryParseError) Is(target error) bool { return target == ErrInvalidQuery }

// GraphQLErrors returns the parse failure in response form.
func (e *QueryParseError) GraphQLErrors() []executor.GraphQLError {
	return []executor.GraphQLError{toGraphQLError(e.Err)}
}

// ValidationError reports a document that parsed but does not fit the
// schema.
type ValidationError struct {
	Errs language.ErrorList
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Message
	}
	return "engine: validate query: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error {
	out := make([]error, len(e.Errs))
	for i, err := range e.Errs {
		out[i] = err
	}
	return out
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidQuery }

// GraphQLErrors returns the rule violations in response form.
func (e *ValidationError) GraphQLErrors() []executor.GraphQLError {
	out := make([]executor.GraphQLError, len(e.Errs))
	for i, err := range e.Errs {
		out[i] = toGraphQLError(err)
	}
	return out
}

// RequestErrors converts an error returned by Execute into the errors of a
// response body. Errors other than parse and validation failures become a
// single message.
func RequestErrors(err error) []executor.GraphQLError {
	var pe *QueryParseError
	if errors.As(err, &pe) {
		return pe.GraphQLErrors()
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.GraphQLErrors()
	}
	return []executor.GraphQLError{{Message: err.Error()}}
}

func toGraphQLError(err *language.Error) executor.GraphQLError {
	ge := executor.GraphQLError{Message: err.Message, Extensions: err.Extensions}
	for _, loc := range err.Locations {
		ge.Locations = append(ge.Locations, executor.Location{Line: loc.Line, Column: loc.Column})
	}
	return ge
}
