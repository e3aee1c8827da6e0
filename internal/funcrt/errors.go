package funcrt

import (
	"fmt"
)

// Codes reported under extensions.code.
const (
	CodeResolverNotFound = "RESOLVER_NOT_FOUND"
	CodeResolverFailed   = "RESOLVER_FAILED"
	CodeResolverPanic    = "RESOLVER_PANIC"
	CodeInvalidLeaf      = "INVALID_LEAF_VALUE"
)

// FieldResolutionError reports a field that could not produce a value: no
// resolver was found, the resolver failed or panicked, or its result could
// not be serialized as the declared leaf type.
type FieldResolutionError struct {
	Type    string
	Field   string
	Code    string
	Message string
	Cause   error
}

func (e *FieldResolutionError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Cause != nil:
		return e.Cause.Error()
	default:
		return fmt.Sprintf("cannot resolve field %s.%s", e.Type, e.Field)
	}
}

func (e *FieldResolutionError) Unwrap() error { return e.Cause }

// Is matches another FieldResolutionError with the same code.
func (e *FieldResolutionError) Is(target error) bool {
	t, ok := target.(*FieldResolutionError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Extensions implements executor.Extender.
func (e *FieldResolutionError) Extensions() map[string]any {
	return map[string]any{"code": e.Code}
}

// Sentinels for errors.Is comparisons by code.
var (
	ErrResolverNotFound = &FieldResolutionError{Code: CodeResolverNotFound}
	ErrResolverFailed   = &FieldResolutionError{Code: CodeResolverFailed}
	ErrResolverPanic    = &FieldResolutionError{Code: CodeResolverPanic}
	ErrInvalidLeaf      = &FieldResolutionError{Code: CodeInvalidLeaf}
)
