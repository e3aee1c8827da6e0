package events

import "time"

// GraphQLStart is emitted before executing a GraphQL operation.
type GraphQLStart struct {
	Query         string
	OperationName string
}

// GraphQLFinish is emitted after executing a GraphQL operation, including
// requests rejected by parsing or validation.
type GraphQLFinish struct {
	Query         string
	OperationName string
	// OperationType is "query", "mutation" or "subscription"; empty when the
	// document did not parse.
	OperationType string
	Errors        []error
	// Cached reports whether the parsed document came from the query cache.
	Cached   bool
	Duration time.Duration
}
