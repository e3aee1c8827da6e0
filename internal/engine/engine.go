// Package engine is the query facade: it parses and validates query text
// against a sealed registry and executes it with the registry's resolvers.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/hanpama/gqlhello/internal/eventbus"
	"github.com/hanpama/gqlhello/internal/events"
	"github.com/hanpama/gqlhello/internal/executor"
	"github.com/hanpama/gqlhello/internal/funcrt"
	"github.com/hanpama/gqlhello/internal/introspection"
	"github.com/hanpama/gqlhello/internal/language"
	"github.com/hanpama/gqlhello/internal/registry"
	"github.com/hanpama/gqlhello/internal/resolver"
)

// Request is one GraphQL operation to run.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Engine executes queries against one registry. It is safe for concurrent
// use.
type Engine struct {
	reg   *registry.Registry
	root  resolver.Object
	exec  *executor.Executor
	cache *ristretto.Cache[string, *language.QueryDocument]
}

// New seals reg and returns an engine whose root fields resolve through root
// first and the registry's Query resolvers second.
func New(reg *registry.Registry, root resolver.Object, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	rt, err := funcrt.New(reg, funcrt.WithMaxConcurrency(o.maxConcurrency))
	if err != nil {
		return nil, err
	}
	var exec *executor.Executor
	if o.introspection {
		w := introspection.Wrap(rt, reg.Schema())
		exec = executor.NewExecutor(w.Runtime, w.Schema)
	} else {
		exec = executor.NewExecutor(rt, reg.Schema())
	}

	if root == nil {
		root = resolver.Object{}
	}
	e := &Engine{reg: reg, root: root, exec: exec}

	if o.cacheSize > 0 {
		e.cache, err = ristretto.NewCache(&ristretto.Config[string, *language.QueryDocument]{
			NumCounters:        int64(o.cacheSize) * 10,
			MaxCost:            int64(o.cacheSize),
			BufferItems:        64,
			IgnoreInternalCost: true,
		})
		if err != nil {
			return nil, fmt.Errorf("engine: query cache: %w", err)
		}
	}
	return e, nil
}

// Registry returns the registry the engine executes against.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Close releases the query cache.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// Execute runs req. A query that does not parse or validate returns a
// *QueryParseError or *ValidationError and no result; every other failure is
// reported inside the result.
func (e *Engine) Execute(ctx context.Context, req Request) (*executor.ExecutionResult, error) {
	start := time.Now()
	eventbus.Publish(ctx, events.GraphQLStart{Query: req.Query, OperationName: req.OperationName})

	finish := events.GraphQLFinish{Query: req.Query, OperationName: req.OperationName}
	defer func() {
		finish.Duration = time.Since(start)
		eventbus.Publish(ctx, finish)
	}()

	doc, cached, err := e.document(req.Query)
	if err != nil {
		finish.Errors = []error{err}
		return nil, err
	}
	finish.Cached = cached
	if op := selectOperation(doc, req.OperationName); op != nil {
		finish.OperationType = string(op.Operation)
	}

	res := e.exec.ExecuteRequest(ctx, doc, req.OperationName, req.Variables, e.root)
	for _, ge := range res.Errors {
		finish.Errors = append(finish.Errors, ge)
	}
	return res, nil
}

// document returns the parsed and validated form of query.
func (e *Engine) document(query string) (*language.QueryDocument, bool, error) {
	if e.cache != nil {
		if doc, ok := e.cache.Get(query); ok {
			return doc, true, nil
		}
	}

	doc, err := language.ParseQuery(query)
	if err != nil {
		return nil, false, &QueryParseError{Err: language.AsError(err)}
	}
	if len(doc.Operations) == 0 && len(doc.Fragments) == 0 {
		return nil, false, &QueryParseError{Err: &language.Error{
			Message:   "Syntax Error: Unexpected <EOF>",
			Locations: []language.Location{{Line: 1, Column: 1}},
		}}
	}
	if errs := language.Validate(e.reg.AST(), query); len(errs) > 0 {
		return nil, false, &ValidationError{Errs: errs}
	}

	if e.cache != nil {
		e.cache.Set(query, doc, 1)
	}
	return doc, false, nil
}

func selectOperation(doc *language.QueryDocument, name string) *language.OperationDefinition {
	if name != "" {
		return doc.Operations.ForName(name)
	}
	if len(doc.Operations) == 1 {
		return doc.Operations[0]
	}
	return nil
}

// Execute runs queryText once against reg with root as the root resolvers.
// The registry is sealed by the call.
func Execute(ctx context.Context, reg *registry.Registry, queryText string, root resolver.Object) (*executor.ExecutionResult, error) {
	e, err := New(reg, root, WithQueryCache(0))
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, Request{Query: queryText})
}
