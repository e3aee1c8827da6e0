// Package hello holds the demo schemas served by the gqlhello command.
package hello

import (
	"context"

	"github.com/hanpama/gqlhello/internal/registry"
	"github.com/hanpama/gqlhello/internal/resolver"
)

// Greeting is the value of the hello field in both schemas.
const Greeting = "Hello world!"

// MinimalSDL is the schema of the one-shot command.
const MinimalSDL = `type Query {
  hello: String
}
`

// ServerSDL is the schema served over HTTP.
const ServerSDL = `type Query {
  hello: String
  num: Int
  bool: Boolean
  info: Info
}

type Info {
  test: String
  test2: String
}
`

// MinimalRegistry returns an unsealed registry for MinimalSDL.
func MinimalRegistry() (*registry.Registry, error) { return registry.FromSDL("minimal.graphql", MinimalSDL) }

// ServerRegistry returns an unsealed registry for ServerSDL.
func ServerRegistry() (*registry.Registry, error) { return registry.FromSDL("server.graphql", ServerSDL) }

// MinimalRoot returns the root resolvers of MinimalSDL.
func MinimalRoot() resolver.Object {
	return resolver.Object{"hello": resolver.Value(Greeting)}
}

// ServerRoot returns the root resolvers of ServerSDL. info resolves to a
// fresh object whose fields are themselves resolvers.
func ServerRoot() resolver.Object {
	return resolver.Object{
		"hello": resolver.Value(Greeting),
		"num":   resolver.Value(3),
		"bool":  resolver.Value(false),
		"info": resolver.Func(func(context.Context, map[string]any) (any, error) {
			return newInfo(), nil
		}),
	}
}

func newInfo() resolver.Object {
	return resolver.Object{
		"test":  resolver.Value("test"),
		"test2": resolver.Value("test2"),
	}
}
