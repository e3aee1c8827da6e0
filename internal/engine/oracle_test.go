package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlhello/internal/hello"
)

// Reference resolvers for the server schema in graph-gophers/graphql-go
// style, used to cross-check results.
type refQuery struct{}

func (refQuery) Hello() *string { s := hello.Greeting; return &s }
func (refQuery) Num() *int32    { n := int32(3); return &n }
func (refQuery) Bool() *bool    { b := false; return &b }
func (refQuery) Info() *refInfo { return &refInfo{} }

type refInfo struct{}

func (refInfo) Test() *string  { s := "test"; return &s }
func (refInfo) Test2() *string { s := "test2"; return &s }

func TestEngine_MatchesReference(t *testing.T) {
	ref := graphql.MustParseSchema(hello.ServerSDL, &refQuery{})
	e := serverEngine(t)

	queries := []string{
		`{ hello }`,
		`{ num bool }`,
		`{ info { test test2 } }`,
		`{ hello num bool info { test2 test } }`,
		`{ x: num y: info { z: test } }`,
		`query Q { ...F } fragment F on Query { hello info { ... on Info { test } } }`,
		`{ hello @skip(if: true) num @include(if: true) }`,
		`{ __typename info { __typename } }`,
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			want := ref.Exec(context.Background(), q, "", nil)
			require.Empty(t, want.Errors)

			got, err := e.Execute(context.Background(), Request{Query: q})
			require.NoError(t, err)
			require.Empty(t, got.Errors)

			var wantData, gotData any
			require.NoError(t, json.Unmarshal(want.Data, &wantData))
			b, err := json.Marshal(got.Data)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(b, &gotData))
			if diff := cmp.Diff(wantData, gotData); diff != "" {
				t.Errorf("result mismatch (-reference +engine):\n%s", diff)
			}
		})
	}
}
