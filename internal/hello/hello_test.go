package hello

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistries(t *testing.T) {
	reg, err := MinimalRegistry()
	require.NoError(t, err)
	assert.Equal(t, []string{"Query"}, reg.Types())

	reg, err = ServerRegistry()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Info", "Query"}, reg.Types())
	require.NoError(t, reg.Seal())
	q := reg.Schema().GetQueryType()
	require.NotNil(t, q)
	names := make([]string, 0, len(q.Fields))
	for _, f := range q.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"hello", "num", "bool", "info"}, names)
}

func TestServerRoot(t *testing.T) {
	ctx := context.Background()
	root := ServerRoot()

	v, err := root["num"](ctx, nil).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = root["info"](ctx, nil).Await(ctx)
	require.NoError(t, err)
	require.Contains(t, v, "test2")

	v, err = MinimalRoot()["hello"](ctx, nil).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, Greeting, v)
}
