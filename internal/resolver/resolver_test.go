package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	v, err := Value("Hello world!")(context.Background(), nil).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hello world!", v)
}

func TestFail(t *testing.T) {
	boom := errors.New("boom")
	_, err := Fail(boom)(context.Background(), nil).Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestFunc_ReceivesArgs(t *testing.T) {
	r := Func(func(ctx context.Context, args map[string]any) (any, error) {
		return args["n"], nil
	})
	f := r(context.Background(), map[string]any{"n": 3})
	select {
	case <-f.Done():
	default:
		t.Fatal("Func future should be complete on return")
	}
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestAsync(t *testing.T) {
	release := make(chan struct{})
	r := Async(func(ctx context.Context, args map[string]any) (any, error) {
		<-release
		return false, nil
	})
	f := r(context.Background(), nil)
	close(release)
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestAsync_RecoversPanic(t *testing.T) {
	r := Async(func(ctx context.Context, args map[string]any) (any, error) {
		panic("kaput")
	})
	_, err := r(context.Background(), nil).Await(context.Background())
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "kaput", pe.Value)
	assert.NotEmpty(t, pe.Stack)
}

func TestAwait_ContextDone(t *testing.T) {
	r := Async(func(ctx context.Context, args map[string]any) (any, error) {
		time.Sleep(time.Second)
		return nil, nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := r(context.Background(), nil).Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestObject(t *testing.T) {
	obj := Object{"test": Value("test"), "test2": Value("test2")}
	v, err := obj["test2"](context.Background(), nil).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test2", v)
}

func TestParent(t *testing.T) {
	ctx := WithParent(context.Background(), Object{})
	assert.IsType(t, Object{}, Parent(ctx))
	assert.Nil(t, Parent(context.Background()))
}
