package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type ping struct{ n int }
type pong struct{}

func TestPublishSubscribe(t *testing.T) {
	Use(New())
	t.Cleanup(func() { Use(nil) })

	var a, b []int
	unsubA := Subscribe(func(_ context.Context, e ping) { a = append(a, e.n) })
	unsubB := Subscribe(func(_ context.Context, e ping) { b = append(b, e.n) })
	Subscribe(func(context.Context, pong) { t.Fatal("pong handler must not see ping") })

	Publish(context.Background(), ping{1})
	unsubA()
	unsubA()
	Publish(context.Background(), ping{2})
	unsubB()
	Publish(context.Background(), ping{3})

	assert.Equal(t, []int{1}, a)
	assert.Equal(t, []int{1, 2}, b)
}

func TestPublish_NoBus(t *testing.T) {
	Use(nil)
	called := false
	unsub := Subscribe(func(context.Context, ping) { called = true })
	Publish(context.Background(), ping{})
	unsub()
	assert.False(t, called)
}
