package realtime_test

import (
	"testing"

	"cardapio/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestHub_Broadcast(t *testing.T) {
	hub := realtime.NewHub(4)
	a := hub.Subscribe()
	b := hub.Subscribe()
	assert.Equal(t, 2, hub.Len())

	require.NoError(t, hub.Publish("order", "order.created", []byte(`{"id":"1"}`)))

	assert.Equal(t, `{"id":"1"}`, string(<-a.C()))
	assert.Equal(t, `{"id":"1"}`, string(<-b.C()))
}

func TestHub_SlowSubscriberDrops(t *testing.T) {
	hub := realtime.NewHub(1)
	sub := hub.Subscribe()

	require.NoError(t, hub.Publish("order", "order.created", []byte("first")))
	require.NoError(t, hub.Publish("order", "order.created", []byte("second")))

	assert.Equal(t, "first", string(<-sub.C()))
	select {
	case msg := <-sub.C():
		t.Fatalf("unexpected message %q", msg)
	default:
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := realtime.NewHub(1)
	sub := hub.Subscribe()
	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)

	_, ok := <-sub.C()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Len())
	assert.NoError(t, hub.Publish("order", "order.created", []byte("x")))
}

func TestHub_ConcurrentPublishers(t *testing.T) {
	hub := realtime.NewHub(64)
	sub := hub.Subscribe()

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			for j := 0; j < 8; j++ {
				if err := hub.Publish("order", "order.status_changed", []byte("m")); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, sub.C(), 64)
}
