package bus_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"titledoctor/internal/bus"
)

func TestMemoryBus_FanOutInSubscriptionOrder(t *testing.T) {
	b := bus.NewMemoryBus()

	var order []string
	require.NoError(t, b.Subscribe("topic-a", func(body []byte) error {
		order = append(order, "first:"+string(body))
		return nil
	}))
	require.NoError(t, b.Subscribe("topic-a", func(body []byte) error {
		order = append(order, "second:"+string(body))
		return nil
	}))

	require.NoError(t, b.Publish("topic-a", []byte("hello")))
	assert.Equal(t, []string{"first:hello", "second:hello"}, order)
}

func TestMemoryBus_TopicIsolation(t *testing.T) {
	b := bus.NewMemoryBus()

	var got []string
	require.NoError(t, b.Subscribe("topic-a", func(body []byte) error {
		got = append(got, "a")
		return nil
	}))
	require.NoError(t, b.Subscribe("topic-b", func(body []byte) error {
		got = append(got, "b")
		return nil
	}))

	require.NoError(t, b.Publish("topic-b", nil))
	assert.Equal(t, []string{"b"}, got)
}

func TestMemoryBus_PublishWithoutSubscribers(t *testing.T) {
	b := bus.NewMemoryBus()
	assert.NoError(t, b.Publish("nobody-home", []byte("x")))
}

func TestMemoryBus_HandlerErrorDoesNotStopFanOut(t *testing.T) {
	b := bus.NewMemoryBus()

	var reached bool
	require.NoError(t, b.Subscribe("topic-a", func(body []byte) error {
		return errors.New("handler failed")
	}))
	require.NoError(t, b.Subscribe("topic-a", func(body []byte) error {
		reached = true
		return nil
	}))

	require.NoError(t, b.Publish("topic-a", nil))
	assert.True(t, reached)
}

func TestMemoryBus_ReentrantPublishDeliveredAfterHandlerReturns(t *testing.T) {
	b := bus.NewMemoryBus()

	var order []string
	require.NoError(t, b.Subscribe("first", func(body []byte) error {
		order = append(order, "first-start")
		require.NoError(t, b.Publish("second", nil))
		order = append(order, "first-end")
		return nil
	}))
	require.NoError(t, b.Subscribe("second", func(body []byte) error {
		order = append(order, "second")
		return nil
	}))

	require.NoError(t, b.Publish("first", nil))

	// The nested publish is queued, not dispatched inline, and the whole
	// chain completes before the outermost Publish returns.
	assert.Equal(t, []string{"first-start", "first-end", "second"}, order)
}

func TestMemoryBus_HandlerPanicIsContained(t *testing.T) {
	b := bus.NewMemoryBus()

	var reached bool
	require.NoError(t, b.Subscribe("topic-a", func(body []byte) error {
		panic("boom")
	}))
	require.NoError(t, b.Subscribe("topic-a", func(body []byte) error {
		reached = true
		return nil
	}))

	assert.NotPanics(t, func() {
		require.NoError(t, b.Publish("topic-a", nil))
	})
	assert.True(t, reached)
}
