package notify

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	hub := NewHub()

	var calls atomic.Int32

	handler := func(Event) { calls.Add(1) }

	require.NoError(t, hub.Subscribe("window-1", handler))
	assert.Equal(t, 1, hub.Publish(Event{Channel: ChannelBackupReminder}))
	assert.Equal(t, int32(1), calls.Load())

	assert.True(t, hub.Unsubscribe("window-1"))
	assert.False(t, hub.Unsubscribe("window-1"))

	assert.Equal(t, 0, hub.Publish(Event{Channel: ChannelBackupReminder}))
	assert.Equal(t, int32(1), calls.Load(), "no calls after unsubscribe")
	assert.Zero(t, hub.Count())
}

func TestSubscribeReplacesSameID(t *testing.T) {
	hub := NewHub()

	var first, second atomic.Int32

	require.NoError(t, hub.Subscribe("ui", func(Event) { first.Add(1) }))
	require.NoError(t, hub.Subscribe("ui", func(Event) { second.Add(1) }))

	hub.Publish(Event{Channel: ChannelBackupReminder})

	assert.Zero(t, first.Load())
	assert.Equal(t, int32(1), second.Load())
	assert.Equal(t, 1, hub.Count())
}

func TestSubscribeEmptyID(t *testing.T) {
	require.ErrorIs(t, NewHub().Subscribe("", func(Event) {}), ErrEmptySubscriberID)
}

func TestPublishSetsTime(t *testing.T) {
	hub := NewHub()

	var got Event

	require.NoError(t, hub.Subscribe("ui", func(e Event) { got = e }))
	hub.Publish(Event{Channel: ChannelBackupReminder, Payload: map[string]int{"days": 9}})

	assert.Equal(t, ChannelBackupReminder, got.Channel)
	assert.False(t, got.At.IsZero())
}

func TestConcurrentUnsubscribe(t *testing.T) {
	hub := NewHub()

	var (
		calls        atomic.Int32
		unsubscribed atomic.Bool
		late         atomic.Int32
	)

	require.NoError(t, hub.Subscribe("ui", func(Event) {
		calls.Add(1)

		if unsubscribed.Load() {
			late.Add(1)
		}
	}))

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 100 {
				hub.Publish(Event{Channel: ChannelBackupReminder})
			}
		}()
	}

	hub.Unsubscribe("ui")
	unsubscribed.Store(true)

	wg.Wait()

	assert.Zero(t, late.Load())
}

func TestAttachDetachKeepsReplacement(t *testing.T) {
	hub := NewHub()

	var first, second atomic.Int32

	detachFirst, err := hub.Attach("ui", func(Event) { first.Add(1) })
	require.NoError(t, err)

	detachSecond, err := hub.Attach("ui", func(Event) { second.Add(1) })
	require.NoError(t, err)

	detachFirst()
	assert.Equal(t, 1, hub.Count(), "stale detach leaves the newer subscription alone")

	hub.Publish(Event{Channel: ChannelBackupReminder})
	assert.Zero(t, first.Load())
	assert.Equal(t, int32(1), second.Load())

	detachSecond()
	assert.Zero(t, hub.Count())
	assert.Zero(t, hub.Publish(Event{Channel: ChannelBackupReminder}))
}
