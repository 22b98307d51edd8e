package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe()

	b.Publish(&Event{Type: EventJobStarted, JobName: "a.job"})

	select {
	case evt := <-sub:
		assert.Equal(t, EventJobStarted, evt.Type)
		assert.Equal(t, "a.job", evt.JobName)
		assert.False(t, evt.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event was never delivered")
	}
}

func TestPublishTracksOutcomePerJobName(t *testing.T) {
	b := NewBroker()

	b.Publish(&Event{Type: EventJobStarted, JobName: "a.job"})
	b.Publish(&Event{Type: EventJobCompleted, JobName: "a.job"})
	b.Publish(&Event{Type: EventJobFailed, JobName: "b.job"})

	started, completed, failed := b.Outcome("a.job")
	assert.Equal(t, 1, started)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 0, failed)

	started, completed, failed = b.Outcome("b.job")
	assert.Equal(t, 0, started)
	assert.Equal(t, 0, completed)
	assert.Equal(t, 1, failed)
}

func TestOutcomeUnknownJobNameIsZero(t *testing.T) {
	b := NewBroker()
	started, completed, failed := b.Outcome("never-seen.job")
	assert.Zero(t, started)
	assert.Zero(t, completed)
	assert.Zero(t, failed)
}

func TestPublishNeverBlocksOnFullSubscriber(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe()

	for i := 0; i < cap(sub)+10; i++ {
		b.Publish(&Event{Type: EventJobCompleted, JobName: "a.job"})
	}

	assert.Equal(t, 1, b.SubscriberCount())
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe()
	require.Equal(t, 1, b.SubscriberCount())

	b.Unsubscribe(sub)
	assert.Equal(t, 0, b.SubscriberCount())

	_, ok := <-sub
	assert.False(t, ok)
}

func TestStopClosesSubscribersAndDropsLatePublishes(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe()

	b.Stop()

	_, ok := <-sub
	assert.False(t, ok)

	b.Publish(&Event{Type: EventJobStarted, JobName: "a.job"})
	started, _, _ := b.Outcome("a.job")
	assert.Zero(t, started)
}
