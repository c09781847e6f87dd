package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(TopicProcessMaturity)
	defer unsubscribe()

	bus.Publish(Event{
		Topic:     TopicProcessMaturity,
		CompanyID: "company-1",
		EntityID:  "process-1",
		Kind:      "maturity_approved",
	})

	select {
	case event := <-ch:
		assert.Equal(t, TopicProcessMaturity, event.Topic)
		assert.Equal(t, "company-1", event.CompanyID)
		assert.Equal(t, "maturity_approved", event.Kind)
		assert.False(t, event.At.IsZero(), "publish should stamp At")
	case <-time.After(time.Second):
		t.Fatal("expected event was not delivered")
	}
}

func TestPublishScopedToTopic(t *testing.T) {
	bus := NewBus()
	tasksCh, unsubTasks := bus.Subscribe(TopicTasks)
	defer unsubTasks()
	indicatorsCh, unsubIndicators := bus.Subscribe(TopicIndicators)
	defer unsubIndicators()

	bus.Publish(Event{Topic: TopicTasks, Kind: "task_updated"})

	select {
	case event := <-tasksCh:
		assert.Equal(t, "task_updated", event.Kind)
	case <-time.After(time.Second):
		t.Fatal("tasks subscriber did not receive event")
	}

	select {
	case event := <-indicatorsCh:
		t.Fatalf("indicators subscriber received foreign event %q", event.Kind)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(TopicTasks)

	unsubscribe()

	_, open := <-ch
	assert.False(t, open, "channel should be closed after unsubscribe")

	// Publishing after unsubscribe must not panic or block
	bus.Publish(Event{Topic: TopicTasks, Kind: "task_updated"})
}

func TestSlowSubscriberMissesEvents(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(TopicIndicators)
	defer unsubscribe()

	// The subscriber buffer holds 16 events; anything beyond is dropped
	for i := 0; i < 40; i++ {
		bus.Publish(Event{Topic: TopicIndicators, Kind: "indicator_recorded"})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			require.Equal(t, 16, received, "overflow must be dropped, not queued")
			return
		}
	}
}

func TestPublishPreservesExplicitTimestamp(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(TopicTasks)
	defer unsubscribe()

	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	bus.Publish(Event{Topic: TopicTasks, Kind: "task_created", At: at})

	event := <-ch
	assert.True(t, event.At.Equal(at))
}
