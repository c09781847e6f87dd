// Package events provides the in-process pub/sub bus used to invalidate UI
// caches after state changes. Delivery is advisory: no persistence, no
// ordering guarantee, and slow subscribers are skipped rather than blocked.
package events

import (
	"sync"
	"time"
)

// Topic names a category of change events
type Topic string

const (
	TopicProcessMaturity Topic = "process.maturity"
	TopicTasks           Topic = "tasks"
	TopicIndicators      Topic = "indicators"
)

// Event is the payload delivered to subscribers. Consumers are expected to
// re-fetch their own data; the event only says what kind of thing changed.
type Event struct {
	Topic     Topic     `json:"topic"`
	CompanyID string    `json:"company_id"`
	EntityID  string    `json:"entity_id,omitempty"`
	Kind      string    `json:"kind"` // e.g. "maturity_approved", "task_updated"
	At        time.Time `json:"at"`
}

type subscriber struct {
	id int
	ch chan Event
}

// Bus is a typed-topic fan-out with explicit subscribe/unsubscribe lifecycle
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Topic][]subscriber
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscriber)}
}

// Subscribe registers a buffered channel for a topic and returns it together
// with an unsubscribe func. Callers must unsubscribe on teardown.
func (b *Bus) Subscribe(topic Topic) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := subscriber{id: b.nextID, ch: make(chan Event, 16)}
	b.subs[topic] = append(b.subs[topic], sub)

	id := sub.id
	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[topic]
		for i, s := range list {
			if s.id == id {
				b.subs[topic] = append(list[:i], list[i+1:]...)
				close(s.ch)
				return
			}
		}
	}

	return sub.ch, unsubscribe
}

// Publish fans the event out to all current subscribers of its topic.
// A subscriber whose buffer is full misses the event.
func (b *Bus) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs[event.Topic] {
		select {
		case sub.ch <- event:
		default:
		}
	}
}
