package events

import (
	"sync"

	"github.com/gofrs/uuid"
)

type EventType string

const (
	TaskCreated EventType = "task.created"
	TaskUpdated EventType = "task.updated"
	TaskDeleted EventType = "task.deleted"
	TaskMissed  EventType = "task.missed"
)

type TaskEvent struct {
	Type   EventType
	TaskID uuid.UUID
	UserID string
}

type Handler func(TaskEvent)

type subscription struct {
	id      int
	handler Handler
}

// Bus is a small in-process publish/subscribe object. It replaces ambient
// broadcast with an explicit dependency: mutation paths publish, interested
// components (cache invalidation, future notifiers) subscribe. Delivery is
// synchronous and in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscription{id: id, handler: h})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		for i, sub := range b.subs {
			if sub.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				break
			}
		}
		b.mu.Unlock()
	}
}

func (b *Bus) Publish(evt TaskEvent) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.subs))
	for i, sub := range b.subs {
		handlers[i] = sub.handler
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(evt)
	}
}
