package events

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"github.com/mezonai/token/logx"
	"github.com/mezonai/token/monitoring"
)

type SubscriberID string

// Handler receives transfer notifications on the publisher's goroutine.
type Handler func(event *TransferApplied)

type Subscriber struct {
	ID      SubscriberID
	handler Handler
}

// EventBus delivers each published event to every subscriber synchronously, in
// subscription order.
type EventBus struct {
	subscribers []*Subscriber
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{}
}

func (eb *EventBus) generateUUIDID() SubscriberID {
	id := uuid.Must(uuid.NewV7())
	return SubscriberID(id.String())
}

// Subscribe registers handler and returns its id
func (eb *EventBus) Subscribe(handler Handler) SubscriberID {
	if handler == nil {
		panic("events: nil handler")
	}

	eb.mu.Lock()
	defer eb.mu.Unlock()

	id := eb.generateUUIDID()
	eb.subscribers = append(eb.subscribers, &Subscriber{ID: id, handler: handler})
	monitoring.SetSubscriberCount(len(eb.subscribers))

	logx.Info("EVENTBUS", fmt.Sprintf("Subscribed to transfer events | subscriber_id=%s | total_subscribers=%d", id, len(eb.subscribers)))
	return id
}

// Unsubscribe removes a subscription by ID
func (eb *EventBus) Unsubscribe(id SubscriberID) bool {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for i, s := range eb.subscribers {
		if s.ID != id {
			continue
		}
		eb.subscribers = append(eb.subscribers[:i:i], eb.subscribers[i+1:]...)
		monitoring.SetSubscriberCount(len(eb.subscribers))
		logx.Info("EVENTBUS", fmt.Sprintf("Unsubscribed from transfer events | subscriber_id=%s | remaining_subscribers=%d", id, len(eb.subscribers)))
		return true
	}

	logx.Warn("EVENTBUS", fmt.Sprintf("Attempted to unsubscribe non-existent subscriber | subscriber_id=%s", id))
	return false
}

// Publish hands event to every subscriber before returning. Handlers run outside the
// bus lock, so they may subscribe or unsubscribe; such changes apply from the next event.
func (eb *EventBus) Publish(event *TransferApplied) {
	eb.mu.RLock()
	subscribers := eb.subscribers
	eb.mu.RUnlock()

	if len(subscribers) == 0 {
		logx.Debug("EVENTBUS", fmt.Sprintf("No subscribers for event | event_type=%s | seq=%d", event.Type(), event.Sequence()))
		return
	}

	for _, s := range subscribers {
		deliver(s, event)
	}
}

// deliver isolates subscribers from each other: a panicking handler is logged and
// the remaining subscribers still receive the event.
func deliver(s *Subscriber, event *TransferApplied) {
	defer func() {
		if r := recover(); r != nil {
			monitoring.IncreasePanicCount()
			logx.Error("EVENTBUS", fmt.Sprintf("Subscriber panicked | subscriber_id=%s | seq=%d | err=%v\n%s", s.ID, event.Sequence(), r, debug.Stack()))
		}
	}()
	s.handler(event)
}

// GetTotalSubscriptions returns the total number of active subscriptions
func (eb *EventBus) GetTotalSubscriptions() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	return len(eb.subscribers)
}

// GetSubscriberIDs returns active subscriber IDs in delivery order
func (eb *EventBus) GetSubscriberIDs() []SubscriberID {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	ids := make([]SubscriberID, 0, len(eb.subscribers))
	for _, s := range eb.subscribers {
		ids = append(ids, s.ID)
	}
	return ids
}

// HasSubscriber checks if a subscriber with the given ID exists
func (eb *EventBus) HasSubscriber(id SubscriberID) bool {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, s := range eb.subscribers {
		if s.ID == id {
			return true
		}
	}
	return false
}
