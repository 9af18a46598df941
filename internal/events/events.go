package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

const (
	TopicUsers  = "user_events"
	TopicOrders = "order_events"

	UserRegistered      = "user_registered"
	OrderCreated        = "order_created"
	OrderRolledBack     = "order_rolled_back"
	OrderOrphaned       = "order_orphaned"
	OrderPaymentUpdated = "order_payment_updated"
)

type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, ev Event) error
	Close() error
}

func encode(ev Event) ([]byte, error) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("events: marshal %s: %w", ev.Type, err)
	}
	return data, nil
}

// Noop drops every event; used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, string, Event) error { return nil }
func (Noop) Close() error                                        { return nil }

type Recorded struct {
	Topic string
	Key   string
	Event Event
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
	Err    error
}

func (r *Recorder) Publish(_ context.Context, topic, key string, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, Recorded{Topic: topic, Key: key, Event: ev})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.events...)
}

// Types returns the event types in publish order.
func (r *Recorder) Types() []string {
	var out []string
	for _, e := range r.Events() {
		out = append(out, e.Event.Type)
	}
	return out
}
