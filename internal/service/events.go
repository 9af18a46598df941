package service

import (
	"context"
	"time"

	"github.com/planetaagua/storefront/internal/events"
	"github.com/planetaagua/storefront/pkg/logging"
)

// publish never fails the caller; a lost event is logged and forgotten.
func publish(ctx context.Context, pub events.Publisher, topic, key, typ string, payload any) {
	if pub == nil {
		return
	}
	ev := events.Event{Type: typ, OccurredAt: time.Now().UTC(), Payload: payload}
	if err := pub.Publish(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "type", typ, "error", err)
	}
}
