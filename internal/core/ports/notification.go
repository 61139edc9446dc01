package ports

import (
	"context"

	"github.com/cyco/cyco-engine/internal/core/domain"
)

// NotificationFanout delivers a notification to every connected peer except
// its sender.
type NotificationFanout interface {
	Fanout(ctx context.Context, ev domain.NotificationEvent) error
}

// NotificationRelay forwards notifications to gateway instances other than
// this one.
type NotificationRelay interface {
	Publish(ctx context.Context, ev domain.NotificationEvent) error
}
