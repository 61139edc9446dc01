package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cyco/cyco-engine/internal/core/domain"
)

const notificationChannel = "cyco:notifications"

// relayMessage is the wire format on the notification channel.
type relayMessage struct {
	InstanceID string          `json:"instance_id"`
	Payload    json.RawMessage `json:"payload"`
}

// NotificationRelay carries notifications between gateway instances over
// Redis Pub/Sub. Messages published by this instance are ignored on receipt.
type NotificationRelay struct {
	client     *redis.Client
	instanceID string
	channel    string
	log        zerolog.Logger
}

// NewNotificationRelay creates a relay identified by instanceID.
func NewNotificationRelay(client *redis.Client, instanceID string, log zerolog.Logger) *NotificationRelay {
	return &NotificationRelay{
		client:     client,
		instanceID: instanceID,
		channel:    notificationChannel,
		log:        log,
	}
}

// Publish forwards ev to the other instances. The sender handle is local to
// this process and is not sent.
func (r *NotificationRelay) Publish(ctx context.Context, ev domain.NotificationEvent) error {
	data, err := json.Marshal(relayMessage{InstanceID: r.instanceID, Payload: ev.Payload})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Subscribe blocks, handing every notification from another instance to
// deliver, until ctx is cancelled.
func (r *NotificationRelay) Subscribe(ctx context.Context, deliver func(domain.NotificationEvent)) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if ev, ok := r.decode(msg.Payload); ok {
				deliver(ev)
			}
		}
	}
}

// decode parses a channel message, reporting false for malformed messages
// and for messages this instance published itself.
func (r *NotificationRelay) decode(raw string) (domain.NotificationEvent, bool) {
	var msg relayMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		r.log.Warn().Err(err).Msg("malformed relayed notification")
		return domain.NotificationEvent{}, false
	}
	if msg.InstanceID == r.instanceID {
		return domain.NotificationEvent{}, false
	}
	return domain.NotificationEvent{Payload: msg.Payload}, true
}
