package domain

import "encoding/json"

// Realtime event names.
const (
	EventSendNotification    = "send_notification"
	EventReceiveNotification = "receive_notification"
)

// NotificationEvent is a transient payload being fanned out. SenderID is the
// connection handle of the originating peer; it is empty for events relayed
// from another instance.
type NotificationEvent struct {
	SenderID string          `json:"sender_id,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}
