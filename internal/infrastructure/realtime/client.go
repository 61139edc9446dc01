package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/cyco/cyco-engine/internal/core/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512KB
	sendBuffer     = 256
)

// Enqueuer accepts inbound notifications for ordered fan-out.
type Enqueuer interface {
	Enqueue(ctx context.Context, ev domain.NotificationEvent) error
}

// Client is a single WebSocket peer.
type Client struct {
	id    string
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	queue Enqueuer
	log   zerolog.Logger
}

// NewClient wraps conn with a fresh connection handle.
func NewClient(hub *Hub, conn *websocket.Conn, queue Enqueuer, log zerolog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:    id,
		hub:   hub,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		queue: queue,
		log:   log.With().Str("peer_id", id).Logger(),
	}
}

func (c *Client) ID() string { return c.id }

// Send queues frame without blocking.
func (c *Client) Send(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Run registers the client and serves the connection until it closes or the
// hub shuts down. It blocks for the lifetime of the connection.
func (c *Client) Run(ctx context.Context) {
	if !c.hub.Register(c) {
		c.goingAway()
		return
	}
	go c.WritePump()

	stop := make(chan struct{})
	go func() {
		select {
		case <-c.hub.Done():
			c.goingAway()
		case <-stop:
		}
	}()

	c.ReadPump(ctx)
	close(stop)
}

// goingAway sends a 1001 close frame and drops the connection, which ends
// ReadPump.
func (c *Client) goingAway() {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = c.conn.Close()
}

// ReadPump reads frames from the connection and enqueues notifications. On
// exit it unregisters the client and closes its send channel, which stops
// WritePump.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c.id)
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.log.Warn().Err(err).Msg("invalid frame")
			continue
		}
		if env.Event != domain.EventSendNotification {
			c.log.Debug().Str("event", env.Event).Msg("ignoring unknown event")
			continue
		}

		ev := domain.NotificationEvent{SenderID: c.id, Payload: env.Data}
		if err := c.queue.Enqueue(ctx, ev); err != nil {
			return
		}
	}
}

// WritePump writes queued frames and keepalive pings to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Warn().Err(err).Msg("websocket write error")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
