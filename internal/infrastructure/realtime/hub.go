// Package realtime relays ephemeral notifications between connected
// WebSocket peers.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cyco/cyco-engine/internal/api/metrics"
	"github.com/cyco/cyco-engine/internal/core/domain"
	"github.com/cyco/cyco-engine/internal/core/ports"
)

// Envelope is a named-event frame exchanged with peers.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Peer is a connected recipient. Send must not block; it reports false when
// the frame could not be queued.
type Peer interface {
	ID() string
	Send(frame []byte) bool
}

// Hub is the process-wide registry of connected peers.
type Hub struct {
	mu     sync.RWMutex
	peers  map[string]Peer
	closed bool
	relay  ports.NotificationRelay // optional
	log    zerolog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates an empty hub. relay may be nil for a single instance.
func NewHub(relay ports.NotificationRelay, log zerolog.Logger) *Hub {
	return &Hub{
		peers: make(map[string]Peer),
		relay: relay,
		log:   log,
		done:  make(chan struct{}),
	}
}

// Register adds p. It reports false once the hub has been closed.
func (h *Hub) Register(p Peer) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.peers[p.ID()] = p
	n := len(h.peers)
	h.mu.Unlock()

	metrics.NotificationPeers.Set(float64(n))
	h.log.Debug().Str("peer_id", p.ID()).Int("peers", n).Msg("peer registered")
	return true
}

// Close stops accepting peers and signals Done. Connected clients watch Done
// and hang up; each unregisters itself as it goes.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		n := len(h.peers)
		h.mu.Unlock()

		close(h.done)
		h.log.Info().Int("peers", n).Msg("notification hub closing")
	})
}

// Done is closed by Close.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Unregister removes the peer with id. Once it returns, the hub will not call
// Send on that peer again.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	_, ok := h.peers[id]
	delete(h.peers, id)
	n := len(h.peers)
	h.mu.Unlock()

	if ok {
		metrics.NotificationPeers.Set(float64(n))
		h.log.Debug().Str("peer_id", id).Int("peers", n).Msg("peer unregistered")
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// BroadcastExcludingSender delivers payload as a receive_notification frame
// to every registered peer except senderID and returns how many accepted it.
// Peers whose buffers are full are skipped.
func (h *Hub) BroadcastExcludingSender(senderID string, payload json.RawMessage) int {
	frame, err := json.Marshal(Envelope{Event: domain.EventReceiveNotification, Data: payload})
	if err != nil {
		h.log.Warn().Err(err).Str("sender_id", senderID).Msg("unencodable notification dropped")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, p := range h.peers {
		if id == senderID {
			continue
		}
		if p.Send(frame) {
			delivered++
			metrics.NotificationsDeliveredTotal.WithLabelValues("sent").Inc()
		} else {
			metrics.NotificationsDeliveredTotal.WithLabelValues("dropped").Inc()
			h.log.Warn().Str("peer_id", id).Msg("peer buffer full, notification dropped")
		}
	}
	return delivered
}

// Fanout delivers a locally originated notification to local peers and, when
// a relay is configured, to the other instances.
func (h *Hub) Fanout(ctx context.Context, ev domain.NotificationEvent) error {
	h.BroadcastExcludingSender(ev.SenderID, ev.Payload)
	if h.relay == nil {
		return nil
	}
	return h.relay.Publish(ctx, ev)
}

// DeliverRemote delivers a notification relayed from another instance. It
// has no local sender, so every local peer receives it.
func (h *Hub) DeliverRemote(ev domain.NotificationEvent) {
	h.BroadcastExcludingSender("", ev.Payload)
}
