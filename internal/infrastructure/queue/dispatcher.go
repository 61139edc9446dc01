package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/cyco/cyco-engine/internal/api/metrics"
	"github.com/cyco/cyco-engine/internal/core/domain"
	"github.com/cyco/cyco-engine/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes notifications to a fixed set of workers using consistent
// hashing on the sender handle, so each sender's notifications fan out in the
// order they arrived.
type Dispatcher struct {
	workers []chan domain.NotificationEvent
	fanout  ports.NotificationFanout
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, fanout ports.NotificationFanout, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.NotificationEvent, numWorkers),
		fanout:  fanout,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.NotificationEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands ev to the worker responsible for its sender. It blocks when
// that worker's buffer is full, applying backpressure to the sender's read
// loop, and gives up when ctx is done.
func (d *Dispatcher) Enqueue(ctx context.Context, ev domain.NotificationEvent) error {
	idx := d.shardIndex(ev.SenderID)
	select {
	case d.workers[idx] <- ev:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a sender handle deterministically to a worker index.
func (d *Dispatcher) shardIndex(senderID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(senderID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.NotificationEvent) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.fanout.Fanout(ctx, ev); err != nil {
				d.log.Error().Err(err).
					Str("sender_id", ev.SenderID).
					Int("worker_id", id).
					Msg("notification fan-out failed")
			}
		}
	}
}
