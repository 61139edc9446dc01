package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cyco/cyco-engine/internal/core/domain"
)

type recordingFanout struct {
	mu     sync.Mutex
	bySend map[string][]string
	total  int
	done   chan struct{}
	want   int
}

func newRecordingFanout(want int) *recordingFanout {
	return &recordingFanout{bySend: make(map[string][]string), done: make(chan struct{}), want: want}
}

func (f *recordingFanout) Fanout(_ context.Context, ev domain.NotificationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bySend[ev.SenderID] = append(f.bySend[ev.SenderID], string(ev.Payload))
	f.total++
	if f.total == f.want {
		close(f.done)
	}
	return nil
}

func TestDispatcher_PreservesPerSenderOrder(t *testing.T) {
	const perSender = 50
	senders := []string{"peer-a", "peer-b", "peer-c", "peer-d"}
	fanout := newRecordingFanout(perSender * len(senders))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(3, fanout, zerolog.Nop())
	d.Start(ctx)

	var wg sync.WaitGroup
	for _, s := range senders {
		wg.Add(1)
		go func(sender string) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				payload, _ := json.Marshal(i)
				if err := d.Enqueue(ctx, domain.NotificationEvent{SenderID: sender, Payload: payload}); err != nil {
					t.Errorf("enqueue: %v", err)
					return
				}
			}
		}(s)
	}
	wg.Wait()

	select {
	case <-fanout.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for fan-out")
	}

	fanout.mu.Lock()
	defer fanout.mu.Unlock()
	for _, s := range senders {
		got := fanout.bySend[s]
		if len(got) != perSender {
			t.Fatalf("sender %s: expected %d events, got %d", s, perSender, len(got))
		}
		for i, p := range got {
			if p != fmt.Sprint(i) {
				t.Fatalf("sender %s: event %d out of order (got %s)", s, i, p)
			}
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, newRecordingFanout(0), zerolog.Nop())

	first := d.shardIndex("peer-a")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("peer-a"); got != first {
			t.Fatalf("shard index changed: %d != %d", got, first)
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard index out of range: %d", first)
	}
}

func TestDispatcher_EnqueueHonoursContext(t *testing.T) {
	d := NewDispatcher(1, newRecordingFanout(0), zerolog.Nop())
	// Workers not started: fill the only buffer.
	ctx := context.Background()
	for i := 0; i < channelBuffer; i++ {
		if err := d.Enqueue(ctx, domain.NotificationEvent{SenderID: "s"}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if err := d.Enqueue(cctx, domain.NotificationEvent{SenderID: "s"}); err == nil {
		t.Fatal("expected context error on full buffer")
	}
}
