package hub

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

func snap(seq uint64) *Snapshot {
	msg := &payload.Memory{
		Metrics: &payload.MemoryMetrics{Memory: payload.MemoryUsage{Total: 8 << 30}},
	}
	msg.SetMeta(seq, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(seq)*time.Second))
	return &Snapshot{Msg: msg, DetailsRev: 1}
}

func TestSubscribeReceivesPublishesInOrder(t *testing.T) {
	h := New(payload.KindMemory, 8, logger.Noop())
	sub := h.Subscribe()

	for i := 1; i <= 3; i++ {
		h.Publish(snap(uint64(i)))
	}

	for want := uint64(1); want <= 3; want++ {
		got := <-sub.C()
		assert.Equal(t, want, got.Seq())
	}
}

func TestSubscribeDeliversRetainedSnapshotImmediately(t *testing.T) {
	h := New(payload.KindMemory, 8, logger.Noop())

	h.Publish(snap(41))
	h.Publish(snap(42))

	sub := h.Subscribe()

	select {
	case got := <-sub.C():
		assert.Equal(t, uint64(42), got.Seq(), "late subscriber gets the most recent snapshot")
	default:
		t.Fatal("retained snapshot should be queued at subscribe time")
	}
}

func TestSlowSubscriberDropsOldestKeepsNewest(t *testing.T) {
	h := New(payload.KindMemory, 2, logger.Noop())
	sub := h.Subscribe()

	// Nobody reads: queue (cap 2) overflows on the 3rd publish.
	for i := 1; i <= 5; i++ {
		h.Publish(snap(uint64(i)))
	}

	first := <-sub.C()
	second := <-sub.C()
	assert.Equal(t, uint64(4), first.Seq(), "oldest snapshots were evicted")
	assert.Equal(t, uint64(5), second.Seq(), "newest snapshot survives")
	assert.Equal(t, uint64(3), sub.Dropped())

	select {
	case extra := <-sub.C():
		t.Fatalf("queue should be empty, got seq %d", extra.Seq())
	default:
	}
}

func TestSlowSubscriberDoesNotStallFastOne(t *testing.T) {
	h := New(payload.KindMemory, 2, logger.Noop())

	slow := h.Subscribe()
	fast := h.Subscribe()

	received := make(chan uint64, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for s := range fast.C() {
			received <- s.Seq()
		}
	}()

	const publishes = 20
	done := make(chan struct{})
	go func() {
		for i := 1; i <= publishes; i++ {
			h.Publish(snap(uint64(i)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publisher blocked by a stalled subscriber")
	}

	h.Close()
	wg.Wait()
	close(received)

	var got []uint64
	for seq := range received {
		got = append(got, seq)
	}
	// The fast reader drains continuously; it may still race the last few
	// publishes, but it must have observed a strictly increasing sequence.
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i], got[i-1], "sequence must increase")
	}
	assert.Greater(t, slow.Dropped(), uint64(0), "stalled subscriber queue must have dropped")
}

func TestUnsubscribeClosesChannelAndIsIdempotent(t *testing.T) {
	h := New(payload.KindMemory, 4, logger.Noop())
	sub := h.Subscribe()

	h.Unsubscribe(sub)
	_, open := <-sub.C()
	assert.False(t, open, "channel must be closed after unsubscribe")

	// Second unsubscribe must not panic (double close).
	h.Unsubscribe(sub)
	h.Unsubscribe(nil)

	// Publishing after unsubscribe must not panic either.
	h.Publish(snap(1))
	assert.Equal(t, 0, h.Stats().Subscribers)
}

func TestUnsubscribeLeavesOthersAttached(t *testing.T) {
	h := New(payload.KindMemory, 4, logger.Noop())

	dead := h.Subscribe()
	alive := h.Subscribe()

	h.Unsubscribe(dead)
	h.Publish(snap(9))

	got := <-alive.C()
	assert.Equal(t, uint64(9), got.Seq())
	assert.Equal(t, 1, h.Stats().Subscribers)
}

func TestHubStats(t *testing.T) {
	h := New(payload.KindMemory, 1, logger.Noop())
	sub := h.Subscribe()

	h.Publish(snap(1))
	h.Publish(snap(2)) // evicts seq 1 from the cap-1 queue

	stats := h.Stats()
	assert.Equal(t, 1, stats.Subscribers)
	assert.Equal(t, uint64(2), stats.Published)
	assert.Equal(t, uint64(1), stats.Dropped)

	// Drop counts survive the subscriber leaving.
	h.Unsubscribe(sub)
	assert.Equal(t, uint64(1), h.Stats().Dropped)
}

func TestCloseUnsubscribesEveryone(t *testing.T) {
	h := New(payload.KindMemory, 4, logger.Noop())

	a := h.Subscribe()
	b := h.Subscribe()

	h.Close()

	_, openA := <-a.C()
	_, openB := <-b.C()
	assert.False(t, openA)
	assert.False(t, openB)

	// Subscribing after close yields an already-closed channel.
	late := h.Subscribe()
	_, openLate := <-late.C()
	assert.False(t, openLate)

	// And publishing after close is a no-op.
	h.Publish(snap(3))
	assert.Nil(t, h.Retained())
}

func TestConcurrentSubscribeUnsubscribePublish(t *testing.T) {
	h := New(payload.KindMemory, 2, logger.Noop())

	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		seq := uint64(0)
		for {
			select {
			case <-stop:
				return
			default:
				seq++
				h.Publish(snap(seq))
			}
		}
	}()

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sub := h.Subscribe()
				// Drain a little, then leave.
				select {
				case <-sub.C():
				default:
				}
				h.Unsubscribe(sub)
			}
		}()
	}

	// Let the churn run briefly, then stop the publisher.
	time.Sleep(50 * time.Millisecond)
	close(stop)
	wg.Wait()

	h.Close()
	assert.Equal(t, 0, h.Stats().Subscribers)
}
