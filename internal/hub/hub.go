// Package hub fans resource snapshots out from one sampler to any number of
// subscribers. Publishing never blocks: each subscription has a bounded
// queue, and when a slow consumer falls behind, its oldest queued snapshot
// is dropped to admit the newest. One stalled subscriber cannot delay the
// sampler or any other subscriber.
package hub

import (
	"sync"
	"sync/atomic"

	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// DefaultQueueDepth is the per-subscription queue capacity. Deep enough to
// absorb scheduling hiccups, shallow enough that a stalled viewer sees
// near-current data when it resumes.
const DefaultQueueDepth = 8

// Snapshot is one published unit: an immutable message plus the revision of
// its detail section. Subscribers compare DetailsRev against the last
// revision they rendered to decide whether details must be re-sent.
type Snapshot struct {
	Msg        payload.Message
	DetailsRev uint64
}

// Kind returns the resource kind of the wrapped message.
func (s *Snapshot) Kind() payload.Kind {
	return s.Msg.Kind()
}

// Seq returns the per-kind sequence number of the wrapped message.
func (s *Snapshot) Seq() uint64 {
	return s.Msg.Sequence()
}

// Subscription is one subscriber's handle on a hub.
type Subscription struct {
	ch      chan *Snapshot
	dropped atomic.Uint64
	closed  bool // guarded by the owning hub's mutex
}

// C returns the delivery channel. It is closed on unsubscribe.
func (s *Subscription) C() <-chan *Snapshot {
	return s.ch
}

// Dropped returns how many snapshots were evicted from this subscription's
// queue because the consumer fell behind.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// offer enqueues without blocking, evicting the oldest entry when full.
// Called only with the hub mutex held.
func (s *Subscription) offer(snap *Snapshot) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
		}
		select {
		case <-s.ch:
			s.dropped.Add(1)
		default:
		}
	}
}

// Stats reports a hub's delivery counters.
type Stats struct {
	Subscribers int
	Published   uint64
	Dropped     uint64
}

// Hub broadcasts one resource kind's snapshots.
type Hub struct {
	kind  payload.Kind
	queue int
	log   logger.Logger

	mu        sync.RWMutex
	subs      map[*Subscription]struct{}
	retained  *Snapshot
	closed    bool
	published uint64
	dropped   uint64 // evictions from subscriptions already gone
}

// New creates a hub for the given kind. queue is the per-subscription
// depth; values <= 0 use DefaultQueueDepth.
func New(kind payload.Kind, queue int, log logger.Logger) *Hub {
	if queue <= 0 {
		queue = DefaultQueueDepth
	}
	if log == nil {
		log = logger.Default()
	}
	return &Hub{
		kind:  kind,
		queue: queue,
		log:   log,
		subs:  make(map[*Subscription]struct{}),
	}
}

// Kind returns the resource kind this hub carries.
func (h *Hub) Kind() payload.Kind {
	return h.kind
}

// Publish delivers a snapshot to every subscription and retains it for
// future subscribers. It never blocks on slow consumers. Messages must not
// be mutated after publish.
func (h *Hub) Publish(snap *Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	h.retained = snap
	h.published++

	for sub := range h.subs {
		sub.offer(snap)
	}
}

// Subscribe registers a new subscription and immediately enqueues the
// retained snapshot so the subscriber renders without waiting a tick.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscription{ch: make(chan *Snapshot, h.queue)}
	if h.closed {
		// Late subscriber on a closed hub gets a closed channel rather
		// than one that never delivers.
		sub.closed = true
		close(sub.ch)
		return sub
	}

	h.subs[sub] = struct{}{}
	if h.retained != nil {
		sub.offer(h.retained)
	}

	h.log.Debug("[hub] %s: subscriber added (total %d)", h.kind, len(h.subs))
	return sub
}

// Unsubscribe removes a subscription and closes its channel. Safe to call
// more than once and with subscriptions the hub no longer tracks.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if sub.closed {
		return
	}
	delete(h.subs, sub)
	sub.closed = true
	close(sub.ch)
	h.dropped += sub.dropped.Load()

	h.log.Debug("[hub] %s: subscriber removed (total %d)", h.kind, len(h.subs))
}

// Retained returns the most recently published snapshot, if any.
func (h *Hub) Retained() *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.retained
}

// Stats returns current delivery counters.
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := h.dropped
	for sub := range h.subs {
		dropped += sub.dropped.Load()
	}
	return Stats{
		Subscribers: len(h.subs),
		Published:   h.published,
		Dropped:     dropped,
	}
}

// Close unsubscribes everyone and rejects future publishes. Used on
// shutdown so viewer pumps observe closed channels and exit.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		delete(h.subs, sub)
		sub.closed = true
		close(sub.ch)
		h.dropped += sub.dropped.Load()
	}
}
