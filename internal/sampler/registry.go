package sampler

import (
	"context"
	"sync"
	"time"

	"github.com/k3y5tr0k3/sysmonify/internal/collector"
	"github.com/k3y5tr0k3/sysmonify/internal/hub"
	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// Options tunes the registry's loops and hubs.
type Options struct {
	// Interval is the sampling period; zero uses DefaultInterval.
	Interval time.Duration

	// Timeout bounds one collection pass; zero uses DefaultTimeout.
	Timeout time.Duration

	// Queue is the per-subscription hub queue depth; zero uses
	// hub.DefaultQueueDepth.
	Queue int

	Logger logger.Logger
}

// Registry owns the fixed set of loop/hub pairs, one per resource kind.
// It is created at startup and torn down once at shutdown; a stopped
// registry must not be restarted.
type Registry struct {
	log   logger.Logger
	kinds []payload.Kind
	hubs  map[payload.Kind]*hub.Hub
	loops []*Loop

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewRegistry builds a hub and a loop for every collector.
func NewRegistry(collectors []collector.Collector, opts Options) *Registry {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	r := &Registry{
		log:  log,
		hubs: make(map[payload.Kind]*hub.Hub, len(collectors)),
	}
	for _, col := range collectors {
		h := hub.New(col.Kind(), opts.Queue, log)
		r.kinds = append(r.kinds, col.Kind())
		r.hubs[col.Kind()] = h
		r.loops = append(r.loops, NewLoop(col, h, opts.Interval, opts.Timeout, log))
	}
	return r
}

// Kinds lists the registered resource kinds in construction order.
func (r *Registry) Kinds() []payload.Kind {
	kinds := make([]payload.Kind, len(r.kinds))
	copy(kinds, r.kinds)
	return kinds
}

// Hub returns the hub for a kind.
func (r *Registry) Hub(kind payload.Kind) (*hub.Hub, bool) {
	h, ok := r.hubs[kind]
	return h, ok
}

// Start launches every loop. Starting an already-running registry is a
// no-op.
func (r *Registry) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	ctx, r.cancel = context.WithCancel(ctx)
	for _, l := range r.loops {
		r.wg.Add(1)
		go func(l *Loop) {
			defer r.wg.Done()
			l.Run(ctx)
		}(l)
	}
	r.log.Debug("[sampler] %d loops started", len(r.loops))
}

// Stop cancels every loop, waits for in-flight passes to finish, and
// closes the hubs so subscriber channels drain and close. Safe to call
// more than once.
func (r *Registry) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.started = false
	cancel := r.cancel
	r.mu.Unlock()

	cancel()
	r.wg.Wait()

	for _, h := range r.hubs {
		h.Close()
	}
	r.log.Debug("[sampler] stopped")
}
