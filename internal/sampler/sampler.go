// Package sampler drives the per-kind collection loops. Each Loop owns one
// collector and one hub: it samples on a fixed cadence, stamps sequence
// metadata, and publishes the result. Loops share nothing, so a stalled
// sensor in one kind never delays another kind's pipeline.
package sampler

import (
	"context"
	"time"

	"github.com/k3y5tr0k3/sysmonify/internal/collector"
	"github.com/k3y5tr0k3/sysmonify/internal/errors"
	"github.com/k3y5tr0k3/sysmonify/internal/hub"
	"github.com/k3y5tr0k3/sysmonify/internal/logger"
)

const (
	// DefaultInterval is the sampling period per resource kind.
	DefaultInterval = time.Second

	// DefaultTimeout bounds a single collection pass. A pass that hangs
	// past this is abandoned and its error handled like any other failure.
	DefaultTimeout = 5 * time.Second
)

// Loop runs one resource kind's sample/publish cycle.
type Loop struct {
	col      collector.Collector
	hub      *hub.Hub
	interval time.Duration
	timeout  time.Duration
	log      logger.Logger

	seq uint64
}

// NewLoop creates a loop for one collector/hub pair. Non-positive interval
// or timeout fall back to the defaults.
func NewLoop(col collector.Collector, h *hub.Hub, interval, timeout time.Duration, log logger.Logger) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Default()
	}
	return &Loop{
		col:      col,
		hub:      h,
		interval: interval,
		timeout:  timeout,
		log:      log,
	}
}

// Run drives the loop until ctx is cancelled. The first pass fires
// immediately; every later pass is scheduled relative to the previous
// pass's completion, so an overrunning collector stretches the cadence
// instead of stacking overlapping passes.
func (l *Loop) Run(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		l.pass(ctx)
		timer.Reset(l.interval)
	}
}

// pass runs one collection and publishes its snapshot. A failing pass
// republishes the previous snapshot instead, so viewers keep rendering the
// last good value rather than seeing the stream go silent.
func (l *Loop) pass(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	msg, err := l.col.Collect(cctx)
	if err != nil {
		if errors.IsUnavailable(err) {
			l.log.Debug("[sampler] %s: %v", l.col.Kind(), err)
		} else {
			l.log.Warn("[sampler] %s pass failed: %v", l.col.Kind(), err)
		}
		if prev := l.hub.Retained(); prev != nil {
			l.hub.Publish(prev)
		}
		return
	}

	l.seq++
	msg.SetMeta(l.seq, time.Now())

	snap := &hub.Snapshot{Msg: msg}
	if v, ok := l.col.(collector.DetailsVersioner); ok {
		snap.DetailsRev = v.DetailsRev()
	}
	l.hub.Publish(snap)
}
