// Package collector reads instantaneous host state, one collector per
// resource kind. Collectors own the counter baselines the rate engine
// needs between passes, so each instance must only ever be driven by a
// single goroutine (its sampler loop).
package collector

import (
	"context"

	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// Collector produces one resource kind's message per sampling pass.
//
// Collect must respect ctx and return promptly on cancellation. Absent
// hardware is not a failure: collectors return an empty message, or an
// error with code UNAVAILABLE on probe passes, and must never panic.
type Collector interface {
	Kind() payload.Kind
	Collect(ctx context.Context) (payload.Message, error)
}

// DetailsVersioner is implemented by collectors whose messages carry a
// connect-time details section. The revision changes when the details
// content changes, letting the transport skip re-sending static data.
type DetailsVersioner interface {
	DetailsRev() uint64
}

// Options tunes collector construction.
type Options struct {
	// ProcessLimit caps the process table at the top N rows by CPU.
	// Zero means unlimited.
	ProcessLimit int

	// GPURetryTicks is how many passes to wait between GPU probe attempts
	// while no device is available. Zero uses DefaultGPURetryTicks.
	GPURetryTicks int

	Logger logger.Logger
}

// All constructs the full fixed set of collectors in stable kind order.
func All(opts Options) []Collector {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	return []Collector{
		NewCPU(log),
		NewMemory(log),
		NewDisk(log),
		NewNetwork(log),
		NewGPU(log, opts.GPURetryTicks),
		NewProcess(log, opts.ProcessLimit),
	}
}

