package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/k3y5tr0k3/sysmonify/internal/errors"
	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// Memory collects RAM and swap usage.
type Memory struct {
	log logger.Logger
}

// NewMemory creates the memory collector.
func NewMemory(log logger.Logger) *Memory {
	return &Memory{log: log}
}

// Kind returns payload.KindMemory.
func (m *Memory) Kind() payload.Kind {
	return payload.KindMemory
}

// Collect reads current memory and swap usage.
func (m *Memory) Collect(ctx context.Context) (payload.Message, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Reading memory usage failed")
	}

	msg := &payload.Memory{
		Metrics: &payload.MemoryMetrics{
			Memory: payload.MemoryUsage{
				Total:     vm.Total,
				Used:      vm.Used,
				Free:      vm.Free,
				Available: vm.Available,
			},
		},
	}

	// Hosts without swap report zeros; a read failure only loses the swap
	// section, not the pass.
	if sw, err := mem.SwapMemoryWithContext(ctx); err == nil {
		msg.Metrics.Swap = payload.SwapUsage{
			Total: sw.Total,
			Used:  sw.Used,
			Free:  sw.Free,
		}
	} else {
		m.log.Debug("[memory] swap read failed: %v", err)
	}

	return msg, nil
}
