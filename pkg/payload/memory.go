package payload

// Memory is the message for the memory stream. All sections are per-tick.
type Memory struct {
	Meta

	Metrics *MemoryMetrics `json:"metrics,omitempty"`
}

// MemoryMetrics reports RAM and swap usage in bytes.
type MemoryMetrics struct {
	Memory MemoryUsage `json:"memory"`
	Swap   SwapUsage   `json:"swap"`
}

// MemoryUsage reports physical memory in bytes. Available differs from Free
// by including reclaimable cache.
type MemoryUsage struct {
	Total     uint64 `json:"total"`
	Used      uint64 `json:"used"`
	Free      uint64 `json:"free"`
	Available uint64 `json:"available"`
}

// SwapUsage reports swap space in bytes.
type SwapUsage struct {
	Total uint64 `json:"total"`
	Used  uint64 `json:"used"`
	Free  uint64 `json:"free"`
}

// Kind returns KindMemory.
func (*Memory) Kind() Kind { return KindMemory }

// WithoutDetails returns the message unchanged; memory has no detail section.
func (m *Memory) WithoutDetails() Message { return m }
