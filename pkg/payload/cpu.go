package payload

// CPU is the message for the cpu stream. Details describe the installed
// processor and are sent on the first message of a subscription; Freq and
// Temp update every tick.
type CPU struct {
	Meta

	Details *CPUDetails `json:"details,omitempty"`

	// Freq maps "Core N" to the core's current frequency in MHz.
	Freq map[string]float64 `json:"freq,omitempty"`

	// Temp maps sensor names to degrees Celsius. The "package" key is
	// always present when the host exposes a package temperature sensor.
	Temp map[string]float64 `json:"temp,omitempty"`
}

// CPUDetails describes the processor hardware.
type CPUDetails struct {
	Vendor       string  `json:"vendor"`
	Model        string  `json:"model"`
	Architecture string  `json:"architecture"`
	Sockets      int     `json:"socket"`
	Cores        int     `json:"cores"`
	Threads      int     `json:"threads"`
	MinFreqMHz   float64 `json:"min_frequency"`
	MaxFreqMHz   float64 `json:"max_frequency"`
	TurboFreqMHz float64 `json:"turbo_frequency"`

	CacheSizes CPUCaches `json:"cache_sizes"`
}

// CPUCaches holds human-readable cache sizes as the kernel reports them
// (e.g. "32K", "512K", "16384K").
type CPUCaches struct {
	L1 string `json:"l1"`
	L2 string `json:"l2"`
	L3 string `json:"l3"`
}

// Kind returns KindCPU.
func (*CPU) Kind() Kind { return KindCPU }

// WithoutDetails returns a copy with the details section omitted.
func (c *CPU) WithoutDetails() Message {
	if c.Details == nil {
		return c
	}
	cp := *c
	cp.Details = nil
	return &cp
}
