package payload

// GPU is the message for the gpu stream. Details is sent on the first
// message of a subscription and again whenever the probe state changes
// (driver loaded, device appeared); Metrics updates every tick. Hosts
// without a supported GPU stream empty messages.
type GPU struct {
	Meta

	// Details maps the device index ("0", "1", ...) to its description.
	Details map[string]GPUDetails `json:"details,omitempty"`

	// Metrics maps the device index to its current readings.
	Metrics map[string]GPUMetrics `json:"metrics,omitempty"`
}

// GPUDetails describes one GPU device.
type GPUDetails struct {
	Vendor        string  `json:"vendor"`
	Model         string  `json:"model"`
	UUID          string  `json:"uuid"`
	TotalVRAM     uint64  `json:"total_vram"`
	DriverVersion string  `json:"driver_version"`
	MinPowerW     float64 `json:"min_power"`
	MaxPowerW     float64 `json:"max_power"`
}

// GPUMetrics reports one device's live readings.
type GPUMetrics struct {
	GPUUtilization    float64 `json:"gpu_utilization"`
	MemoryUtilization float64 `json:"memory_utilization"`
	Temperature       float64 `json:"temperature"`
	MemoryUsed        uint64  `json:"memory_used"`
	PowerDraw         float64 `json:"power_draw"`
}

// Kind returns KindGPU.
func (*GPU) Kind() Kind { return KindGPU }

// WithoutDetails returns a copy with the details section omitted.
func (g *GPU) WithoutDetails() Message {
	if g.Details == nil {
		return g
	}
	cp := *g
	cp.Details = nil
	return &cp
}
