package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mindprince/gonvml"

	"github.com/k3y5tr0k3/sysmonify/internal/errors"
	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// DefaultGPURetryTicks is how many passes sit between NVML probe attempts
// while no device is available. Loading the driver shows up within half a
// minute at the standard 1s tick without hammering dlopen every second.
const DefaultGPURetryTicks = 30

// nvmlDevice is the per-device NVML surface the collector reads.
type nvmlDevice interface {
	Name() (string, error)
	UUID() (string, error)
	MemoryInfo() (uint64, uint64, error)
	UtilizationRates() (uint, uint, error)
	Temperature() (uint, error)
	PowerUsage() (uint, error)
}

// nvmlAPI abstracts the NVML entry points so the collector is testable on
// hosts without NVIDIA hardware.
type nvmlAPI interface {
	Initialize() error
	Shutdown() error
	SystemDriverVersion() (string, error)
	DeviceCount() (uint, error)
	DeviceHandleByIndex(i uint) (nvmlDevice, error)
}

// realNVML backs nvmlAPI with gonvml, which loads libnvidia-ml at runtime.
type realNVML struct{}

func (realNVML) Initialize() error                    { return gonvml.Initialize() }
func (realNVML) Shutdown() error                      { return gonvml.Shutdown() }
func (realNVML) SystemDriverVersion() (string, error) { return gonvml.SystemDriverVersion() }
func (realNVML) DeviceCount() (uint, error)           { return gonvml.DeviceCount() }

func (realNVML) DeviceHandleByIndex(i uint) (nvmlDevice, error) {
	dev, err := gonvml.DeviceHandleByIndex(i)
	if err != nil {
		return nil, err
	}
	return dev, nil
}

// GPU collects NVIDIA device details and live readings through NVML.
// Hosts without a supported device stream empty messages; the probe
// retries on a throttled cadence in case a driver appears later.
type GPU struct {
	log        logger.Logger
	nvml       nvmlAPI
	runCmd     func(ctx context.Context, name string, args ...string) ([]byte, error)
	retryTicks int

	available    bool
	ticksToRetry int
	details      map[string]payload.GPUDetails
	detailsRev   uint64
	vendorNote   bool
}

// NewGPU creates the gpu collector.
func NewGPU(log logger.Logger, retryTicks int) *GPU {
	if retryTicks <= 0 {
		retryTicks = DefaultGPURetryTicks
	}
	return &GPU{
		log:        log,
		nvml:       realNVML{},
		runCmd:     runCommand,
		retryTicks: retryTicks,
	}
}

// Kind returns payload.KindGPU.
func (g *GPU) Kind() payload.Kind {
	return payload.KindGPU
}

// DetailsRev changes whenever the probed device set changes.
func (g *GPU) DetailsRev() uint64 {
	return g.detailsRev
}

// Collect reads live metrics for every probed device. Probe passes that
// find no usable NVML report UNAVAILABLE; between probes the kind stays
// alive with empty messages.
func (g *GPU) Collect(ctx context.Context) (payload.Message, error) {
	msg := &payload.GPU{}

	if !g.available {
		if g.ticksToRetry > 0 {
			g.ticksToRetry--
			return msg, nil
		}
		if err := g.probe(ctx); err != nil {
			g.ticksToRetry = g.retryTicks
			return msg, err
		}
	}

	msg.Details = g.details
	msg.Metrics = g.readMetrics()

	return msg, nil
}

// probe initializes NVML and caches the device details.
func (g *GPU) probe(ctx context.Context) error {
	if err := g.nvml.Initialize(); err != nil {
		g.reportVendor(ctx)
		return errors.NewUnavailable("GPU", "Install the NVIDIA driver to enable GPU monitoring")
	}

	count, err := g.nvml.DeviceCount()
	if err != nil || count == 0 {
		_ = g.nvml.Shutdown()
		return errors.NewUnavailable("GPU", "NVML loaded but reported no devices")
	}

	driver, err := g.nvml.SystemDriverVersion()
	if err != nil {
		g.log.Debug("[gpu] driver version: %v", err)
	}

	limits := g.readPowerLimits(ctx)

	details := make(map[string]payload.GPUDetails, count)
	for i := uint(0); i < count; i++ {
		dev, err := g.nvml.DeviceHandleByIndex(i)
		if err != nil {
			g.log.Warn("[gpu] device %d handle: %v", i, err)
			continue
		}

		name, _ := dev.Name()
		uuid, _ := dev.UUID()
		total, _, _ := dev.MemoryInfo()

		key := strconv.Itoa(int(i))
		d := payload.GPUDetails{
			Vendor:        "NVIDIA Corporation",
			Model:         name,
			UUID:          uuid,
			TotalVRAM:     total,
			DriverVersion: driver,
		}
		if lim, ok := limits[key]; ok {
			d.MinPowerW = lim.min
			d.MaxPowerW = lim.max
		}
		details[key] = d
	}

	if len(details) == 0 {
		_ = g.nvml.Shutdown()
		return errors.NewUnavailable("GPU", "No NVML device handle could be opened")
	}

	g.available = true
	g.details = details
	g.detailsRev++
	g.log.Info("[gpu] monitoring %d NVIDIA device(s), driver %s", len(details), driver)
	return nil
}

// readMetrics reads live values for every cached device. An NVML call
// failing mid-run (driver unload, device reset) tears the probe down so
// the next pass starts over.
func (g *GPU) readMetrics() map[string]payload.GPUMetrics {
	out := make(map[string]payload.GPUMetrics, len(g.details))

	for key := range g.details {
		i, _ := strconv.Atoi(key)
		dev, err := g.nvml.DeviceHandleByIndex(uint(i))
		if err != nil {
			g.teardown()
			return nil
		}

		gpuUtil, memUtil, _ := dev.UtilizationRates()
		_, used, _ := dev.MemoryInfo()
		temp, _ := dev.Temperature()
		powerMw, _ := dev.PowerUsage()

		out[key] = payload.GPUMetrics{
			GPUUtilization:    float64(gpuUtil),
			MemoryUtilization: float64(memUtil),
			Temperature:       float64(temp),
			MemoryUsed:        used,
			PowerDraw:         float64(powerMw) / 1000,
		}
	}
	return out
}

// teardown drops the NVML session so the next pass re-probes.
func (g *GPU) teardown() {
	g.log.Warn("[gpu] NVML session lost, will re-probe")
	_ = g.nvml.Shutdown()
	g.available = false
	g.details = nil
	g.detailsRev++
	g.ticksToRetry = 0
}

// powerLimits holds one device's configured power range in watts.
type powerLimits struct {
	min float64
	max float64
}

// readPowerLimits queries nvidia-smi for the power limits NVML does not
// expose through gonvml. Missing nvidia-smi just leaves the fields zero.
func (g *GPU) readPowerLimits(ctx context.Context) map[string]powerLimits {
	out, err := g.runCmd(ctx, "nvidia-smi",
		"--query-gpu=index,power.min_limit,power.max_limit",
		"--format=csv,noheader,nounits")
	if err != nil {
		g.log.Debug("[gpu] power limits query failed: %v", err)
		return nil
	}
	return parsePowerLimits(string(out))
}

// parsePowerLimits parses "index, min, max" CSV lines. Values nvidia-smi
// cannot read arrive as "[N/A]" and are skipped.
func parsePowerLimits(out string) map[string]powerLimits {
	limits := make(map[string]powerLimits)

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			continue
		}

		idx := strings.TrimSpace(fields[0])
		minW, errMin := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		maxW, errMax := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if idx == "" || errMin != nil || errMax != nil {
			continue
		}
		limits[idx] = powerLimits{min: minW, max: maxW}
	}

	if len(limits) == 0 {
		return nil
	}
	return limits
}

// reportVendor logs which GPU vendor lspci sees, once, so a host with AMD
// or Intel graphics knows why the gpu stream is empty.
func (g *GPU) reportVendor(ctx context.Context) {
	if g.vendorNote {
		return
	}
	g.vendorNote = true

	out, err := g.runCmd(ctx, "lspci", "-nn")
	if err != nil {
		return
	}

	vendor := detectGPUVendor(string(out))
	switch vendor {
	case "NVIDIA":
		g.log.Info("[gpu] NVIDIA device present but NVML failed to load; is the driver installed?")
	case "":
		g.log.Info("[gpu] no discrete GPU detected")
	default:
		g.log.Info("[gpu] %s GPU detected; only NVIDIA devices are monitored", vendor)
	}
}

// detectGPUVendor scans lspci output for display controllers.
func detectGPUVendor(lspci string) string {
	for _, line := range strings.Split(lspci, "\n") {
		if !strings.Contains(line, " VGA ") && !strings.Contains(line, " 3D ") &&
			!strings.Contains(line, "VGA compatible") && !strings.Contains(line, "3D controller") {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "nvidia"):
			return "NVIDIA"
		case strings.Contains(lower, "amd"), strings.Contains(lower, "ati"):
			return "AMD"
		case strings.Contains(lower, "intel"):
			return "Intel"
		}
	}
	return ""
}

// String describes the collector state for diagnostics.
func (g *GPU) String() string {
	if !g.available {
		return fmt.Sprintf("gpu(unavailable, retry in %d ticks)", g.ticksToRetry)
	}
	return fmt.Sprintf("gpu(%d devices)", len(g.details))
}
