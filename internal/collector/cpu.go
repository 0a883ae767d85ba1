package collector

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// CPU collects processor details, per-core frequencies, and the package
// temperature.
type CPU struct {
	log     logger.Logger
	sysRoot string

	details *payload.CPUDetails
}

// NewCPU creates the cpu collector.
func NewCPU(log logger.Logger) *CPU {
	return &CPU{
		log:     log,
		sysRoot: "/sys",
	}
}

// Kind returns payload.KindCPU.
func (c *CPU) Kind() payload.Kind {
	return payload.KindCPU
}

// DetailsRev reports 1 once processor details have been read. CPU details
// never change at runtime.
func (c *CPU) DetailsRev() uint64 {
	if c.details == nil {
		return 0
	}
	return 1
}

// Collect reads the per-core frequencies and package temperature, building
// the static details on the first pass.
func (c *CPU) Collect(ctx context.Context) (payload.Message, error) {
	msg := &payload.CPU{}

	if c.details == nil {
		c.details = c.readDetails(ctx)
	}
	msg.Details = c.details

	msg.Freq = c.readFrequencies(ctx)
	msg.Temp = c.readTemperatures(ctx)

	return msg, nil
}

// readDetails assembles the static processor description. Individual
// sources failing leave their fields zero rather than failing the pass.
func (c *CPU) readDetails(ctx context.Context) *payload.CPUDetails {
	d := &payload.CPUDetails{}

	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		d.Vendor = infos[0].VendorID
		d.Model = infos[0].ModelName

		sockets := make(map[string]bool)
		for _, info := range infos {
			if info.PhysicalID != "" {
				sockets[info.PhysicalID] = true
			}
		}
		d.Sockets = len(sockets)
		if d.Sockets == 0 {
			d.Sockets = 1
		}
	} else if err != nil {
		c.log.Debug("[cpu] info read failed: %v", err)
	}

	if cores, err := cpu.CountsWithContext(ctx, false); err == nil {
		d.Cores = cores
	}
	if threads, err := cpu.CountsWithContext(ctx, true); err == nil {
		d.Threads = threads
	}

	if hi, err := host.InfoWithContext(ctx); err == nil {
		d.Architecture = hi.KernelArch
	}

	freqDir := filepath.Join(c.sysRoot, "devices/system/cpu/cpu0/cpufreq")
	d.MinFreqMHz = readKHzAsMHz(filepath.Join(freqDir, "cpuinfo_min_freq"))
	d.TurboFreqMHz = readKHzAsMHz(filepath.Join(freqDir, "cpuinfo_max_freq"))
	// base_frequency is the sustained (non-boost) ceiling where the driver
	// exposes one; otherwise the boost ceiling stands in for both.
	d.MaxFreqMHz = readKHzAsMHz(filepath.Join(freqDir, "base_frequency"))
	if d.MaxFreqMHz == 0 {
		d.MaxFreqMHz = d.TurboFreqMHz
	}

	d.CacheSizes = readCacheSizes(filepath.Join(c.sysRoot, "devices/system/cpu/cpu0/cache"))

	return d
}

// readFrequencies returns "Core N" -> current MHz. Prefers the cpufreq
// scaling files; hosts without cpufreq (VMs, containers) fall back to the
// frequencies gopsutil reads from /proc/cpuinfo.
func (c *CPU) readFrequencies(ctx context.Context) map[string]float64 {
	freqs := make(map[string]float64)

	pattern := filepath.Join(c.sysRoot, "devices/system/cpu/cpu[0-9]*/cpufreq/scaling_cur_freq")
	paths, _ := filepath.Glob(pattern)
	for _, p := range paths {
		mhz := readKHzAsMHz(p)
		if mhz == 0 {
			continue
		}
		core, ok := coreIndexFromPath(p)
		if !ok {
			continue
		}
		freqs[fmt.Sprintf("Core %d", core)] = mhz
	}

	if len(freqs) > 0 {
		return freqs
	}

	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		c.log.Debug("[cpu] frequency fallback failed: %v", err)
		return nil
	}
	for i, info := range infos {
		freqs[fmt.Sprintf("Core %d", i)] = info.Mhz
	}
	return freqs
}

// readTemperatures returns the package temperature when the host exposes
// one. Intel exposes coretemp package sensors, AMD exposes k10temp Tctl.
func (c *CPU) readTemperatures(ctx context.Context) map[string]float64 {
	sensors, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil {
		// Partial sensor failures still return the readable subset.
		c.log.Debug("[cpu] temperature sensors: %v", err)
	}
	return packageTemperature(sensors)
}

// packageTemperature picks the CPU package temperature out of the host's
// sensor list.
func packageTemperature(sensors []host.TemperatureStat) map[string]float64 {
	var pick *host.TemperatureStat
	for i := range sensors {
		key := strings.ToLower(sensors[i].SensorKey)
		if strings.Contains(key, "package") {
			pick = &sensors[i]
			break
		}
		if pick == nil && strings.Contains(key, "tctl") {
			pick = &sensors[i]
		}
	}
	if pick == nil || pick.Temperature == 0 {
		return nil
	}
	return map[string]float64{
		"package": math.Round(pick.Temperature*10) / 10,
	}
}

// readKHzAsMHz reads a sysfs frequency file expressed in kHz.
func readKHzAsMHz(path string) float64 {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	khz, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0
	}
	return khz / 1000
}

// coreIndexFromPath extracts N from .../cpuN/cpufreq/scaling_cur_freq.
func coreIndexFromPath(path string) (int, bool) {
	dir := filepath.Dir(filepath.Dir(path)) // .../cpuN
	name := filepath.Base(dir)
	if !strings.HasPrefix(name, "cpu") {
		return 0, false
	}
	n, err := strconv.Atoi(name[len("cpu"):])
	if err != nil {
		return 0, false
	}
	return n, true
}

// readCacheSizes reads the L1 data / L2 / L3 cache sizes from one core's
// cache index directories. Values stay in the kernel's human units.
func readCacheSizes(cacheDir string) payload.CPUCaches {
	var caches payload.CPUCaches

	indexes, err := filepath.Glob(filepath.Join(cacheDir, "index[0-9]*"))
	if err != nil || len(indexes) == 0 {
		return caches
	}
	sort.Strings(indexes)

	for _, idx := range indexes {
		level := strings.TrimSpace(readFileString(filepath.Join(idx, "level")))
		typ := strings.TrimSpace(readFileString(filepath.Join(idx, "type")))
		size := strings.TrimSpace(readFileString(filepath.Join(idx, "size")))
		if size == "" {
			continue
		}

		switch level {
		case "1":
			// Prefer the data cache; a unified L1 also qualifies.
			if caches.L1 == "" || typ == "Data" {
				caches.L1 = size
			}
		case "2":
			caches.L2 = size
		case "3":
			caches.L3 = size
		}
	}
	return caches
}

func readFileString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}
