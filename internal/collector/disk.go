package collector

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/internal/metrics"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// lsblkColumns is the column set requested from lsblk, matching the fields
// of payload.BlockDevice.
const lsblkColumns = "NAME,LABEL,TYPE,SERIAL,SIZE,MOUNTPOINT,VENDOR,MODEL,PATH,PARTN,PARTTYPENAME,FSTYPE,FSVER,TRAN,PTTYPE,UUID,ROTA"

// Disk collects block-device topology and per-disk throughput.
type Disk struct {
	log     logger.Logger
	sysRoot string
	runCmd  func(ctx context.Context, name string, args ...string) ([]byte, error)

	reads  *metrics.CounterSet
	writes *metrics.CounterSet
	smooth map[string]*diskSmoother

	lsblkBroken bool
}

type diskSmoother struct {
	read  *metrics.EMA
	write *metrics.EMA
}

// NewDisk creates the disk collector.
func NewDisk(log logger.Logger) *Disk {
	return &Disk{
		log:     log,
		sysRoot: "/sys",
		runCmd:  runCommand,
		reads:   metrics.NewCounterSet(),
		writes:  metrics.NewCounterSet(),
		smooth:  make(map[string]*diskSmoother),
	}
}

// Kind returns payload.KindDisk.
func (d *Disk) Kind() payload.Kind {
	return payload.KindDisk
}

// Collect reads the device tree and derives smoothed throughput per
// physical disk.
func (d *Disk) Collect(ctx context.Context) (payload.Message, error) {
	msg := &payload.Disk{}

	msg.Disks = d.readTopology(ctx)
	msg.Speeds = d.readSpeeds(ctx, time.Now())

	return msg, nil
}

// readTopology shells out to lsblk for the device tree. A host without
// lsblk loses the topology section, never the pass; the failure is logged
// once, not every second.
func (d *Disk) readTopology(ctx context.Context) []payload.BlockDevice {
	if d.lsblkBroken {
		return nil
	}

	out, err := d.runCmd(ctx, "lsblk", "--json", "--bytes", "--output", lsblkColumns)
	if err != nil {
		d.lsblkBroken = true
		d.log.Warn("[disk] lsblk unavailable, topology disabled: %v", err)
		return nil
	}

	devices, err := parseLsblk(out)
	if err != nil {
		d.log.Debug("[disk] lsblk parse failed: %v", err)
		return nil
	}

	physical := devices[:0]
	for _, dev := range devices {
		if dev.Type == "disk" && d.isPhysical(dev.Name) {
			physical = append(physical, dev)
		}
	}
	return physical
}

// parseLsblk decodes lsblk --json output. Vendor and model fields arrive
// space-padded and are trimmed in place.
func parseLsblk(out []byte) ([]payload.BlockDevice, error) {
	var doc struct {
		BlockDevices []payload.BlockDevice `json:"blockdevices"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, err
	}

	var trim func(devs []payload.BlockDevice)
	trim = func(devs []payload.BlockDevice) {
		for i := range devs {
			devs[i].Vendor = strings.TrimSpace(devs[i].Vendor)
			devs[i].Model = strings.TrimSpace(devs[i].Model)
			devs[i].Serial = strings.TrimSpace(devs[i].Serial)
			trim(devs[i].Children)
		}
	}
	trim(doc.BlockDevices)

	return doc.BlockDevices, nil
}

// isPhysical reports whether a block device is backed by hardware. Virtual
// devices (loop, ram, device-mapper) resolve under /sys/devices/virtual.
func (d *Disk) isPhysical(name string) bool {
	link := filepath.Join(d.sysRoot, "block", name)
	resolved, err := filepath.EvalSymlinks(link)
	if err != nil {
		return false
	}
	return !strings.Contains(resolved, "/virtual/")
}

// readSpeeds derives MB/s per physical disk from the kernel's cumulative
// I/O counters, smoothing each series so bursty writes render readably.
func (d *Disk) readSpeeds(ctx context.Context, now time.Time) map[string]payload.DiskSpeed {
	counters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		d.log.Debug("[disk] io counters failed: %v", err)
		return nil
	}

	speeds := make(map[string]payload.DiskSpeed)
	live := make(map[string]bool)

	for name, io := range counters {
		if !d.isPhysical(name) {
			continue
		}
		live[name] = true

		readBps := d.reads.Update(name, float64(io.ReadBytes), now)
		writeBps := d.writes.Update(name, float64(io.WriteBytes), now)
		if d.reads.Rebased(name) || d.writes.Rebased(name) {
			d.log.Debug("[disk] %s io counters went backwards, rebasing", name)
		}

		sm, ok := d.smooth[name]
		if !ok {
			sm = &diskSmoother{
				read:  metrics.NewEMA(metrics.DiskSpeedSmoothing),
				write: metrics.NewEMA(metrics.DiskSpeedSmoothing),
			}
			d.smooth[name] = sm
		}

		speeds[name] = payload.DiskSpeed{
			ReadSpeed:  sm.read.Update(readBps / (1024 * 1024)),
			WriteSpeed: sm.write.Update(writeBps / (1024 * 1024)),
		}
	}

	d.reads.Prune(live)
	d.writes.Prune(live)
	for name := range d.smooth {
		if !live[name] {
			delete(d.smooth, name)
		}
	}

	if len(speeds) == 0 {
		return nil
	}
	return speeds
}
