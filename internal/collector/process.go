package collector

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/k3y5tr0k3/sysmonify/internal/errors"
	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// Process collects the process table. Process handles are cached across
// passes so CPU percentages measure the interval since the previous tick
// rather than the process lifetime.
type Process struct {
	log   logger.Logger
	limit int

	procs map[int32]*process.Process
}

// NewProcess creates the process collector. limit caps the table at the
// top N rows by CPU; zero means unlimited.
func NewProcess(log logger.Logger, limit int) *Process {
	return &Process{
		log:   log,
		limit: limit,
		procs: make(map[int32]*process.Process),
	}
}

// Kind returns payload.KindProcess.
func (p *Process) Kind() payload.Kind {
	return payload.KindProcess
}

// Collect scans the process table. Processes that vanish mid-scan are
// skipped silently; they are gone, which is not an error.
func (p *Process) Collect(ctx context.Context) (payload.Message, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Listing processes failed")
	}

	now := time.Now()
	live := make(map[int32]bool, len(pids))
	rows := make(map[string]payload.ProcessInfo, len(pids))

	for _, pid := range pids {
		live[pid] = true

		proc, ok := p.procs[pid]
		if !ok {
			proc, err = process.NewProcessWithContext(ctx, pid)
			if err != nil {
				continue
			}
			p.procs[pid] = proc
		}

		info, ok := p.readProcess(ctx, proc, now)
		if !ok {
			continue
		}
		rows[strconv.Itoa(int(pid))] = info
	}

	// Forget exited processes so handles do not accumulate.
	for pid := range p.procs {
		if !live[pid] {
			delete(p.procs, pid)
		}
	}

	msg := &payload.Process{Metrics: limitByCPU(rows, p.limit)}
	return msg, nil
}

// readProcess builds one table row. Any field read failing because the
// process exited aborts the row.
func (p *Process) readProcess(ctx context.Context, proc *process.Process, now time.Time) (payload.ProcessInfo, bool) {
	var info payload.ProcessInfo

	name, err := proc.NameWithContext(ctx)
	if err != nil {
		return info, false
	}
	info.Command = commandLine(ctx, proc, name)

	if user, err := proc.UsernameWithContext(ctx); err == nil && user != "" {
		info.User = user
	} else {
		info.User = "-"
	}

	// First observation of a pid measures since process start; subsequent
	// passes measure the tick interval thanks to the cached handle.
	if cpu, err := proc.CPUPercentWithContext(ctx); err == nil {
		info.CPU = cpu
	}
	if memPct, err := proc.MemoryPercentWithContext(ctx); err == nil {
		info.Memory = float64(memPct)
	}

	if created, err := proc.CreateTimeWithContext(ctx); err == nil {
		info.UpTime = formatUptime(now.Sub(time.UnixMilli(created)))
	}

	return info, true
}

// commandLine prefers the full command line; kernel threads have none and
// render as the bracketed thread name, the way top does.
func commandLine(ctx context.Context, proc *process.Process, name string) string {
	cmdline, err := proc.CmdlineWithContext(ctx)
	if err == nil {
		cmdline = strings.TrimSpace(cmdline)
		if cmdline != "" {
			return cmdline
		}
	}
	return "[" + name + "]"
}

// formatUptime renders a duration as HH:MM:SS, growing the hour field as
// needed.
func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// limitByCPU keeps the top n rows by CPU. Zero or negative n keeps all.
func limitByCPU(rows map[string]payload.ProcessInfo, n int) map[string]payload.ProcessInfo {
	if n <= 0 || len(rows) <= n {
		if len(rows) == 0 {
			return nil
		}
		return rows
	}

	type entry struct {
		pid  string
		info payload.ProcessInfo
	}
	entries := make([]entry, 0, len(rows))
	for pid, info := range rows {
		entries = append(entries, entry{pid, info})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].info.CPU != entries[j].info.CPU {
			return entries[i].info.CPU > entries[j].info.CPU
		}
		return entries[i].pid < entries[j].pid
	})

	kept := make(map[string]payload.ProcessInfo, n)
	for _, e := range entries[:n] {
		kept[e.pid] = e.info
	}
	return kept
}
