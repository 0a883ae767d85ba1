// Package session holds one viewer's local view state: rolling history
// windows, the selected instance per resource kind, and table filter/sort
// criteria. All of it is presentation-local. A Session belongs to exactly
// one consumer goroutine and is not safe for concurrent use; hubs own the
// cross-goroutine hand-off, sessions own what happens after delivery.
package session

import (
	"sort"
	"strconv"
	"strings"

	"github.com/k3y5tr0k3/sysmonify/internal/metrics"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// Series names for the windows a session maintains. Per-core frequency
// series are addressed through FreqSeries.
const (
	SeriesCPUTemp   = "cpu.temp"
	SeriesMemory    = "memory.used"
	SeriesSwap      = "swap.used"
	SeriesDiskRead  = "disk.read"
	SeriesDiskWrite = "disk.write"
	SeriesNetRx     = "network.rx"
	SeriesNetTx     = "network.tx"
	SeriesGPUUtil   = "gpu.utilization"
	SeriesGPUTemp   = "gpu.temp"
	SeriesGPUMemory = "gpu.memory"
	SeriesGPUPower  = "gpu.power"
)

// FreqSeries names the rolling window for one core's frequency.
func FreqSeries(core string) string {
	return "cpu.freq." + core
}

// Filter is a single column/value equality filter on a table kind.
type Filter struct {
	Column string
	Value  string
}

// Sort orders a table by one column.
type Sort struct {
	Column     string
	Descending bool
}

// Session is one viewer's state across all resource kinds.
type Session struct {
	latest     map[payload.Kind]payload.Message
	selected   map[payload.Kind]string
	windows    map[payload.Kind]map[string]*metrics.RollingWindow
	filters    map[payload.Kind]*Filter
	sorts      map[payload.Kind]*Sort
	points     int
	corePoints int
}

// New creates an empty session: no history, default instances, no filters.
func New() *Session {
	return NewSized(metrics.DefaultWindowPoints, metrics.DefaultCoreWindowPoints)
}

// NewSized creates an empty session with explicit window capacities:
// points for per-second series, corePoints for per-core frequency.
// Values below 1 take the defaults.
func NewSized(points, corePoints int) *Session {
	if points < 1 {
		points = metrics.DefaultWindowPoints
	}
	if corePoints < 1 {
		corePoints = metrics.DefaultCoreWindowPoints
	}
	return &Session{
		latest:     make(map[payload.Kind]payload.Message),
		selected:   make(map[payload.Kind]string),
		windows:    make(map[payload.Kind]map[string]*metrics.RollingWindow),
		filters:    make(map[payload.Kind]*Filter),
		sorts:      make(map[payload.Kind]*Sort),
		points:     points,
		corePoints: corePoints,
	}
}

// Apply folds one delivered message into the session: the latest snapshot
// reference is replaced and the kind's rolling windows are extended with
// the values scoped to the currently selected instance.
func (s *Session) Apply(msg payload.Message) {
	if msg == nil {
		return
	}
	s.latest[msg.Kind()] = msg

	switch m := msg.(type) {
	case *payload.CPU:
		s.applyCPU(m)
	case *payload.Memory:
		s.applyMemory(m)
	case *payload.Disk:
		s.applyDisk(m)
	case *payload.Network:
		s.applyNetwork(m)
	case *payload.GPU:
		s.applyGPU(m)
	}
}

// Latest returns the most recently applied message for a kind, or nil.
func (s *Session) Latest(kind payload.Kind) payload.Message {
	return s.latest[kind]
}

// Series returns a window's values in chronological order, oldest first.
func (s *Session) Series(kind payload.Kind, name string) []float64 {
	if w := s.windows[kind][name]; w != nil {
		return w.Values()
	}
	return nil
}

// SeriesLatest returns the newest point of a window, if it has one.
func (s *Session) SeriesLatest(kind payload.Kind, name string) (metrics.Point, bool) {
	if w := s.windows[kind][name]; w != nil {
		return w.Latest()
	}
	return metrics.Point{}, false
}

// SelectInstance chooses which instance of a kind the windows track.
// Switching instances resets this kind's windows and no other kind's:
// history recorded for one disk must not seed the chart of another.
func (s *Session) SelectInstance(kind payload.Kind, id string) {
	if s.SelectedInstance(kind) == id {
		s.selected[kind] = id
		return
	}
	s.selected[kind] = id
	delete(s.windows, kind)
}

// SelectedInstance returns the effective instance for a kind: the explicit
// selection if one was made, otherwise the first enumerated instance of
// the latest snapshot.
func (s *Session) SelectedInstance(kind payload.Kind) string {
	if id := s.selected[kind]; id != "" {
		return id
	}
	instances := s.Instances(kind)
	if len(instances) == 0 {
		return ""
	}
	return instances[0]
}

// Instances lists the selectable instances of a kind from the latest
// snapshot, in display order. Disks keep topology order; interfaces sort
// lexically; GPU indexes sort numerically.
func (s *Session) Instances(kind payload.Kind) []string {
	var keys []string

	switch m := s.latest[kind].(type) {
	case *payload.Disk:
		if len(m.Disks) > 0 {
			for _, d := range m.Disks {
				keys = append(keys, d.Name)
			}
			return keys
		}
		for name := range m.Speeds {
			keys = append(keys, name)
		}
		sort.Strings(keys)
	case *payload.Network:
		if len(m.Stats) > 0 {
			for name := range m.Stats {
				keys = append(keys, name)
			}
		} else {
			for name := range m.Details {
				keys = append(keys, name)
			}
		}
		sort.Strings(keys)
	case *payload.GPU:
		if len(m.Details) > 0 {
			for idx := range m.Details {
				keys = append(keys, idx)
			}
		} else {
			for idx := range m.Metrics {
				keys = append(keys, idx)
			}
		}
		sort.Slice(keys, func(i, j int) bool {
			a, _ := strconv.Atoi(keys[i])
			b, _ := strconv.Atoi(keys[j])
			return a < b
		})
	}

	return keys
}

// SetFilter installs a column equality filter on a table kind.
func (s *Session) SetFilter(kind payload.Kind, column, value string) {
	s.filters[kind] = &Filter{Column: column, Value: value}
}

// ClearFilter removes a kind's filter.
func (s *Session) ClearFilter(kind payload.Kind) {
	delete(s.filters, kind)
}

// SetSort orders a table kind by one column.
func (s *Session) SetSort(kind payload.Kind, column string, descending bool) {
	s.sorts[kind] = &Sort{Column: column, Descending: descending}
}

// ProcessRow is one rendered process table entry.
type ProcessRow struct {
	PID  string
	Info payload.ProcessInfo
}

// ProcessRows returns the process table with the session's filter and sort
// applied. Without an explicit sort the table orders by CPU descending.
func (s *Session) ProcessRows() []ProcessRow {
	m, _ := s.latest[payload.KindProcess].(*payload.Process)
	if m == nil {
		return nil
	}

	f := s.filters[payload.KindProcess]
	rows := make([]ProcessRow, 0, len(m.Metrics))
	for pid, info := range m.Metrics {
		if f != nil && processField(pid, info, f.Column) != f.Value {
			continue
		}
		rows = append(rows, ProcessRow{PID: pid, Info: info})
	}

	sortProcessRows(rows, s.sorts[payload.KindProcess])
	return rows
}

// ConnectionRow is one rendered connection table entry.
type ConnectionRow struct {
	ID   string
	Conn payload.Connection
}

// ConnectionRows returns the connection table with the session's filter
// and sort applied. Without an explicit sort the table orders by
// connection id ascending.
func (s *Session) ConnectionRows() []ConnectionRow {
	m, _ := s.latest[payload.KindNetwork].(*payload.Network)
	if m == nil {
		return nil
	}

	f := s.filters[payload.KindNetwork]
	rows := make([]ConnectionRow, 0, len(m.Connections))
	for id, conn := range m.Connections {
		if f != nil && connectionField(id, conn, f.Column) != f.Value {
			continue
		}
		rows = append(rows, ConnectionRow{ID: id, Conn: conn})
	}

	sortConnectionRows(rows, s.sorts[payload.KindNetwork])
	return rows
}

// CPUCores lists the core ids of the latest CPU snapshot in numeric order.
func (s *Session) CPUCores() []string {
	m, _ := s.latest[payload.KindCPU].(*payload.CPU)
	if m == nil {
		return nil
	}

	cores := make([]string, 0, len(m.Freq))
	for core := range m.Freq {
		cores = append(cores, core)
	}
	sort.Slice(cores, func(i, j int) bool {
		return coreOrdinal(cores[i]) < coreOrdinal(cores[j])
	})
	return cores
}

// coreOrdinal extracts the trailing index from a core id like "Core 7".
func coreOrdinal(core string) int {
	i := strings.LastIndexByte(core, ' ')
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(core[i+1:])
	if err != nil {
		return 0
	}
	return n
}

func (s *Session) applyCPU(m *payload.CPU) {
	if v, ok := m.Temp["package"]; ok {
		s.window(payload.KindCPU, SeriesCPUTemp, s.points).Push(v, m.Taken())
	}
	for core, mhz := range m.Freq {
		s.window(payload.KindCPU, FreqSeries(core), s.corePoints).Push(mhz, m.Taken())
	}
}

func (s *Session) applyMemory(m *payload.Memory) {
	if m.Metrics == nil {
		return
	}
	if m.Metrics.Memory.Total > 0 {
		pct := float64(m.Metrics.Memory.Used) / float64(m.Metrics.Memory.Total) * 100
		s.window(payload.KindMemory, SeriesMemory, s.points).Push(pct, m.Taken())
	}
	if m.Metrics.Swap.Total > 0 {
		pct := float64(m.Metrics.Swap.Used) / float64(m.Metrics.Swap.Total) * 100
		s.window(payload.KindMemory, SeriesSwap, s.points).Push(pct, m.Taken())
	}
}

func (s *Session) applyDisk(m *payload.Disk) {
	speed, ok := m.Speeds[s.SelectedInstance(payload.KindDisk)]
	if !ok {
		return
	}
	s.window(payload.KindDisk, SeriesDiskRead, s.points).Push(speed.ReadSpeed, m.Taken())
	s.window(payload.KindDisk, SeriesDiskWrite, s.points).Push(speed.WriteSpeed, m.Taken())
}

func (s *Session) applyNetwork(m *payload.Network) {
	stats, ok := m.Stats[s.SelectedInstance(payload.KindNetwork)]
	if !ok {
		return
	}
	s.window(payload.KindNetwork, SeriesNetRx, s.points).Push(stats.RxMBps, m.Taken())
	s.window(payload.KindNetwork, SeriesNetTx, s.points).Push(stats.TxMBps, m.Taken())
}

func (s *Session) applyGPU(m *payload.GPU) {
	gm, ok := m.Metrics[s.SelectedInstance(payload.KindGPU)]
	if !ok {
		return
	}
	at := m.Taken()
	s.window(payload.KindGPU, SeriesGPUUtil, s.points).Push(gm.GPUUtilization, at)
	s.window(payload.KindGPU, SeriesGPUTemp, s.points).Push(gm.Temperature, at)
	s.window(payload.KindGPU, SeriesGPUMemory, s.points).Push(float64(gm.MemoryUsed), at)
	s.window(payload.KindGPU, SeriesGPUPower, s.points).Push(gm.PowerDraw, at)
}

// window returns the named window for a kind, creating it on first use.
func (s *Session) window(kind payload.Kind, name string, capacity int) *metrics.RollingWindow {
	ws := s.windows[kind]
	if ws == nil {
		ws = make(map[string]*metrics.RollingWindow)
		s.windows[kind] = ws
	}
	w := ws[name]
	if w == nil {
		w = metrics.NewRollingWindow(capacity)
		ws[name] = w
	}
	return w
}
