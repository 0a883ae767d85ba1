package watch

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/k3y5tr0k3/sysmonify/internal/session"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// Key bindings as constants for consistency.
const (
	KeyQuit      = "q"
	KeyQuitAlt   = "ctrl+c"
	KeyFocusNext = "tab"
	KeyFocusPrev = "shift+tab"
	KeyInstPrev  = "left"
	KeyInstNext  = "right"
	KeyFilter    = "f"
	KeySort      = "s"
	KeyReverse   = "r"
)

// sortColumns are the columns the s key cycles through, per table kind.
// The first entry matches each table's default ordering.
var sortColumns = map[payload.Kind][]string{
	payload.KindProcess: {"cpu", "memory", "pid", "command", "user", "up_time"},
	payload.KindNetwork: {"id", "process", "state", "protocol", "pid"},
}

// HandleKeyMsg processes keyboard input. Returns true if the key was
// handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return true, tea.Quit

	case KeyFocusNext:
		m.focused = (m.focused + 1) % len(panelOrder)
		return true, nil

	case KeyFocusPrev:
		m.focused = (m.focused - 1 + len(panelOrder)) % len(panelOrder)
		return true, nil

	case KeyInstPrev:
		m.cycleInstance(-1)
		return true, nil

	case KeyInstNext:
		m.cycleInstance(1)
		return true, nil

	case KeyFilter:
		m.cycleFilter()
		return true, nil

	case KeySort:
		m.cycleSort()
		return true, nil

	case KeyReverse:
		m.reverseSort()
		return true, nil
	}

	return false, nil
}

// cycleInstance moves the focused kind's instance selection by step,
// wrapping at either end. Kinds with fewer than two instances are left
// alone.
func (m *Model) cycleInstance(step int) {
	kind := m.FocusedKind()
	instances := m.session.Instances(kind)
	if len(instances) < 2 {
		return
	}

	current := m.session.SelectedInstance(kind)
	idx := 0
	for i, id := range instances {
		if id == current {
			idx = i
			break
		}
	}

	idx = (idx + step + len(instances)) % len(instances)
	m.session.SelectInstance(kind, instances[idx])
}

// cycleFilter advances the focused kind's canned filter. Kinds without a
// table ignore the key.
func (m *Model) cycleFilter() {
	kind := m.FocusedKind()
	presets := m.filters[kind]
	if len(presets) == 0 {
		return
	}

	idx := (m.filterIdx[kind] + 1) % len(presets)
	m.filterIdx[kind] = idx

	if f := presets[idx]; f != nil {
		m.session.SetFilter(kind, f.Column, f.Value)
	} else {
		m.session.ClearFilter(kind)
	}
}

// cycleSort advances the focused kind's sort column, keeping direction.
func (m *Model) cycleSort() {
	kind := m.FocusedKind()
	cols := sortColumns[kind]
	if len(cols) == 0 {
		return
	}

	m.sortIdx[kind] = (m.sortIdx[kind] + 1) % len(cols)
	m.session.SetSort(kind, cols[m.sortIdx[kind]], m.sortDesc[kind])
}

// reverseSort flips the focused kind's sort direction on the current
// column.
func (m *Model) reverseSort() {
	kind := m.FocusedKind()
	cols := sortColumns[kind]
	if len(cols) == 0 {
		return
	}

	m.sortDesc[kind] = !m.sortDesc[kind]
	m.session.SetSort(kind, cols[m.sortIdx[kind]], m.sortDesc[kind])
}

// ActiveFilter returns the focused cycle position's filter for a kind, or
// nil when the kind is unfiltered.
func (m Model) ActiveFilter(kind payload.Kind) *session.Filter {
	presets := m.filters[kind]
	if len(presets) == 0 {
		return nil
	}
	return presets[m.filterIdx[kind]%len(presets)]
}

// SortLabel renders the focused sort state for a kind's footer hint, e.g.
// "cpu ↓". Kinds without a table return "".
func (m Model) SortLabel(kind payload.Kind) string {
	cols := sortColumns[kind]
	if len(cols) == 0 {
		return ""
	}

	arrow := "↑"
	if m.sortDesc[kind] {
		arrow = "↓"
	}
	return cols[m.sortIdx[kind]%len(cols)] + " " + arrow
}
