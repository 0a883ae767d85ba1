package watch

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// press sends one keystroke through Update and returns the advanced model.
func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()

	var msg tea.KeyMsg
	switch key {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		msg = tea.KeyMsg{Type: tea.KeyShiftTab}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}

	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			m, cmd := press(t, newTestModel(), key)

			assert.True(t, m.quitting)
			assert.NotNil(t, cmd)
		})
	}
}

func TestTabCyclesFocus(t *testing.T) {
	m := newTestModel()
	assert.Equal(t, payload.KindCPU, m.FocusedKind())

	m, _ = press(t, m, "tab")
	assert.Equal(t, payload.KindMemory, m.FocusedKind())

	// Forward through the rest and wrap back to the start.
	for i := 0; i < len(panelOrder)-1; i++ {
		m, _ = press(t, m, "tab")
	}
	assert.Equal(t, payload.KindCPU, m.FocusedKind())

	// Backward wraps the other way.
	m, _ = press(t, m, "shift+tab")
	assert.Equal(t, payload.KindProcess, m.FocusedKind())
}

func TestInstanceCycling(t *testing.T) {
	m := newTestModel()
	m.session.Apply(&payload.Network{
		Stats: map[string]payload.InterfaceStats{
			"eth0":  {RxMBps: 1},
			"wlan0": {RxMBps: 2},
		},
	})
	focusOn(t, &m, payload.KindNetwork)

	assert.Equal(t, "eth0", m.session.SelectedInstance(payload.KindNetwork))

	m, _ = press(t, m, "right")
	assert.Equal(t, "wlan0", m.session.SelectedInstance(payload.KindNetwork))

	// Wraps past the end.
	m, _ = press(t, m, "right")
	assert.Equal(t, "eth0", m.session.SelectedInstance(payload.KindNetwork))

	m, _ = press(t, m, "left")
	assert.Equal(t, "wlan0", m.session.SelectedInstance(payload.KindNetwork))
}

func TestInstanceCyclingSingleInstance(t *testing.T) {
	m := newTestModel()
	m.session.Apply(&payload.Network{
		Stats: map[string]payload.InterfaceStats{"eth0": {}},
	})
	focusOn(t, &m, payload.KindNetwork)

	m, _ = press(t, m, "right")
	assert.Equal(t, "eth0", m.session.SelectedInstance(payload.KindNetwork))
}

func TestFilterCycleOnProcessTable(t *testing.T) {
	m := newTestModel()
	m.session.Apply(&payload.Process{
		Metrics: map[string]payload.ProcessInfo{
			"1":    {Command: "systemd", User: "root", CPU: 1},
			"1000": {Command: "nvim", User: "dev", CPU: 5},
		},
	})
	focusOn(t, &m, payload.KindProcess)

	require.Len(t, m.session.ProcessRows(), 2)

	// First press lands on the root preset.
	m, _ = press(t, m, "f")
	f := m.ActiveFilter(payload.KindProcess)
	require.NotNil(t, f)
	assert.Equal(t, "user", f.Column)
	assert.Equal(t, "root", f.Value)

	rows := m.session.ProcessRows()
	require.Len(t, rows, 1)
	assert.Equal(t, "systemd", rows[0].Info.Command)

	// Cycling all the way around clears the filter again.
	for i := 0; i < len(m.filters[payload.KindProcess])-1; i++ {
		m, _ = press(t, m, "f")
	}
	assert.Nil(t, m.ActiveFilter(payload.KindProcess))
	assert.Len(t, m.session.ProcessRows(), 2)
}

func TestFilterIgnoredWithoutTable(t *testing.T) {
	m := newTestModel()
	focusOn(t, &m, payload.KindCPU)

	m, _ = press(t, m, "f")
	assert.Nil(t, m.ActiveFilter(payload.KindCPU))
	assert.Equal(t, 0, m.filterIdx[payload.KindCPU])
}

func TestSortCycleAndReverse(t *testing.T) {
	m := newTestModel()
	m.session.Apply(&payload.Process{
		Metrics: map[string]payload.ProcessInfo{
			"10": {Command: "big", CPU: 1, Memory: 50},
			"20": {Command: "small", CPU: 9, Memory: 5},
		},
	})
	focusOn(t, &m, payload.KindProcess)

	// Default order: CPU descending.
	rows := m.session.ProcessRows()
	require.Len(t, rows, 2)
	assert.Equal(t, "small", rows[0].Info.Command)

	// s moves to the memory column, direction unchanged.
	m, _ = press(t, m, "s")
	assert.Equal(t, "memory ↓", m.SortLabel(payload.KindProcess))
	rows = m.session.ProcessRows()
	assert.Equal(t, "big", rows[0].Info.Command)

	// r flips direction on the same column.
	m, _ = press(t, m, "r")
	assert.Equal(t, "memory ↑", m.SortLabel(payload.KindProcess))
	rows = m.session.ProcessRows()
	assert.Equal(t, "small", rows[0].Info.Command)
}

func TestSortLabelForConnections(t *testing.T) {
	m := newTestModel()

	// Connections default to id ascending.
	assert.Equal(t, "id ↑", m.SortLabel(payload.KindNetwork))
	assert.Empty(t, m.SortLabel(payload.KindCPU))
}

func TestUnhandledKeyFallsThrough(t *testing.T) {
	m := newTestModel()

	handled, cmd := m.HandleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.False(t, handled)
	assert.Nil(t, cmd)
}
