package watch

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

func newTestModel() Model {
	return NewModel(Options{Host: "127.0.0.1:8793", Points: 60, CorePoints: 15}, nil)
}

// focusOn moves keyboard focus to the given kind directly.
func focusOn(t *testing.T, m *Model, kind payload.Kind) {
	t.Helper()
	for i, k := range panelOrder {
		if k == kind {
			m.focused = i
			return
		}
	}
	t.Fatalf("unknown kind %q", kind)
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel()

	assert.Equal(t, "127.0.0.1:8793", m.host)
	assert.Equal(t, payload.KindCPU, m.FocusedKind())
	assert.Equal(t, 0, m.LiveCount())
	assert.NotNil(t, m.session)

	// Every kind starts out waiting.
	for _, kind := range panelOrder {
		assert.Equal(t, streamWaiting, m.states[kind], "kind %s", kind)
	}

	// The process table opens on CPU descending.
	assert.True(t, m.sortDesc[payload.KindProcess])
	assert.Equal(t, "cpu ↓", m.SortLabel(payload.KindProcess))
}

func TestUpdateAppliesStreamMessage(t *testing.T) {
	m := newTestModel()

	msg := &payload.Memory{
		Metrics: &payload.MemoryMetrics{
			Memory: payload.MemoryUsage{Total: 1000, Used: 400},
		},
	}

	updated, _ := m.Update(streamMsg{kind: payload.KindMemory, msg: msg})
	m = updated.(Model)

	require.NotNil(t, m.session.Latest(payload.KindMemory))
	assert.Equal(t, streamLive, m.states[payload.KindMemory])
	assert.Equal(t, 1, m.LiveCount())
	assert.False(t, m.lastUpdate.IsZero())
}

func TestUpdateStreamClosed(t *testing.T) {
	m := newTestModel()

	updated, cmd := m.Update(streamClosedMsg{kind: payload.KindGPU})
	m = updated.(Model)

	assert.Nil(t, cmd)
	assert.Equal(t, streamLost, m.states[payload.KindGPU])
}

func TestUpdateWindowSize(t *testing.T) {
	tests := []struct {
		width  int
		expect LayoutMode
	}{
		{60, LayoutMinimal},
		{79, LayoutMinimal},
		{80, LayoutCompact},
		{119, LayoutCompact},
		{120, LayoutFull},
		{200, LayoutFull},
	}

	for _, tt := range tests {
		m := newTestModel()
		updated, _ := m.Update(tea.WindowSizeMsg{Width: tt.width, Height: 40})
		m = updated.(Model)

		assert.Equal(t, tt.expect, m.LayoutMode(), "width %d", tt.width)
	}
}

func TestUpdateTickReschedules(t *testing.T) {
	m := newTestModel()

	_, cmd := m.Update(tickMsg(time.Now()))
	assert.NotNil(t, cmd)
}

func TestPollStreamCmdWithoutClient(t *testing.T) {
	m := newTestModel()
	assert.Nil(t, m.pollStreamCmd(payload.KindCPU))
}

func TestSecondsSinceUpdate(t *testing.T) {
	m := newTestModel()
	assert.Equal(t, 0, m.SecondsSinceUpdate())

	m.lastUpdate = time.Now().Add(-3 * time.Second)
	assert.Equal(t, 3, m.SecondsSinceUpdate())
}

func TestViewQuitting(t *testing.T) {
	m := newTestModel()
	m.quitting = true
	assert.Empty(t, m.View())
}

func TestFilterPresetsIncludeRoot(t *testing.T) {
	presets := tableFilterPresets()

	procPresets := presets[payload.KindProcess]
	require.GreaterOrEqual(t, len(procPresets), 2)
	assert.Nil(t, procPresets[0])
	assert.Equal(t, "user", procPresets[1].Column)
	assert.Equal(t, "root", procPresets[1].Value)

	netPresets := presets[payload.KindNetwork]
	require.GreaterOrEqual(t, len(netPresets), 2)
	assert.Nil(t, netPresets[0])
	assert.Equal(t, "state", netPresets[1].Column)
	assert.Equal(t, "ESTABLISHED", netPresets[1].Value)
}
