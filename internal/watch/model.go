package watch

import (
	"os/user"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/internal/session"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
	"github.com/k3y5tr0k3/sysmonify/pkg/stream"
)

// LayoutMode is the responsive layout tier chosen from the terminal width.
type LayoutMode int

const (
	// LayoutMinimal is for terminals < 80 columns: one value line per
	// kind, no graphs, no tables.
	LayoutMinimal LayoutMode = iota
	// LayoutCompact is for terminals 80-119 columns: single-row
	// sparklines and a narrow table.
	LayoutCompact
	// LayoutFull is for terminals 120+ columns: braille graphs, a card
	// grid, and the full-width table.
	LayoutFull
)

// Width breakpoints between layout tiers.
const (
	BreakpointCompact = 80
	BreakpointFull    = 120
)

// streamState tracks what one kind's subscription has done so far.
type streamState int

const (
	streamWaiting streamState = iota // dialed, nothing delivered yet
	streamLive                       // at least one message applied
	streamLost                       // delivery channel closed
)

// Model is the Bubble Tea model for the dashboard. All mutable view state
// lives here and in the session; both are touched only by the program's
// event loop.
type Model struct {
	host    string
	clients map[payload.Kind]*stream.Client
	session *session.Session
	log     logger.Logger

	focused    int
	width      int
	height     int
	lastUpdate time.Time
	states     map[payload.Kind]streamState
	quitting   bool

	// Table view state the f/s/r keys cycle through. The session holds
	// the effective filter and sort; these remember the cycle position.
	filters   map[payload.Kind][]*session.Filter
	filterIdx map[payload.Kind]int
	sortIdx   map[payload.Kind]int
	sortDesc  map[payload.Kind]bool
}

// panelOrder is the tab order of the dashboard panels.
var panelOrder = payload.Kinds()

// tickMsg drives the once-a-second header refresh.
type tickMsg time.Time

// streamMsg carries one delivered message from a kind's stream.
type streamMsg struct {
	kind payload.Kind
	msg  payload.Message
}

// streamClosedMsg reports that a kind's delivery channel closed.
type streamClosedMsg struct {
	kind payload.Kind
}

// tickInterval is the header refresh cadence; data arrival is driven by
// the streams themselves.
const tickInterval = time.Second

// NewModel builds the dashboard model. clients may be nil in tests; the
// model then renders whatever is applied to it directly.
func NewModel(opts Options, clients map[payload.Kind]*stream.Client) Model {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	states := make(map[payload.Kind]streamState, len(panelOrder))
	for _, kind := range panelOrder {
		states[kind] = streamWaiting
	}

	m := Model{
		host:      opts.Host,
		clients:   clients,
		session:   session.NewSized(opts.Points, opts.CorePoints),
		log:       log,
		states:    states,
		filters:   tableFilterPresets(),
		filterIdx: make(map[payload.Kind]int),
		sortIdx:   make(map[payload.Kind]int),
		sortDesc:  make(map[payload.Kind]bool),
	}

	// The process table opens on CPU descending, matching the session's
	// default ordering.
	m.sortDesc[payload.KindProcess] = true

	return m
}

// tableFilterPresets builds the canned filters the f key cycles through.
// The leading nil entry means "no filter".
func tableFilterPresets() map[payload.Kind][]*session.Filter {
	presets := map[payload.Kind][]*session.Filter{
		payload.KindProcess: {
			nil,
			{Column: "user", Value: "root"},
		},
		payload.KindNetwork: {
			nil,
			{Column: "state", Value: "ESTABLISHED"},
			{Column: "state", Value: "LISTEN"},
			{Column: "protocol", Value: "tcp"},
		},
	}

	// Offer "my processes" when the dashboard isn't running as root.
	if u, err := user.Current(); err == nil && u.Username != "" && u.Username != "root" {
		presets[payload.KindProcess] = append(presets[payload.KindProcess],
			&session.Filter{Column: "user", Value: u.Username})
	}

	return presets
}

// Init starts the header tick and a poll on every stream.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tickCmd()}
	for _, kind := range panelOrder {
		if cmd := m.pollStreamCmd(kind); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// Update handles messages and advances the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		return m, m.tickCmd()

	case streamMsg:
		m.session.Apply(msg.msg)
		m.states[msg.kind] = streamLive
		m.lastUpdate = time.Now()
		return m, m.pollStreamCmd(msg.kind)

	case streamClosedMsg:
		m.states[msg.kind] = streamLost
		m.log.Debug("[watch] %s stream closed", msg.kind)
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// tickCmd schedules the next header refresh.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// pollStreamCmd blocks on one kind's delivery channel and forwards the
// next message into the program. Re-issued after every receipt.
func (m Model) pollStreamCmd(kind payload.Kind) tea.Cmd {
	c := m.clients[kind]
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-c.Messages()
		if !ok {
			return streamClosedMsg{kind: kind}
		}
		return streamMsg{kind: kind, msg: msg}
	}
}

// FocusedKind returns the kind of the panel holding keyboard focus.
func (m Model) FocusedKind() payload.Kind {
	return panelOrder[m.focused]
}

// LayoutMode returns the layout tier for the current terminal width.
func (m Model) LayoutMode() LayoutMode {
	switch {
	case m.width >= BreakpointFull:
		return LayoutFull
	case m.width >= BreakpointCompact:
		return LayoutCompact
	default:
		return LayoutMinimal
	}
}

// LiveCount returns how many streams have delivered at least one message.
func (m Model) LiveCount() int {
	count := 0
	for _, state := range m.states {
		if state == streamLive {
			count++
		}
	}
	return count
}

// SecondsSinceUpdate returns how long ago the last message arrived.
func (m Model) SecondsSinceUpdate() int {
	if m.lastUpdate.IsZero() {
		return 0
	}
	return int(time.Since(m.lastUpdate).Seconds())
}
