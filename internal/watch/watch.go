// Package watch is the live terminal dashboard. It dials one WebSocket
// stream per resource kind on a sysmonify server, folds delivered messages
// into a local session, and renders cards, sparklines, and tables with
// Bubble Tea. Instance selection, filtering, and sorting are all local to
// the session; keystrokes never talk to the server.
package watch

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
	"github.com/k3y5tr0k3/sysmonify/pkg/stream"
)

// Options configures the dashboard.
type Options struct {
	// Host is the server's listen address, e.g. "127.0.0.1:8793".
	Host string

	// Points and CorePoints size the session's history windows. Zero
	// values take the defaults.
	Points     int
	CorePoints int

	// Logger receives stream diagnostics. The dashboard owns the
	// terminal, so anything noisier than a buffered or no-op logger
	// will tear the alt screen.
	Logger logger.Logger
}

// Run dials every resource stream, runs the dashboard until the user
// quits, and closes the streams on the way out. It returns an error when
// the server can't be reached or the terminal can't host the program.
func Run(opts Options) error {
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}

	clients := make(map[payload.Kind]*stream.Client, len(payload.Kinds()))
	for _, kind := range payload.Kinds() {
		c, err := stream.Dial(opts.Host, kind, stream.DefaultDialTimeout)
		if err != nil {
			for _, open := range clients {
				open.Close()
			}
			return err
		}
		clients[kind] = c
	}

	m := NewModel(opts, clients)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()

	for _, c := range clients {
		c.Close()
	}
	return err
}
