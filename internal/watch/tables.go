package watch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/k3y5tr0k3/sysmonify/internal/ui"
)

// Visible table row bounds. The terminal height decides the exact count.
const (
	tableRowsMin = 5
	tableRowsMax = 15
)

// tableRowLimit bounds visible table rows by what the card grid and
// chrome leave of the terminal height.
func (m Model) tableRowLimit() int {
	limit := m.height - 24
	if limit < tableRowsMin {
		limit = tableRowsMin
	}
	if limit > tableRowsMax {
		limit = tableRowsMax
	}
	return limit
}

// renderProcessTable renders the process table inside a section frame.
func (m Model) renderProcessTable(width int) string {
	rows := m.session.ProcessRows()
	total := len(rows)

	limit := m.tableRowLimit()
	if len(rows) > limit {
		rows = rows[:limit]
	}

	inner := width - 4
	commandWidth := inner - 50
	if commandWidth < 10 {
		commandWidth = 10
	}

	columns := []ui.TableColumn{
		{Title: "PID", Width: 7},
		{Title: "USER", Width: 10},
		{Title: "CPU%", Width: 6},
		{Title: "MEM%", Width: 6},
		{Title: "TIME", Width: 9},
		{Title: "COMMAND", Width: commandWidth},
	}

	tableRows := make([][]string, len(rows))
	for i, row := range rows {
		tableRows[i] = []string{
			row.PID,
			row.Info.User,
			fmt.Sprintf("%5.1f", row.Info.CPU),
			fmt.Sprintf("%5.1f", row.Info.Memory),
			row.Info.UpTime,
			row.Info.Command,
		}
	}

	body := ui.RenderTable(columns, tableRows)
	return frameSection("Processes", fmt.Sprintf("%d/%d", len(rows), total), body, width)
}

// renderConnectionTable renders the socket table inside a section frame.
func (m Model) renderConnectionTable(width int) string {
	rows := m.session.ConnectionRows()
	total := len(rows)

	limit := m.tableRowLimit()
	if len(rows) > limit {
		rows = rows[:limit]
	}

	inner := width - 4
	processWidth := inner - 76
	if processWidth < 8 {
		processWidth = 8
	}

	columns := []ui.TableColumn{
		{Title: "PROTO", Width: 5},
		{Title: "STATE", Width: 11},
		{Title: "LOCAL", Width: 21},
		{Title: "REMOTE", Width: 21},
		{Title: "PID", Width: 6},
		{Title: "PROCESS", Width: processWidth},
	}

	tableRows := make([][]string, len(rows))
	for i, row := range rows {
		tableRows[i] = []string{
			row.Conn.Protocol,
			row.Conn.State,
			row.Conn.LocalAddress,
			row.Conn.ForeignAddress,
			strconv.Itoa(int(row.Conn.PID)),
			row.Conn.Process,
		}
	}

	body := ui.RenderTable(columns, tableRows)
	return frameSection("Connections", fmt.Sprintf("%d/%d", len(rows), total), body, width)
}

// frameSection wraps rendered table output in the bordered section frame.
func frameSection(title, value, body string, width int) string {
	lines := []string{SectionHeader(title, value, width)}
	for _, line := range strings.Split(body, "\n") {
		lines = append(lines, SectionContentLine(line, width))
	}
	lines = append(lines, SectionFooter(width))
	return strings.Join(lines, "\n")
}
