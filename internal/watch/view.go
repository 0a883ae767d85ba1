package watch

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// cardWidth is the card column width in the compact and full layouts.
const cardWidth = 38

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.LayoutMode() == LayoutMinimal {
		b.WriteString(m.renderMinimalBody())
	} else {
		b.WriteString(m.renderCardGrid())
		b.WriteString("\n")
		b.WriteString(m.renderTableSection())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the dashboard header with connection summary.
func (m Model) renderHeader() string {
	lastUpdate := m.SecondsSinceUpdate()
	var updateText string
	switch lastUpdate {
	case 0:
		updateText = "just now"
	case 1:
		updateText = "1s ago"
	default:
		updateText = fmt.Sprintf("%ds ago", lastUpdate)
	}

	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("sysmonify")

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(fmt.Sprintf(" | %s | %d/%d streams | last update %s",
			m.host, m.LiveCount(), len(panelOrder), updateText))

	return HeaderStyle.Render(title + stats)
}

// renderCardGrid arranges the resource cards in rows sized to the
// terminal width.
func (m Model) renderCardGrid() string {
	var cards []string
	for _, kind := range panelOrder {
		cards = append(cards, m.renderCard(kind, cardWidth))
	}

	// Account for card margin and border.
	cardsPerRow := 1
	if m.width > 0 {
		cardsPerRow = m.width / (cardWidth + 3)
		if cardsPerRow < 1 {
			cardsPerRow = 1
		}
	}

	var rows []string
	for i := 0; i < len(cards); i += cardsPerRow {
		end := i + cardsPerRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderTableSection renders the table for the focused kind: connections
// when the network panel has focus, the process table otherwise.
func (m Model) renderTableSection() string {
	width := m.width - 2
	if width > 110 {
		width = 110
	}
	if width < 40 {
		width = 40
	}

	if m.FocusedKind() == payload.KindNetwork {
		return m.renderConnectionTable(width)
	}
	return m.renderProcessTable(width)
}

// renderMinimalBody renders one value line per kind for very narrow
// terminals.
func (m Model) renderMinimalBody() string {
	var lines []string

	if cpu, _ := m.session.Latest(payload.KindCPU).(*payload.CPU); cpu != nil {
		value := ""
		if temp, ok := cpu.Temp["package"]; ok {
			value = MetricStyleWithThresholds(temp, TempWarningThreshold, TempCriticalThreshold).
				Render(fmt.Sprintf("%.0f°C", temp))
		}
		if len(cpu.Freq) > 0 {
			var sum float64
			for _, mhz := range cpu.Freq {
				sum += mhz
			}
			value += ValueStyle.Render(" " + formatGHz(sum/float64(len(cpu.Freq))))
		}
		lines = append(lines, LabelStyle.Render("CPU ")+value)
	}

	if mem, _ := m.session.Latest(payload.KindMemory).(*payload.Memory); mem != nil && mem.Metrics != nil {
		ram := mem.Metrics.Memory
		if ram.Total > 0 {
			pct := float64(ram.Used) / float64(ram.Total) * 100
			lines = append(lines, LabelStyle.Render("MEM ")+
				MetricStyle(pct).Render(fmt.Sprintf("%.0f%%", pct))+
				MutedStyle.Render(" of "+formatBytes(ram.Total)))
		}
	}

	if disk, _ := m.session.Latest(payload.KindDisk).(*payload.Disk); disk != nil {
		if speed, ok := disk.Speeds[m.session.SelectedInstance(payload.KindDisk)]; ok {
			lines = append(lines, LabelStyle.Render("DSK ")+
				ValueStyle.Render(fmt.Sprintf("⇣%s ⇡%s", formatRate(speed.ReadSpeed), formatRate(speed.WriteSpeed))))
		}
	}

	if net, _ := m.session.Latest(payload.KindNetwork).(*payload.Network); net != nil {
		if stats, ok := net.Stats[m.session.SelectedInstance(payload.KindNetwork)]; ok {
			lines = append(lines, LabelStyle.Render("NET ")+
				ValueStyle.Render(fmt.Sprintf("↓%s ↑%s", formatRate(stats.RxMBps), formatRate(stats.TxMBps))))
		}
	}

	if gpu, _ := m.session.Latest(payload.KindGPU).(*payload.GPU); gpu != nil {
		if gm, ok := gpu.Metrics[m.session.SelectedInstance(payload.KindGPU)]; ok {
			lines = append(lines, LabelStyle.Render("GPU ")+
				MetricStyle(gm.GPUUtilization).Render(fmt.Sprintf("%.0f%%", gm.GPUUtilization))+
				ValueStyle.Render(fmt.Sprintf(" %.0f°C", gm.Temperature)))
		}
	}

	if procs, _ := m.session.Latest(payload.KindProcess).(*payload.Process); procs != nil {
		lines = append(lines, LabelStyle.Render("PRC ")+
			ValueStyle.Render(fmt.Sprintf("%d processes", len(procs.Metrics))))
	}

	if len(lines) == 0 {
		return LabelStyle.Render("Connecting...")
	}

	return strings.Join(lines, "\n")
}

// renderFooter renders the keyboard help footer with the focused panel's
// filter and sort state.
func (m Model) renderFooter() string {
	hints := []string{
		"q quit",
		"tab focus",
		"←→ instance",
		"f filter",
		"s sort",
		"r reverse",
	}

	kind := m.FocusedKind()
	if f := m.ActiveFilter(kind); f != nil {
		hints = append(hints, fmt.Sprintf("[%s=%s]", f.Column, f.Value))
	}
	if label := m.SortLabel(kind); label != "" {
		hints = append(hints, "["+label+"]")
	}

	return FooterStyle.Render(strings.Join(hints, " | "))
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"KB", "MB", "GB", "TB", "PB"}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), units[exp])
}

// formatRate formats an MB/s throughput value.
func formatRate(mbps float64) string {
	switch {
	case mbps >= 1024:
		return fmt.Sprintf("%.1f GB/s", mbps/1024)
	case mbps >= 10:
		return fmt.Sprintf("%.0f MB/s", mbps)
	case mbps >= 0.1:
		return fmt.Sprintf("%.1f MB/s", mbps)
	}
	return fmt.Sprintf("%.0f KB/s", mbps*1024)
}

// formatGHz formats a frequency given in MHz.
func formatGHz(mhz float64) string {
	if mhz >= 1000 {
		return fmt.Sprintf("%.2f GHz", mhz/1000)
	}
	return fmt.Sprintf("%.0f MHz", mhz)
}
