package watch

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/k3y5tr0k3/sysmonify/internal/session"
	"github.com/k3y5tr0k3/sysmonify/internal/ui"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// Card layout constants
const (
	cardGraphHeight   = 2  // braille graph rows in the full layout
	cardMinGraphWidth = 10 // minimum graph width
)

// cardDividerStyle creates a subtle divider line with matching background
var cardDividerStyle = lipgloss.NewStyle().
	Foreground(ColorBorder).
	Background(ColorSurfaceBg)

// cardDivider creates a subtle thin divider line
func cardDivider(width int) string {
	return cardDividerStyle.Render(strings.Repeat("─", width))
}

// cardLine renders a text line with background fill applied to the entire
// line including padding.
func cardLine(content string, width int) string {
	contentWidth := lipgloss.Width(content)
	padding := ""
	if width > contentWidth {
		padding = strings.Repeat(" ", width-contentWidth)
	}
	return lipgloss.NewStyle().Background(ColorSurfaceBg).Render(content + padding)
}

// rightAligned joins left and right content with padding so right ends at
// the line width.
func rightAligned(left, right string, width int) string {
	padding := ""
	used := lipgloss.Width(left) + lipgloss.Width(right)
	if width > used {
		padding = strings.Repeat(" ", width-used)
	}
	return left + padding + right
}

// truncateWithEllipsis truncates a string to maxLen, adding ellipsis if
// needed.
func truncateWithEllipsis(s string, maxLen int) string {
	if maxLen <= 3 {
		return s
	}
	if len(s) > maxLen {
		return s[:maxLen-3] + "..."
	}
	return s
}

// renderCard renders one resource kind's card.
func (m Model) renderCard(kind payload.Kind, width int) string {
	style := CardStyle.Width(width)
	if kind == m.FocusedKind() {
		style = CardFocusedStyle.Width(width)
	}

	// Inner width for content (account for card padding)
	innerWidth := width - 4
	full := m.LayoutMode() == LayoutFull

	lines := []string{cardLine(m.renderCardTitle(kind, innerWidth), innerWidth)}

	if m.session.Latest(kind) == nil {
		lines = append(lines, cardDivider(innerWidth))
		placeholder := "Connecting..."
		if m.states[kind] == streamLost {
			placeholder = "Stream closed"
		}
		lines = append(lines, cardLine(LabelStyle.Render("  "+placeholder), innerWidth))
	} else {
		lines = append(lines, cardDivider(innerWidth))

		var body []string
		switch kind {
		case payload.KindCPU:
			body = m.renderCPUCard(innerWidth, full)
		case payload.KindMemory:
			body = m.renderMemoryCard(innerWidth, full)
		case payload.KindDisk:
			body = m.renderDiskCard(innerWidth, full)
		case payload.KindNetwork:
			body = m.renderNetworkCard(innerWidth, full)
		case payload.KindGPU:
			body = m.renderGPUCard(innerWidth, full)
		case payload.KindProcess:
			body = m.renderProcessCard(innerWidth)
		}
		lines = append(lines, body...)
	}

	return style.Render(strings.Join(lines, "\n"))
}

// renderCardTitle renders the kind name with its stream state glyph and,
// for multi-instance kinds, the selected instance with its position.
func (m Model) renderCardTitle(kind payload.Kind, width int) string {
	var glyph string
	switch m.states[kind] {
	case streamLive:
		glyph = GlyphLiveStyle.Render(GlyphLive)
	case streamLost:
		glyph = GlyphLostStyle.Render(GlyphLost)
	default:
		glyph = GlyphWaitingStyle.Render(GlyphWaiting)
	}

	left := glyph + " " + TitleStyle.Render(strings.ToUpper(kind.String()))

	right := ""
	if instances := m.session.Instances(kind); len(instances) > 0 {
		selected := m.session.SelectedInstance(kind)
		right = ValueStyle.Render(truncateWithEllipsis(selected, width/2))
		if len(instances) > 1 {
			pos := 1
			for i, id := range instances {
				if id == selected {
					pos = i + 1
					break
				}
			}
			right += MutedStyle.Render(fmt.Sprintf(" %d/%d", pos, len(instances)))
		}
	}

	return rightAligned(left, right, width)
}

// seriesGraph renders one series window as graph lines: braille rows in
// the full layout, a single block-character sparkline otherwise. Returns
// nil while the window is empty.
func (m Model) seriesGraph(kind payload.Kind, name string, width, height int, percentage bool, color lipgloss.Color) []string {
	data := m.session.Series(kind, name)
	if len(data) == 0 {
		return nil
	}
	if width < cardMinGraphWidth {
		width = cardMinGraphWidth
	}

	if m.LayoutMode() != LayoutFull {
		if !percentage {
			return nil
		}
		return []string{ui.RenderSparkline(data, width)}
	}

	graph := BrailleSparkline(data, width, height, percentage, color)
	return strings.Split(graph, "\n")
}

func (m Model) renderCPUCard(width int, full bool) []string {
	cpu, _ := m.session.Latest(payload.KindCPU).(*payload.CPU)
	if cpu == nil {
		return nil
	}

	var lines []string

	if cpu.Details != nil && cpu.Details.Model != "" {
		lines = append(lines, cardLine(MutedStyle.Render(truncateWithEllipsis(cpu.Details.Model, width)), width))
	}

	// Frequency line: core count and average clock.
	if len(cpu.Freq) > 0 {
		var sum float64
		for _, mhz := range cpu.Freq {
			sum += mhz
		}
		avg := sum / float64(len(cpu.Freq))
		freqLine := rightAligned(
			LabelStyle.Render("FREQ"),
			ValueStyle.Render(fmt.Sprintf("%d× %s", len(cpu.Freq), formatGHz(avg))),
			width)
		lines = append(lines, cardLine(freqLine, width))

		if full {
			lines = append(lines, cardLine(m.renderCoreFreqRow(cpu, width), width))
		}
	}

	// Package temperature with its history graph.
	if temp, ok := cpu.Temp["package"]; ok {
		tempText := MetricStyleWithThresholds(temp, TempWarningThreshold, TempCriticalThreshold).
			Render(fmt.Sprintf("%5.1f°C", temp))
		lines = append(lines, cardLine(rightAligned(LabelStyle.Render("TEMP"), tempText, width), width))

		graph := m.seriesGraph(payload.KindCPU, session.SeriesCPUTemp, width, cardGraphHeight, true, ColorGraph)
		for _, gl := range graph {
			lines = append(lines, cardLine(gl, width))
		}
	}

	return lines
}

// renderCoreFreqRow draws one block character per core, scaled between the
// processor's min and max clock so pinned cores stand out.
func (m Model) renderCoreFreqRow(cpu *payload.CPU, width int) string {
	cores := m.session.CPUCores()
	if len(cores) == 0 || len(cores) > width {
		return ""
	}

	minMHz, maxMHz := 0.0, 0.0
	if cpu.Details != nil {
		minMHz, maxMHz = cpu.Details.MinFreqMHz, cpu.Details.MaxFreqMHz
	}
	if maxMHz <= minMHz {
		// No hardware bounds reported: scale to the observed range.
		for _, mhz := range cpu.Freq {
			if maxMHz == 0 || mhz > maxMHz {
				maxMHz = mhz
			}
			if minMHz == 0 || mhz < minMHz {
				minMHz = mhz
			}
		}
	}

	blocks := []rune("▁▂▃▄▅▆▇█")
	var b strings.Builder
	for _, core := range cores {
		level := normalize(cpu.Freq[core], minMHz, maxMHz)
		idx := clampInt(int(level*float64(len(blocks)-1)), len(blocks)-1)
		b.WriteRune(blocks[idx])
	}

	return lipgloss.NewStyle().Foreground(ColorGraph).Background(ColorSurfaceBg).Render(b.String())
}

func (m Model) renderMemoryCard(width int, full bool) []string {
	mem, _ := m.session.Latest(payload.KindMemory).(*payload.Memory)
	if mem == nil || mem.Metrics == nil {
		return nil
	}

	var lines []string
	ram := mem.Metrics.Memory

	var pct float64
	if ram.Total > 0 {
		pct = float64(ram.Used) / float64(ram.Total) * 100
	}

	header := rightAligned(
		LabelStyle.Render("RAM"),
		MetricStyle(pct).Render(fmt.Sprintf("%5.1f%%", pct)),
		width)
	lines = append(lines, cardLine(header, width))
	lines = append(lines, cardLine(MutedStyle.Render(formatBytes(ram.Used)+" / "+formatBytes(ram.Total)), width))

	graph := m.seriesGraph(payload.KindMemory, session.SeriesMemory, width, cardGraphHeight, true, ColorGraph)
	if len(graph) == 0 {
		graph = []string{GradientBar(width, pct)}
	}
	for _, gl := range graph {
		lines = append(lines, cardLine(gl, width))
	}

	// Swap only earns a row when the host has any.
	swap := mem.Metrics.Swap
	if swap.Total > 0 {
		swapPct := float64(swap.Used) / float64(swap.Total) * 100

		lines = append(lines, cardDivider(width))
		swapHeader := rightAligned(
			LabelStyle.Render("SWAP"),
			MetricStyle(swapPct).Render(fmt.Sprintf("%5.1f%%", swapPct)),
			width)
		lines = append(lines, cardLine(swapHeader, width))
		if full {
			lines = append(lines, cardLine(ThinProgressBar(width, swapPct), width))
		}
	}

	return lines
}

func (m Model) renderDiskCard(width int, full bool) []string {
	disk, _ := m.session.Latest(payload.KindDisk).(*payload.Disk)
	if disk == nil {
		return nil
	}

	var lines []string
	selected := m.session.SelectedInstance(payload.KindDisk)

	if dev := findBlockDevice(disk.Disks, selected); dev != nil && full {
		desc := formatBytes(uint64(dev.SizeBytes))
		if dev.Model != "" {
			desc += " · " + dev.Model
		}
		lines = append(lines, cardLine(MutedStyle.Render(truncateWithEllipsis(desc, width)), width))
	}

	speed, ok := disk.Speeds[selected]
	if !ok {
		lines = append(lines, cardLine(LabelStyle.Render("  No throughput data"), width))
		return lines
	}

	readLine := rightAligned(
		LabelStyle.Render("READ"),
		AccentStyle.Render("⇣")+ValueStyle.Render(" "+formatRate(speed.ReadSpeed)),
		width)
	lines = append(lines, cardLine(readLine, width))
	for _, gl := range m.seriesGraph(payload.KindDisk, session.SeriesDiskRead, width, 1, false, ColorGraph) {
		lines = append(lines, cardLine(gl, width))
	}

	writeLine := rightAligned(
		LabelStyle.Render("WRITE"),
		AccentStyle.Render("⇡")+ValueStyle.Render(" "+formatRate(speed.WriteSpeed)),
		width)
	lines = append(lines, cardLine(writeLine, width))
	for _, gl := range m.seriesGraph(payload.KindDisk, session.SeriesDiskWrite, width, 1, false, ColorAccentDim) {
		lines = append(lines, cardLine(gl, width))
	}

	return lines
}

// findBlockDevice looks a physical device up by name in the topology.
func findBlockDevice(devices []payload.BlockDevice, name string) *payload.BlockDevice {
	for i := range devices {
		if devices[i].Name == name {
			return &devices[i]
		}
	}
	return nil
}

func (m Model) renderNetworkCard(width int, full bool) []string {
	net, _ := m.session.Latest(payload.KindNetwork).(*payload.Network)
	if net == nil {
		return nil
	}

	var lines []string
	selected := m.session.SelectedInstance(payload.KindNetwork)

	if details, ok := net.Details[selected]; ok && full {
		desc := details.Type
		if details.SpeedMbps > 0 {
			desc += fmt.Sprintf(" · %d Mbps", details.SpeedMbps)
		}
		if len(details.IPv4) > 0 {
			desc += " · " + details.IPv4[0]
		}
		lines = append(lines, cardLine(MutedStyle.Render(truncateWithEllipsis(desc, width)), width))
	}

	stats, ok := net.Stats[selected]
	if !ok {
		lines = append(lines, cardLine(LabelStyle.Render("  No throughput data"), width))
		return lines
	}

	rxLine := rightAligned(
		LabelStyle.Render("RX"),
		AccentStyle.Render("↓")+ValueStyle.Render(" "+formatRate(stats.RxMBps)),
		width)
	lines = append(lines, cardLine(rxLine, width))
	for _, gl := range m.seriesGraph(payload.KindNetwork, session.SeriesNetRx, width, 1, false, ColorGraph) {
		lines = append(lines, cardLine(gl, width))
	}

	txLine := rightAligned(
		LabelStyle.Render("TX"),
		AccentStyle.Render("↑")+ValueStyle.Render(" "+formatRate(stats.TxMBps)),
		width)
	lines = append(lines, cardLine(txLine, width))
	for _, gl := range m.seriesGraph(payload.KindNetwork, session.SeriesNetTx, width, 1, false, ColorAccentDim) {
		lines = append(lines, cardLine(gl, width))
	}

	if stats.RxDropped > 0 || stats.TxDropped > 0 {
		drops := lipgloss.NewStyle().Foreground(ColorWarning).
			Render(fmt.Sprintf("%.1f/s rx · %.1f/s tx", stats.RxDropped, stats.TxDropped))
		lines = append(lines, cardLine(rightAligned(LabelStyle.Render("DROP"), drops, width), width))
	}

	if count := len(net.Connections); count > 0 {
		lines = append(lines, cardLine(MutedStyle.Render(fmt.Sprintf("%d connections", count)), width))
	}

	return lines
}

func (m Model) renderGPUCard(width int, full bool) []string {
	gpu, _ := m.session.Latest(payload.KindGPU).(*payload.GPU)
	if gpu == nil {
		return nil
	}

	selected := m.session.SelectedInstance(payload.KindGPU)
	gm, ok := gpu.Metrics[selected]
	if !ok {
		return []string{cardLine(LabelStyle.Render("  No GPU detected"), width)}
	}

	var lines []string
	details, hasDetails := gpu.Details[selected]

	if hasDetails && details.Model != "" {
		lines = append(lines, cardLine(MutedStyle.Render(truncateWithEllipsis(details.Model, width)), width))
	}

	utilLine := rightAligned(
		LabelStyle.Render("UTIL"),
		MetricStyle(gm.GPUUtilization).Render(fmt.Sprintf("%5.1f%%", gm.GPUUtilization)),
		width)
	lines = append(lines, cardLine(utilLine, width))

	graph := m.seriesGraph(payload.KindGPU, session.SeriesGPUUtil, width, cardGraphHeight, true, ColorGraph)
	if len(graph) == 0 {
		graph = []string{GradientBar(width, gm.GPUUtilization)}
	}
	for _, gl := range graph {
		lines = append(lines, cardLine(gl, width))
	}

	if hasDetails && details.TotalVRAM > 0 {
		vramPct := float64(gm.MemoryUsed) / float64(details.TotalVRAM) * 100
		vramLine := rightAligned(
			LabelStyle.Render("VRAM"),
			ValueStyle.Render(formatBytes(gm.MemoryUsed)+" / "+formatBytes(details.TotalVRAM)),
			width)
		lines = append(lines, cardLine(vramLine, width))
		if full {
			lines = append(lines, cardLine(ThinProgressBar(width, vramPct), width))
		}
	}

	tempText := MetricStyleWithThresholds(gm.Temperature, TempWarningThreshold, TempCriticalThreshold).
		Render(fmt.Sprintf("%.0f°C", gm.Temperature))
	power := ValueStyle.Render(fmt.Sprintf("%.0f W", gm.PowerDraw))
	lines = append(lines, cardLine(rightAligned(LabelStyle.Render("TEMP"), tempText+"  "+power, width), width))

	return lines
}

func (m Model) renderProcessCard(width int) []string {
	procs, _ := m.session.Latest(payload.KindProcess).(*payload.Process)
	if procs == nil {
		return nil
	}

	var lines []string
	lines = append(lines, cardLine(
		rightAligned(LabelStyle.Render("TOTAL"), ValueStyle.Render(fmt.Sprintf("%d", len(procs.Metrics))), width),
		width))

	if cmd, info, ok := topProcess(procs.Metrics, false); ok {
		lines = append(lines, cardLine(m.renderTopLine("CPU", cmd, info.CPU, width), width))
	}
	if cmd, info, ok := topProcess(procs.Metrics, true); ok {
		lines = append(lines, cardLine(m.renderTopLine("MEM", cmd, info.Memory, width), width))
	}

	return lines
}

// renderTopLine renders one "heaviest process" line: label left,
// command(percent) right.
func (m Model) renderTopLine(label, command string, percent float64, width int) string {
	cmd := commandBase(command)
	maxCmdLen := 15
	if len(cmd) > maxCmdLen {
		cmd = cmd[:maxCmdLen-2] + ".."
	}

	pctText := lipgloss.NewStyle().Foreground(MetricColor(percent)).Render(fmt.Sprintf("%.0f%%", percent))
	return rightAligned(LabelStyle.Render(label), ValueStyle.Render(cmd)+"("+pctText+")", width)
}

// topProcess finds the heaviest process by CPU, or by memory when byMemory
// is set.
func topProcess(procs map[string]payload.ProcessInfo, byMemory bool) (string, payload.ProcessInfo, bool) {
	var (
		best    payload.ProcessInfo
		bestCmd string
		found   bool
	)

	for _, info := range procs {
		value, current := info.CPU, best.CPU
		if byMemory {
			value, current = info.Memory, best.Memory
		}
		if !found || value > current {
			best = info
			bestCmd = info.Command
			found = true
		}
	}

	return bestCmd, best, found
}

// commandBase extracts the command name: the last path component's first
// word.
func commandBase(command string) string {
	if idx := strings.LastIndex(command, "/"); idx >= 0 {
		command = command[idx+1:]
	}
	if idx := strings.Index(command, " "); idx > 0 {
		command = command[:idx]
	}
	return command
}
