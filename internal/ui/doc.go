// Package ui provides shared terminal widgets for sysmonify's CLI output
// and the watch dashboard, styled with Lip Gloss.
//
// # Components Overview
//
//	Sparkline   - Single-row block-character graph for percentage history
//	RenderTable - Static Bubbles table with the house styling, sized to its rows
//	Symbols     - Status glyphs for CLI messages
//
// # Color Scheme
//
// Colors are defined as ANSI codes for broad terminal compatibility:
//
//	ColorSuccess (green)  - Successful operations, healthy metrics
//	ColorError   (red)    - Failures, critical metrics
//	ColorWarning (yellow) - Warnings, elevated metrics
//	ColorInfo    (cyan)   - Informational headings
//	ColorPrimary (white)  - Table content
//	ColorMuted   (gray)   - Borders, secondary text
//
// The dashboard in internal/watch defines its own richer palette; the
// colors here are for output that must degrade well on basic terminals.
//
// # Sparkline Usage
//
//	ui.RenderSparkline(history, 30)
//
// renders the most recent 30 points as ▁▂▃▄▅▆▇█ blocks on a fixed 0-100
// scale, colored by the latest value: green below 70, yellow to 90, red
// above.
package ui
