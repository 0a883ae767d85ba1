package ui

// Unicode symbols for status indicators. Structured errors render their
// own ✗ through internal/errors; these cover the success-side messages.
const (
	SymbolSuccess = "✓" // Completed successfully
	SymbolSkipped = "⊘" // Declined or skipped
)
