package payload

// Process is the message for the processes stream.
type Process struct {
	Meta

	// Metrics maps the pid (as a string key) to that process's row.
	Metrics map[string]ProcessInfo `json:"metrics,omitempty"`
}

// ProcessInfo is one row of the process table. CPU and Memory are
// percentages; UpTime is "HH:MM:SS" since the process started.
type ProcessInfo struct {
	Command string  `json:"command"`
	User    string  `json:"user"`
	CPU     float64 `json:"cpu"`
	Memory  float64 `json:"memory"`
	UpTime  string  `json:"up_time"`
}

// Kind returns KindProcess.
func (*Process) Kind() Kind { return KindProcess }

// WithoutDetails returns the message unchanged; the process table has no
// detail section.
func (p *Process) WithoutDetails() Message { return p }
