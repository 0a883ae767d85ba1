package config

import (
	"time"

	"github.com/k3y5tr0k3/sysmonify/internal/collector"
	"github.com/k3y5tr0k3/sysmonify/internal/hub"
	"github.com/k3y5tr0k3/sysmonify/internal/metrics"
	"github.com/k3y5tr0k3/sysmonify/internal/sampler"
)

// DefaultListen is the address `sysmonify serve` binds when the config
// does not say otherwise. Loopback only: exposing the stream beyond the
// host is a deliberate choice the user makes in the config file.
const DefaultListen = "127.0.0.1:8793"

// Config represents the complete sysmonify.yaml configuration file.
// Every key is optional; omitted keys take the defaults from
// DefaultConfig.
type Config struct {
	// Listen is the host:port the serve command binds to.
	Listen string `yaml:"listen" mapstructure:"listen"`

	Sample  SampleConfig  `yaml:"sample" mapstructure:"sample"`
	History HistoryConfig `yaml:"history" mapstructure:"history"`
	Hub     HubConfig     `yaml:"hub" mapstructure:"hub"`
	Process ProcessConfig `yaml:"process" mapstructure:"process"`
}

// SampleConfig controls the sampler loops.
type SampleConfig struct {
	// Interval is the tick period shared by every resource kind.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Timeout bounds a single collection pass.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// GPURetryTicks is how many passes to wait between GPU probe
	// attempts while no device is available.
	GPURetryTicks int `yaml:"gpu_retry_ticks" mapstructure:"gpu_retry_ticks"`
}

// MarshalYAML renders the durations as strings ("1s") instead of
// nanosecond integers.
func (s SampleConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Interval      string `yaml:"interval"`
		Timeout       string `yaml:"timeout"`
		GPURetryTicks int    `yaml:"gpu_retry_ticks"`
	}{s.Interval.String(), s.Timeout.String(), s.GPURetryTicks}, nil
}

// HistoryConfig sizes the rolling windows viewers keep per series.
type HistoryConfig struct {
	// Points is the capacity of per-second history series.
	Points int `yaml:"points" mapstructure:"points"`

	// CorePoints is the capacity of per-core frequency series, kept
	// shorter so wide machines stay cheap to render.
	CorePoints int `yaml:"core_points" mapstructure:"core_points"`
}

// HubConfig controls fan-out behavior.
type HubConfig struct {
	// Queue is the per-subscriber outbound queue depth. When a viewer
	// falls behind, the oldest queued snapshot is dropped first.
	Queue int `yaml:"queue" mapstructure:"queue"`
}

// ProcessConfig controls the process table collector.
type ProcessConfig struct {
	// Limit caps the table at the top N processes by CPU. Zero means
	// every process ships in each snapshot.
	Limit int `yaml:"limit" mapstructure:"limit"`
}

// DefaultConfig returns a Config with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen: DefaultListen,
		Sample: SampleConfig{
			Interval:      sampler.DefaultInterval,
			Timeout:       sampler.DefaultTimeout,
			GPURetryTicks: collector.DefaultGPURetryTicks,
		},
		History: HistoryConfig{
			Points:     metrics.DefaultWindowPoints,
			CorePoints: metrics.DefaultCoreWindowPoints,
		},
		Hub: HubConfig{
			Queue: hub.DefaultQueueDepth,
		},
		Process: ProcessConfig{
			Limit: 0,
		},
	}
}
