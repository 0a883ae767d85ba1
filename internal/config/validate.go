package config

import (
	"fmt"
	"net"

	"github.com/k3y5tr0k3/sysmonify/internal/errors"
)

// Validate checks the config for values the daemon cannot run with and
// returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Listen == "" {
		return errors.New(errors.ErrConfig,
			"Listen address is empty",
			"Set 'listen' to host:port, or remove the key to use "+DefaultListen+".")
	}
	if _, _, err := net.SplitHostPort(cfg.Listen); err != nil {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Listen address '%s' is not host:port", cfg.Listen),
			"Use something like 127.0.0.1:8793.")
	}

	if err := validateSample(cfg.Sample); err != nil {
		return errors.New(errors.ErrConfig, err.Error(),
			"Check the 'sample' section in your sysmonify.yaml.")
	}

	if err := validateHistory(cfg.History); err != nil {
		return errors.New(errors.ErrConfig, err.Error(),
			"Check the 'history' section in your sysmonify.yaml.")
	}

	if cfg.Hub.Queue < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Hub queue depth must be at least 1, got %d", cfg.Hub.Queue),
			"Check the 'hub' section in your sysmonify.yaml.")
	}

	if cfg.Process.Limit < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Process limit can't be negative, got %d", cfg.Process.Limit),
			"Use 0 to include every process, or a positive cap.")
	}

	return nil
}

// validateSample checks the sampler cadence settings.
func validateSample(s SampleConfig) error {
	if s.Interval <= 0 {
		return fmt.Errorf("sample interval must be positive, got %s", s.Interval)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("sample timeout must be positive, got %s", s.Timeout)
	}
	if s.GPURetryTicks < 1 {
		return fmt.Errorf("gpu_retry_ticks must be at least 1, got %d", s.GPURetryTicks)
	}
	return nil
}

// validateHistory checks the rolling window capacities.
func validateHistory(h HistoryConfig) error {
	if h.Points < 1 {
		return fmt.Errorf("history points must be at least 1, got %d", h.Points)
	}
	if h.CorePoints < 1 {
		return fmt.Errorf("history core_points must be at least 1, got %d", h.CorePoints)
	}
	return nil
}
