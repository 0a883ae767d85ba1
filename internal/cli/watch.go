package cli

import (
	"github.com/k3y5tr0k3/sysmonify/internal/config"
	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/internal/watch"
)

// watchCommand opens the dashboard against a running server. With no
// --host it watches the address this machine's config would serve on,
// which covers the common single-box case.
func watchCommand(host string) error {
	cfg, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if host == "" {
		host = cfg.Listen
	}

	return watch.Run(watch.Options{
		Host:       host,
		Points:     cfg.History.Points,
		CorePoints: cfg.History.CorePoints,
		// The TUI owns the terminal; stray log lines would tear the
		// alt screen.
		Logger: logger.Noop(),
	})
}
