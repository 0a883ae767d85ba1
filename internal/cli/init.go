package cli

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/k3y5tr0k3/sysmonify/internal/config"
	"github.com/k3y5tr0k3/sysmonify/internal/errors"
	"github.com/k3y5tr0k3/sysmonify/internal/ui"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Overwrite      bool // Replace an existing config without asking
	NonInteractive bool // Skip prompts, write the defaults
}

// Init creates a new sysmonify.yaml configuration file in the current
// directory.
func Init(opts InitOptions) error {
	configPath := filepath.Join(".", config.ConfigFileName)

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)

		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}

		if !overwrite {
			fmt.Printf("%s Kept existing %s\n", ui.SymbolSkipped, configPath)
			return nil
		}
		opts.Overwrite = true
	}

	cfg := config.DefaultConfig()

	if !opts.NonInteractive {
		listen := cfg.Listen
		limit := strconv.Itoa(cfg.Process.Limit)

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Listen address").
					Description("Where 'sysmonify serve' accepts viewers. Loopback keeps it private to this machine.").
					Placeholder(config.DefaultListen).
					Value(&listen).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return nil
						}
						if _, _, err := net.SplitHostPort(strings.TrimSpace(s)); err != nil {
							return fmt.Errorf("use host:port, like %s", config.DefaultListen)
						}
						return nil
					}),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Process table cap").
					Description("Top N processes by CPU per snapshot. 0 sends every process.").
					Placeholder("0").
					Value(&limit).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return nil
						}
						n, err := strconv.Atoi(strings.TrimSpace(s))
						if err != nil || n < 0 {
							return fmt.Errorf("use 0 or a positive number")
						}
						return nil
					}),
			),
		)

		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive")
		}

		if s := strings.TrimSpace(listen); s != "" {
			cfg.Listen = s
		}
		if s := strings.TrimSpace(limit); s != "" {
			// Validated above.
			cfg.Process.Limit, _ = strconv.Atoi(s)
		}
	}

	if err := config.Write(configPath, cfg, opts.Overwrite); err != nil {
		return err
	}

	fmt.Printf("%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Println(lipgloss.NewStyle().Foreground(ui.ColorInfo).Bold(true).Render("Next steps:"))
	fmt.Println("  sysmonify serve     - Start publishing this host's metrics")
	fmt.Println("  sysmonify watch     - Open the live dashboard")
	fmt.Println("  sysmonify snapshot  - One-shot JSON dump of every kind")

	return nil
}

// initCommand is the implementation called by the cobra command.
func initCommand(force, nonInteractive bool) error {
	return Init(InitOptions{
		Overwrite:      force,
		NonInteractive: nonInteractive,
	})
}
