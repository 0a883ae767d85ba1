package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/k3y5tr0k3/sysmonify/internal/errors"
)

// Command-specific flags
var (
	serveListenFlag    string
	watchHostFlag      string
	snapshotRawFlag    bool
	initForce          bool
	initNonInteractive bool
)

// serveCmd runs the collectors and the WebSocket server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Publish this host's metrics over WebSocket",
	Long: `Start the sampling loops and serve one WebSocket stream per resource
kind (cpu, memory, disk, network, gpu, processes).

Each stream sends one JSON message per second. Viewers connect with
'sysmonify watch' or any WebSocket client.

Examples:
  sysmonify serve
  sysmonify serve --listen 0.0.0.0:8793
  sysmonify serve --config ./sysmonify.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCommand(serveListenFlag)
	},
}

// watchCmd starts the TUI dashboard.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard for a running sysmonify server",
	Long: `Open an interactive terminal dashboard streaming from a sysmonify
server. All display state (history, instance selection, filter, sort) is
local to this viewer; nothing is sent back to the server.

Keyboard shortcuts:
  q / Ctrl+C   Quit
  Tab / Shift+Tab  Cycle panel focus
  left/right   Cycle the focused panel's instance (disk, interface, GPU)
  f            Cycle a filter preset on the focused table
  s            Cycle the sort column
  r            Reverse the sort direction

Examples:
  sysmonify watch
  sysmonify watch --host 192.168.1.20:8793`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(watchHostFlag)
	},
}

// snapshotCmd collects once and prints JSON.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot [kind...]",
	Short: "One-shot collection printed as JSON",
	Long: `Run the requested collectors once and print a single JSON document
keyed by kind. With no arguments every kind is collected.

Rate-derived values (disk MB/s, network Mb/s) read 0 on a one-shot pass:
they need two observations of the kernel counters.

Examples:
  sysmonify snapshot
  sysmonify snapshot cpu memory
  sysmonify snapshot gpu --raw`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return snapshotCommand(args, snapshotRawFlag)
	},
}

// initCmd creates a sysmonify.yaml configuration.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sysmonify.yaml configuration",
	Long: `Write a sysmonify.yaml file in the current directory.

Walks through the handful of tunable settings with interactive prompts;
every key in the result is optional and documented in the file itself.

Examples:
  sysmonify init
  sysmonify init --force
  sysmonify init --non-interactive`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(initForce, initNonInteractive)
	},
}

// completionCmd generates shell completion scripts.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for sysmonify.

Examples:
  # Bash
  sysmonify completion bash > /etc/bash_completion.d/sysmonify

  # Zsh
  sysmonify completion zsh > "${fpath[1]}/_sysmonify"

  # Fish
  sysmonify completion fish > ~/.config/fish/completions/sysmonify.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListenFlag, "listen", "", "bind address, overrides config (host:port)")

	watchCmd.Flags().StringVar(&watchHostFlag, "host", "", "server address to watch (host:port or ws:// URL)")

	snapshotCmd.Flags().BoolVar(&snapshotRawFlag, "raw", false, "compact JSON instead of pretty-printed")

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "skip prompts, write the defaults")

	// Register all commands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
}
