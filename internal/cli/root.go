// Package cli implements the sysmonify command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configFlag holds the persistent --config override, consumed by every
// command through config.LoadOrDefault.
var configFlag string

var rootCmd = &cobra.Command{
	Use:   "sysmonify",
	Short: "Live host resource monitoring",
	Long: `sysmonify watches a machine's CPU, memory, disks, network, GPU, and
processes, and streams one-second readings over WebSocket.

Run 'sysmonify serve' on the machine you care about, then 'sysmonify watch'
from anywhere that can reach it (the same terminal works too).`,
	// Errors are rendered once in Execute; cobra must not print them
	// again or dump usage after a runtime failure.
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command and renders any error once. Structured
// errors already carry their own multi-line formatting.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file")
}
