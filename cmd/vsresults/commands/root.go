package commands

import (
	"context"

	"github.com/Larcf/footstats-data/lib/telemetry"

	"github.com/spf13/cobra"
)

var verbose *bool
var configPath *string

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enables debug logging.")
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file, <name>.local.<ext> is merged on top of it if present.")
}

var rootCmd = &cobra.Command{
	Use:   "vsresults",
	Short: "vsresults scrapes finished virtual soccer fixtures from OddsPortal into a JSON batch.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the command line, the caller decides how to exit on a
// returned error.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
