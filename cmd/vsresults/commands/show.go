package commands

import (
	"fmt"

	"github.com/Larcf/footstats-data/internal/results"

	"github.com/spf13/cobra"
)

var showFile *string
var showLeague *string

func init() {
	showFile = showCmd.Flags().String("file", "", "The batch to show, defaults to the configured output.")
	showLeague = showCmd.Flags().String("league", "", "Only shows leagues similar to this name.")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show [--file <path/to/live-matches.json>] [--league <name>]",
	Short: "Prints the last written batch as a table.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := *showFile
		if path == "" {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			path = cfg.Output
		}

		batch, err := results.Read(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(
			out,
			"generated at %s (%s), success: %v, matches: %d, errors: %d\n",
			batch.Metadata.GeneratedAt,
			batch.Metadata.Timezone,
			batch.Status.Success,
			batch.Status.MatchesProcessed,
			batch.Status.ErrorCount,
		)
		renderMatches(out, filterLeague(batch.Matches, *showLeague))
		return nil
	},
}
