package commands

import (
	"errors"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit *int
var historyRun *string

func init() {
	historyLimit = historyCmd.Flags().Int("limit", 20, "The number of runs to list.")
	historyRun = historyCmd.Flags().String("run", "", "Lists the matches of a single run instead.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--limit <n>] [--run <run_id>]",
	Short: "Lists the archived runs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		if cfg.Archive.Path == "" {
			return errors.New("archive.path is not configured")
		}

		archive, closeArchive, err := cfg.openArchive()
		if err != nil {
			return err
		}
		defer closeArchive()

		out := cmd.OutOrStdout()
		if *historyRun != "" {
			matches, err := archive.Matches(cmd.Context(), *historyRun)
			if err != nil {
				return err
			}
			renderMatches(out, matches)
			return nil
		}

		runs, err := archive.Runs(cmd.Context(), *historyLimit)
		if err != nil {
			return err
		}
		t := newTable(out)
		t.AppendHeader(table.Row{"Run", "Generated at", "Success", "Matches", "Errors"})
		for _, run := range runs {
			t.AppendRow(table.Row{
				run.RunId,
				run.GeneratedAt.Format(time.DateTime),
				run.Status.Success,
				run.Status.MatchesProcessed,
				run.Status.ErrorCount,
			})
		}
		t.Render()
		return nil
	},
}
