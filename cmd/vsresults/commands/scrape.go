package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Larcf/footstats-data/internal/components/telemetry"
	"github.com/Larcf/footstats-data/internal/notify"
	"github.com/Larcf/footstats-data/internal/results"
	"github.com/Larcf/footstats-data/internal/scrapers/oddsportal"
	"github.com/Larcf/footstats-data/lib/restyutil"
	libtelemetry "github.com/Larcf/footstats-data/lib/telemetry"

	"github.com/mazen160/go-random"
	"github.com/spf13/cobra"
)

// ErrUnsuccessful is returned when the written batch has success=false.
var ErrUnsuccessful = errors.New("the batch was not successful")

var scrapeOut *string
var scrapeDumpHttp *string

func init() {
	scrapeOut = scrapeCmd.Flags().String("out", "", "The file to write the batch to, overrides the config.")
	scrapeDumpHttp = scrapeCmd.Flags().String("dump-http", "", "A directory every http exchange is written to.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--out <path/to/live-matches.json>] [--dump-http <dir>]",
	Short: "Fetches the results page once and atomically writes the batch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		if *scrapeOut != "" {
			cfg.Output = *scrapeOut
		}

		runId, err := random.String(8)
		if err != nil {
			return fmt.Errorf("generate run id: %w", err)
		}
		logger := slog.With("run", runId)

		proxy, err := proxyFromEnv(os.Getenv)
		if err != nil {
			return err
		}
		clock, err := cfg.clock()
		if err != nil {
			return err
		}
		store, closeStore, err := cfg.openSessionStore()
		if err != nil {
			return err
		}
		defer closeStore()

		opts := cfg.clientOptions(proxy, store)
		if *scrapeDumpHttp != "" {
			output, err := restyutil.NewFilesystemOutput(*scrapeDumpHttp)
			if err != nil {
				return err
			}
			opts.DumpOutput = output
		}

		tel := telemetry.NewSlogAPI(logger)
		client, err := oddsportal.NewClient(opts, clock, tel)
		if err != nil {
			return err
		}
		scraper := oddsportal.NewScraper(client, oddsportal.DefaultSelectors(), clock, tel)

		logger.Info("scraping", "url", cfg.Url, "proxy", proxy.Enabled, "impersonation", cfg.Impersonation)
		outcome := scraper.Run(ctx)
		batch := outcome.Batch

		err = results.WriteAtomic(cfg.Output, batch)
		if err != nil {
			return err
		}
		logger.Info(
			"wrote batch",
			"path", cfg.Output,
			"success", batch.Status.Success,
			"matches", batch.Status.MatchesProcessed,
			"errors", batch.Status.ErrorCount,
		)

		if cfg.Archive.Path != "" {
			archive, closeArchive, err := cfg.openArchive()
			if err != nil {
				logger.Warn("failed to open archive", "err", err)
			} else {
				err = archive.Append(ctx, runId, batch)
				if err != nil {
					logger.Warn("failed to archive batch", "err", err)
				}
				closeArchive()
			}
		}

		if !batch.Status.Success && cfg.Smtp.Enabled() {
			err = notify.NewEmailNotifier(cfg.Smtp).NotifyFailure(ctx, runId, batch, outcome.Fatal)
			if err != nil {
				logger.Warn("failed to send failure notification", "err", err)
			}
		}

		libtelemetry.RecordPerfStats(ctx)

		if !batch.Status.Success {
			if outcome.Fatal != nil {
				return fmt.Errorf("%w: %w", ErrUnsuccessful, outcome.Fatal)
			}
			return ErrUnsuccessful
		}
		return nil
	},
}
