package oddsportal

import (
	"context"
	"errors"

	"github.com/Larcf/footstats-data/internal/components/assert"
	"github.com/Larcf/footstats-data/internal/components/chrono"
	"github.com/Larcf/footstats-data/internal/components/telemetry"
	"github.com/Larcf/footstats-data/internal/results"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const report_scraper_run = "scraper.run"

var meter = otel.Meter("scrapers/oddsportal")
var matchesGauge, _ = meter.Int64Gauge("matches_processed")
var rowErrorsGauge, _ = meter.Int64Gauge("row_errors")

// Fetcher is the part of *Client the scraper depends on.
//
// note: fault injection point
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
	InvalidateSession(ctx context.Context)
}

// Outcome is the result of a run, Batch is always safe to write.
type Outcome struct {
	Batch results.Batch
	// Fatal is the error that aborted the run, nil if the page was read.
	Fatal error
	// RowErrors are the rows that were dropped.
	RowErrors []error
}

type Scraper struct {
	fetcher   Fetcher
	extractor Extractor
	collector Collector
	time      chrono.API
	tel       telemetry.API
}

func NewScraper(fetcher Fetcher, selectors Selectors, clock chrono.API, tel telemetry.API) Scraper {
	assert.NotNil(fetcher)
	assert.NotNil(clock)
	assert.NotNil(tel)

	return Scraper{
		fetcher:   fetcher,
		extractor: NewExtractor(selectors, tel),
		collector: NewCollector(tel),
		time:      clock,
		tel:       telemetry.NewScopedAPI("oddsportal", tel),
	}
}

// Run fetches the results page once and turns it into a batch.
//
// Fetch and structure failures produce an empty unsuccessful batch, the
// session is dropped on both so the next run starts cold.
func (s Scraper) Run(ctx context.Context) Outcome {
	ctx, span := tracer.Start(ctx, "scraper:Run")
	defer span.End()

	now := s.time.Now()

	fail := func(err error) Outcome {
		s.tel.ReportBroken(report_scraper_run, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{
			Batch: results.NewBatch(nil, 0, err, now),
			Fatal: err,
		}
	}

	body, err := s.fetcher.Fetch(ctx)
	if err != nil {
		// the fetcher drops the session on its own failures
		return fail(err)
	}

	rows, err := s.extractor.Extract(body)
	if err != nil {
		s.fetcher.InvalidateSession(ctx)
		return fail(err)
	}

	records, failures := s.collector.Collect(rows, now)
	batch := results.NewBatch(records, len(failures), nil, now)

	span.SetAttributes(
		attribute.Int("matches_processed", batch.Status.MatchesProcessed),
		attribute.Int("row_errors", len(failures)),
	)
	matchesGauge.Record(ctx, int64(batch.Status.MatchesProcessed))
	rowErrorsGauge.Record(ctx, int64(len(failures)))

	if !batch.Status.Success {
		s.tel.ReportWarning(report_scraper_run, errors.New("no matches found on the results page"))
	}

	return Outcome{
		Batch:     batch,
		RowErrors: failures,
	}
}
