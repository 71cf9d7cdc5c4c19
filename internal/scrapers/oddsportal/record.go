package oddsportal

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"iter"
	"math"
	"strings"
	"time"

	"github.com/Larcf/footstats-data/internal/components/assert"
	"github.com/Larcf/footstats-data/internal/components/telemetry"
	"github.com/Larcf/footstats-data/internal/results"
)

const (
	report_builder_collect = "builder.collect"
	report_builder_rows    = "builder.rows"
	report_builder_errors  = "builder.row-errors"
)

const idPrefix = "op_"

func isPositiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// recordId hashes the fields that identify a fixture together with the batch
// timestamp, `ordinal` separates identical rows within the same batch.
func recordId(row CandidateRow, timestamp string, ordinal int) string {
	content := strings.Join([]string{
		row.League,
		row.HomeTeam,
		row.AwayTeam,
		fmt.Sprint(row.HomeGoals),
		fmt.Sprint(row.AwayGoals),
		timestamp,
	}, "|")
	if ordinal > 0 {
		content = fmt.Sprintf("%s|%d", content, ordinal)
	}
	sum := sha256.Sum256([]byte(content))
	return idPrefix + hex.EncodeToString(sum[:])[:16]
}

func validateOdds(odds *results.Odds) error {
	if odds == nil {
		return nil
	}
	outcomes := []struct {
		name  string
		value *float64
	}{
		{"home", odds.Home},
		{"draw", odds.Draw},
		{"away", odds.Away},
	}
	for _, o := range outcomes {
		if o.value != nil && !isPositiveFinite(*o.value) {
			return fmt.Errorf("%s odds %v is not a positive decimal", o.name, *o.value)
		}
	}
	return nil
}

func validateRow(row CandidateRow) *RowError {
	names := []struct {
		field string
		value string
	}{
		{"league", row.League},
		{"home_team", row.HomeTeam},
		{"away_team", row.AwayTeam},
	}
	for _, n := range names {
		if strings.TrimSpace(n.value) == "" {
			return &RowError{Row: row.Index, Field: n.field, Err: errors.New("must not be empty")}
		}
	}

	goals := []struct {
		field string
		value int
	}{
		{"home_goals", row.HomeGoals},
		{"away_goals", row.AwayGoals},
	}
	for _, g := range goals {
		if g.value < results.MinGoals || g.value > results.MaxGoals {
			return &RowError{
				Row:   row.Index,
				Field: g.field,
				Value: fmt.Sprint(g.value),
				Err:   fmt.Errorf("out of range [%d, %d]", results.MinGoals, results.MaxGoals),
			}
		}
	}

	err := validateOdds(row.Odds)
	if err != nil {
		return &RowError{Row: row.Index, Field: "odds", Err: err}
	}
	return nil
}

// Build validates a candidate row and turns it into a record stamped with
// the batch time `at`, a failed validation is a *RowError.
func Build(row CandidateRow, at time.Time) (results.MatchRecord, error) {
	return build(row, at.Format(time.RFC3339), 0)
}

func build(row CandidateRow, timestamp string, ordinal int) (results.MatchRecord, error) {
	rowErr := validateRow(row)
	if rowErr != nil {
		return results.MatchRecord{}, rowErr
	}

	var odds *results.Odds
	if row.Odds != nil && !row.Odds.Empty() {
		copied := *row.Odds
		odds = &copied
	}

	return results.MatchRecord{
		ID:        recordId(row, timestamp, ordinal),
		League:    strings.TrimSpace(row.League),
		HomeTeam:  strings.TrimSpace(row.HomeTeam),
		AwayTeam:  strings.TrimSpace(row.AwayTeam),
		HomeGoals: row.HomeGoals,
		AwayGoals: row.AwayGoals,
		Minute:    results.FinishedMinute,
		Status:    results.StatusFinished,
		Timestamp: timestamp,
		Odds:      odds,
	}, nil
}

// Collector turns a sequence of row results into records.
type Collector struct {
	tel telemetry.API
}

func NewCollector(tel telemetry.API) Collector {
	assert.NotNil(tel)
	return Collector{tel: telemetry.NewScopedAPI("oddsportal", tel)}
}

// Collect partitions the rows into records and failures. Failures never stop
// the iteration, ids are unique within the returned records.
func (c Collector) Collect(rows iter.Seq[RowResult], at time.Time) ([]results.MatchRecord, []error) {
	timestamp := at.Format(time.RFC3339)

	records := []results.MatchRecord{}
	var failures []error
	seen := map[string]bool{}
	occurrences := map[string]int{}

	for res := range rows {
		if res.Err != nil {
			failures = append(failures, res.Err)
			c.tel.ReportWarning(report_builder_collect, res.Err)
			continue
		}

		record, err := build(res.Row, timestamp, 0)
		if err != nil {
			failures = append(failures, err)
			c.tel.ReportWarning(report_builder_collect, err)
			continue
		}

		base := record.ID
		for seen[record.ID] {
			occurrences[base]++
			record.ID = recordId(res.Row, timestamp, occurrences[base])
		}
		seen[record.ID] = true
		records = append(records, record)
	}

	c.tel.ReportCount(report_builder_rows, int64(len(records)))
	c.tel.ReportCount(report_builder_errors, int64(len(failures)))
	return records, failures
}
