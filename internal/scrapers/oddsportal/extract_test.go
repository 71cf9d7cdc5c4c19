package oddsportal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Larcf/footstats-data/internal/components/telemetry"
	"github.com/Larcf/footstats-data/internal/results"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func fixture(t testing.TB, name string) string {
	contents, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return string(contents)
}

func float(f float64) *float64 {
	return &f
}

func drain(t testing.TB, extractor Extractor, body string) ([]CandidateRow, []error) {
	seq, err := extractor.Extract(body)
	if err != nil {
		t.Fatal(err)
	}
	var rows []CandidateRow
	var errs []error
	for res := range seq {
		if res.Err != nil {
			errs = append(errs, res.Err)
			continue
		}
		rows = append(rows, res.Row)
	}
	return rows, errs
}

func TestExtract(t *testing.T) {
	tel := telemetry.NewRecorder()
	extractor := NewExtractor(DefaultSelectors(), tel)

	rows, errs := drain(t, extractor, fixture(t, "results.html"))

	expected := []CandidateRow{
		{
			Index:     3,
			League:    "Euro Cup",
			HomeTeam:  "Spain",
			AwayTeam:  "Italy",
			HomeGoals: 2,
			AwayGoals: 1,
			Odds:      &results.Odds{Home: float(1.85), Draw: float(3.4), Away: float(4.2)},
		},
		{
			Index:    4,
			League:   "Euro Cup",
			HomeTeam: "France",
			AwayTeam: "Germany",
			Odds:     &results.Odds{Draw: float(3.1)},
		},
		{
			// only reachable through the link and column fallbacks
			Index:     5,
			League:    "Copa",
			HomeTeam:  "Brazil",
			AwayTeam:  "Argentina",
			HomeGoals: 3,
			AwayGoals: 3,
		},
		{
			// out of range goals are rejected by the builder, not here
			Index:     11,
			League:    "Euro Cup",
			HomeTeam:  "Austria",
			AwayTeam:  "Poland",
			HomeGoals: 31,
		},
	}
	if diff := cmp.Diff(expected, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, errs, 2)
	var rowErr *RowError
	require.True(t, errors.As(errs[0], &rowErr))
	require.Equal(t, 9, rowErr.Row)
	require.Equal(t, "teams", rowErr.Field)
	require.Equal(t, "Netherlands vs Belgium", rowErr.Value)

	require.True(t, errors.As(errs[1], &rowErr))
	require.Equal(t, 10, rowErr.Row)
	require.Equal(t, "score", rowErr.Field)

	// separators, the ad row and the postponed fixture are skipped without errors
	require.True(t, tel.Has(telemetry.REPORT_DEBUG, report_extractor_skip_row))
	require.Empty(t, tel.Reports(telemetry.REPORT_BROKEN))
}

func TestExtractIsDeterministic(t *testing.T) {
	extractor := NewExtractor(DefaultSelectors(), telemetry.NewRecorder())
	body := fixture(t, "results.html")

	firstRows, firstErrs := drain(t, extractor, body)
	secondRows, secondErrs := drain(t, extractor, body)

	require.Equal(t, firstRows, secondRows)
	require.Equal(t, len(firstErrs), len(secondErrs))
	for i := range firstErrs {
		require.Equal(t, firstErrs[i].Error(), secondErrs[i].Error())
	}
}

func TestExtractStopsWhenConsumerStops(t *testing.T) {
	extractor := NewExtractor(DefaultSelectors(), telemetry.NewRecorder())
	seq, err := extractor.Extract(fixture(t, "results.html"))
	if err != nil {
		t.Fatal(err)
	}

	count := 0
	for range seq {
		count++
		break
	}
	require.Equal(t, 1, count)
}

func TestExtractMissingTable(t *testing.T) {
	tel := telemetry.NewRecorder()
	extractor := NewExtractor(DefaultSelectors(), tel)

	_, err := extractor.Extract(fixture(t, "no-table.html"))
	var structureErr *StructureError
	require.True(t, errors.As(err, &structureErr))
	require.Equal(t, DefaultSelectors().Table, structureErr.Selectors)
	require.True(t, tel.Has(telemetry.REPORT_BROKEN, report_extractor_extract))
}

func TestExtractEmptyTable(t *testing.T) {
	extractor := NewExtractor(DefaultSelectors(), telemetry.NewRecorder())
	rows, errs := drain(t, extractor, fixture(t, "empty.html"))
	require.Empty(t, rows)
	require.Empty(t, errs)
}

func TestExtractFallbackTable(t *testing.T) {
	extractor := NewExtractor(DefaultSelectors(), telemetry.NewRecorder())
	rows, errs := drain(t, extractor, `
		<div id="tournamentTable"><table>
			<tr><td><a>Liga X</a></td><td><a>TeamA - TeamB</a></td><td>2:1</td><td data-odd="2,5">x</td></tr>
		</table></div>`)
	require.Empty(t, errs)
	require.Len(t, rows, 1)
	require.Equal(t, "Liga X", rows[0].League)
	require.Equal(t, "TeamA", rows[0].HomeTeam)
	require.Equal(t, "TeamB", rows[0].AwayTeam)
	require.Equal(t, &results.Odds{Home: float(2.5)}, rows[0].Odds)
}

func TestExtractPositionalLayout(t *testing.T) {
	tel := telemetry.NewRecorder()
	extractor := NewExtractor(DefaultSelectors(), tel)

	rows, errs := drain(t, extractor, fixture(t, "positional.html"))
	require.Empty(t, errs)

	expected := []CandidateRow{
		{Index: 0, League: "Liga X", HomeTeam: "TeamA", AwayTeam: "TeamB", HomeGoals: 2, AwayGoals: 1},
		{Index: 2, League: "Liga Y", HomeTeam: "TeamC", AwayTeam: "TeamD"},
		{Index: 3, League: "Liga Z", HomeTeam: "TeamE", AwayTeam: "TeamF", HomeGoals: 1, AwayGoals: 3},
	}
	if diff := cmp.Diff(expected, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractTeamsNeverTakeLeagueLink(t *testing.T) {
	selectors := DefaultSelectors()
	// only the link heuristic, which also reaches the league link
	selectors.Teams = []string{`a[href*="/virtual-soccer/"]:not([href$="/results/"])`}
	extractor := NewExtractor(selectors, telemetry.NewRecorder())

	rows, errs := drain(t, extractor, `
		<table class="table-main">
			<tr>
				<td><a href="/virtual-soccer/liga-x/">Liga X</a></td>
				<td><a href="/virtual-soccer/liga-x/teama-teamb-1/">TeamA - TeamB</a></td>
				<td>2:1</td>
			</tr>
			<tr>
				<td><a href="/virtual-soccer/liga-x/">Liga X</a></td>
				<td>TeamC - TeamD</td>
				<td>1:1</td>
			</tr>
		</table>`)
	require.Empty(t, errs)
	require.Len(t, rows, 1)
	require.Equal(t, "Liga X", rows[0].League)
	require.Equal(t, "TeamA", rows[0].HomeTeam)
	require.Equal(t, "TeamB", rows[0].AwayTeam)
}

func TestSplitTeams(t *testing.T) {
	table := []struct {
		input string
		home  string
		away  string
		fails bool
	}{
		{input: "TeamA - TeamB", home: "TeamA", away: "TeamB"},
		{input: "Real Madrid - Atletico-MG", home: "Real Madrid", away: "Atletico-MG"},
		{input: "TeamA vs TeamB", fails: true},
		{input: "A - B - C", fails: true},
		{input: " - TeamB", fails: true},
		{input: "", fails: true},
	}
	for _, row := range table {
		home, away, err := splitTeams(row.input)
		if row.fails {
			require.Error(t, err, row.input)
			continue
		}
		require.NoError(t, err, row.input)
		require.Equal(t, row.home, home)
		require.Equal(t, row.away, away)
	}
}

func TestSplitScore(t *testing.T) {
	table := []struct {
		input string
		home  int
		away  int
		fails bool
	}{
		{input: "2:1", home: 2, away: 1},
		{input: "10 : 0", home: 10, away: 0},
		{input: "1:x", fails: true},
		{input: "1:2:3", fails: true},
		{input: ":", fails: true},
	}
	for _, row := range table {
		home, away, err := splitScore(row.input)
		if row.fails {
			require.Error(t, err, row.input)
			continue
		}
		require.NoError(t, err, row.input)
		require.Equal(t, row.home, home)
		require.Equal(t, row.away, away)
	}
}

func TestParseDecimal(t *testing.T) {
	table := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{input: "1.85", expected: 1.85, ok: true},
		{input: " 2,10 ", expected: 2.1, ok: true},
		{input: "-", ok: false},
		{input: "0", ok: false},
		{input: "-1.5", ok: false},
		{input: "Inf", ok: false},
		{input: "NaN", ok: false},
	}
	for _, row := range table {
		value, ok := parseDecimal(row.input)
		require.Equal(t, row.ok, ok, row.input)
		if ok {
			require.Equal(t, row.expected, value)
		}
	}
}
