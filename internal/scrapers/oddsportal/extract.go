package oddsportal

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/Larcf/footstats-data/internal/components/assert"
	"github.com/Larcf/footstats-data/internal/components/telemetry"
	"github.com/Larcf/footstats-data/internal/results"
	"github.com/Larcf/footstats-data/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_extractor_extract  = "extractor.extract"
	report_extractor_skip_row = "extractor.skip-row"
)

// Selectors are tried in order, the first one that matches anything wins.
// They lean on classes and link targets before falling back to column
// positions so small markup changes don't break extraction.
type Selectors struct {
	Table          []string
	SkipRowClasses []string
	League         []string
	Teams          []string
	Score          []string
	Odds           []string
	// OddsAttributes are read before falling back to the cell text.
	OddsAttributes []string
}

func DefaultSelectors() Selectors {
	return Selectors{
		Table: []string{
			"table.table-main",
			"table#tournamentTable",
			"div#tournamentTable table",
		},
		SkipRowClasses: []string{"center", "dark", "table-dummyrow", "nob-border"},
		League: []string{
			"td.league a",
			`a[href$="/results/"]`,
			"td:nth-child(1) a",
		},
		Teams: []string{
			"td.table-participant a",
			"td.name a",
			"td:nth-child(2) a",
			`td:not(:first-child) a[href*="/virtual-soccer/"]:not([href$="/results/"])`,
		},
		Score: []string{
			"td.table-score",
			"td.score",
			"td:nth-child(3)",
		},
		Odds: []string{
			"td.odds-nowrp",
			"td[xodd]",
			"td[data-odd]",
			"td.odds",
		},
		OddsAttributes: []string{"xodd", "data-odd"},
	}
}

// CandidateRow holds the raw fields of a table row, nothing about it is
// validated yet besides the score being two integers.
type CandidateRow struct {
	// Index is the position of the row in the table, counting skipped rows.
	Index     int
	League    string
	HomeTeam  string
	AwayTeam  string
	HomeGoals int
	AwayGoals int
	Odds      *results.Odds
}

// RowResult is either a candidate row or the error that row failed with.
type RowResult struct {
	Row CandidateRow
	Err error
}

type Extractor struct {
	selectors Selectors
	tel       telemetry.API
}

func NewExtractor(selectors Selectors, tel telemetry.API) Extractor {
	assert.NotNil(tel)
	assert.True(len(selectors.Table) > 0, "at least one table selector is required")
	return Extractor{
		selectors: selectors,
		tel:       telemetry.NewScopedAPI("oddsportal", tel),
	}
}

// Extract locates the results table, a missing table is a *StructureError.
// The returned sequence walks the table rows once, rows without the fields
// of a fixture are skipped and rows that have them but can't be read yield a
// *RowError.
func (e Extractor) Extract(body string) (iter.Seq[RowResult], error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var table *goquery.Selection
	for _, selector := range e.selectors.Table {
		found := doc.Find(selector)
		if found.Length() > 0 {
			table = found.First()
			break
		}
	}
	if table == nil {
		err := &StructureError{Selectors: e.selectors.Table}
		e.tel.ReportBroken(report_extractor_extract, err)
		return nil, err
	}

	rows := table.Find("tr")
	return func(yield func(RowResult) bool) {
		for i := range rows.Nodes {
			row, ok, err := e.extractRow(i, rows.Eq(i))
			if err != nil {
				if !yield(RowResult{Err: err}) {
					return
				}
				continue
			}
			if !ok {
				continue
			}
			if !yield(RowResult{Row: row}) {
				return
			}
		}
	}, nil
}

func (e Extractor) skip(index int, reason string) (CandidateRow, bool, error) {
	e.tel.ReportDebug(report_extractor_skip_row, "row", index, "reason", reason)
	return CandidateRow{}, false, nil
}

func (e Extractor) extractRow(index int, row *goquery.Selection) (CandidateRow, bool, error) {
	if htmlutil.HasAnyClass(row, e.selectors.SkipRowClasses) {
		return e.skip(index, "separator class")
	}
	if row.Find("td").Length() == 0 {
		return e.skip(index, "header row")
	}

	league, ok := htmlutil.FirstMatch(row, e.selectors.League)
	if !ok {
		return e.skip(index, "no league")
	}
	// a loose teams selector may also reach the league link
	teams, ok := htmlutil.FirstMatchExcept(row, e.selectors.Teams, league.First())
	if !ok {
		return e.skip(index, "no teams")
	}
	score, ok := htmlutil.FirstMatch(row, e.selectors.Score)
	if !ok {
		return e.skip(index, "no score")
	}

	scoreText := htmlutil.Text(score.First())
	if !strings.Contains(scoreText, ":") {
		return e.skip(index, "score without separator")
	}

	candidate := CandidateRow{
		Index:  index,
		League: htmlutil.Text(league.First()),
	}

	teamsText := htmlutil.Text(teams.First())
	home, away, err := splitTeams(teamsText)
	if err != nil {
		return CandidateRow{}, false, &RowError{Row: index, Field: "teams", Value: teamsText, Err: err}
	}
	candidate.HomeTeam = home
	candidate.AwayTeam = away

	homeGoals, awayGoals, err := splitScore(scoreText)
	if err != nil {
		return CandidateRow{}, false, &RowError{Row: index, Field: "score", Value: scoreText, Err: err}
	}
	candidate.HomeGoals = homeGoals
	candidate.AwayGoals = awayGoals

	cells, ok := htmlutil.FirstMatch(row, e.selectors.Odds)
	if ok {
		candidate.Odds = e.parseOdds(cells)
	}

	return candidate, true, nil
}

const teamsDelimiter = " - "

var errTeamsDelimiter = errors.New("expected exactly two teams separated by \" - \"")

func splitTeams(text string) (string, string, error) {
	parts := strings.Split(text, teamsDelimiter)
	if len(parts) != 2 {
		return "", "", errTeamsDelimiter
	}
	home := strings.TrimSpace(parts[0])
	away := strings.TrimSpace(parts[1])
	if home == "" || away == "" {
		return "", "", errTeamsDelimiter
	}
	return home, away, nil
}

func splitScore(text string) (int, int, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected two halves, got %d", len(parts))
	}
	home, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	away, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return home, away, nil
}

func (e Extractor) oddsValue(cell *goquery.Selection) string {
	for _, attr := range e.selectors.OddsAttributes {
		value, ok := cell.Attr(attr)
		if ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	return htmlutil.Text(cell)
}

// parseOdds maps the first three cells to home, draw and away. Cells that
// don't hold a positive decimal are left out, nil is returned if none do.
func (e Extractor) parseOdds(cells *goquery.Selection) *results.Odds {
	var odds results.Odds
	targets := []**float64{&odds.Home, &odds.Draw, &odds.Away}
	for i := 0; i < len(targets) && i < cells.Length(); i++ {
		value, ok := parseDecimal(e.oddsValue(cells.Eq(i)))
		if ok {
			*targets[i] = &value
		}
	}
	if odds.Empty() {
		return nil
	}
	return &odds
}

func parseDecimal(text string) (float64, bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	value, err := strconv.ParseFloat(text, 64)
	if err != nil || !isPositiveFinite(value) {
		return 0, false
	}
	return value, true
}
