package commands

import (
	"io"
	"strconv"
	"strings"

	"github.com/Larcf/footstats-data/internal/results"
	"github.com/Larcf/footstats-data/lib/textutil"

	"github.com/antzucaro/matchr"
	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func formatOdd(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}

// leagueSimilarity is the minimum Jaro-Winkler similarity for a league to
// match a --league query.
const leagueSimilarity = 0.85

// filterLeague keeps the matches whose league contains the query or is close
// enough to it, comparisons ignore case and whitespace.
func filterLeague(matches []results.MatchRecord, query string) []results.MatchRecord {
	query = textutil.NormalizeName(query)
	if query == "" {
		return matches
	}
	var out []results.MatchRecord
	for _, m := range matches {
		league := textutil.NormalizeName(m.League)
		if strings.Contains(league, query) || matchr.JaroWinkler(league, query, false) >= leagueSimilarity {
			out = append(out, m)
		}
	}
	return out
}

func renderMatches(out io.Writer, matches []results.MatchRecord) {
	t := newTable(out)
	t.AppendHeader(table.Row{"League", "Home", "Score", "Away", "1", "X", "2", "ID"})
	for _, m := range matches {
		var odds results.Odds
		if m.Odds != nil {
			odds = *m.Odds
		}
		t.AppendRow(table.Row{
			m.League,
			m.HomeTeam,
			strconv.Itoa(m.HomeGoals) + ":" + strconv.Itoa(m.AwayGoals),
			m.AwayTeam,
			formatOdd(odds.Home),
			formatOdd(odds.Draw),
			formatOdd(odds.Away),
			m.ID,
		})
	}
	t.Render()
}
