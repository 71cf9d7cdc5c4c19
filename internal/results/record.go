// Package results holds the schema of the persisted artifact and the ways it
// is written, read and archived.
package results

const (
	StatusFinished = "Finalizado"
	// FinishedMinute is fixed since the results page only lists finished fixtures.
	FinishedMinute = 90

	MinGoals = 0
	MaxGoals = 30
)

// Odds are decimal odds, a nil field means the cell was missing or unparsable.
type Odds struct {
	Home *float64 `json:"home,omitempty"`
	Draw *float64 `json:"draw,omitempty"`
	Away *float64 `json:"away,omitempty"`
}

// Empty is true if no outcome has odds.
func (o Odds) Empty() bool {
	return o.Home == nil && o.Draw == nil && o.Away == nil
}

type MatchRecord struct {
	ID        string `json:"id"`
	League    string `json:"league"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeGoals int    `json:"home_goals"`
	AwayGoals int    `json:"away_goals"`
	Minute    int    `json:"minute"`
	Status    string `json:"status"`
	// Timestamp is RFC 3339 with an explicit offset.
	Timestamp string `json:"timestamp"`
	Odds      *Odds  `json:"odds"`
}
