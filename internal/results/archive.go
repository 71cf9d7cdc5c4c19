package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const ArchiveSchema = `
create table if not exists run (
	id integer primary key autoincrement,
	run_id text not null unique,
	generated_at text not null,
	success integer not null,
	matches_processed integer not null,
	error_count integer not null
);

create table if not exists run_match (
	run_id text not null references run(run_id) on delete cascade,
	match_id text not null,
	league text not null,
	home_team text not null,
	away_team text not null,
	home_goals integer not null,
	away_goals integer not null,
	odds_home real,
	odds_draw real,
	odds_away real,
	timestamp text not null,
	primary key (run_id, match_id)
);
`

// Archive keeps a history of every batch in a sqlite or libsql database,
// unlike the artifact it is never overwritten.
type Archive struct {
	db *sql.DB
}

// NewArchive expects ArchiveSchema to be applied to the database already.
func NewArchive(db *sql.DB) Archive {
	return Archive{db: db}
}

// Append stores a batch under the given run id.
func (a Archive) Append(ctx context.Context, runId string, batch Batch) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`insert into run (run_id, generated_at, success, matches_processed, error_count)
		values (?, ?, ?, ?, ?)`,
		runId,
		batch.Metadata.GeneratedAt,
		batch.Status.Success,
		batch.Status.MatchesProcessed,
		batch.Status.ErrorCount,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(
		ctx,
		`insert into run_match (
			run_id, match_id, league, home_team, away_team,
			home_goals, away_goals, odds_home, odds_draw, odds_away, timestamp
		) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range batch.Matches {
		var odds Odds
		if m.Odds != nil {
			odds = *m.Odds
		}
		_, err = stmt.ExecContext(
			ctx,
			runId, m.ID, m.League, m.HomeTeam, m.AwayTeam,
			m.HomeGoals, m.AwayGoals,
			nullFloat(odds.Home), nullFloat(odds.Draw), nullFloat(odds.Away),
			m.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert match %s: %w", m.ID, err)
		}
	}

	return tx.Commit()
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

type Run struct {
	RunId       string
	GeneratedAt time.Time
	Status      Status
}

// Runs returns the latest runs, newest first.
func (a Archive) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := a.db.QueryContext(
		ctx,
		`select run_id, generated_at, success, matches_processed, error_count
		from run order by id desc limit ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var generatedAt string
		err = rows.Scan(
			&run.RunId,
			&generatedAt,
			&run.Status.Success,
			&run.Status.MatchesProcessed,
			&run.Status.ErrorCount,
		)
		if err != nil {
			return nil, err
		}
		run.GeneratedAt, err = time.Parse(time.RFC3339, generatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse generated_at of run %s: %w", run.RunId, err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Matches returns the records stored under a run, in insertion order.
func (a Archive) Matches(ctx context.Context, runId string) ([]MatchRecord, error) {
	rows, err := a.db.QueryContext(
		ctx,
		`select match_id, league, home_team, away_team, home_goals, away_goals,
			odds_home, odds_draw, odds_away, timestamp
		from run_match where run_id = ? order by rowid`,
		runId,
	)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		var m MatchRecord
		var home, draw, away sql.NullFloat64
		err = rows.Scan(
			&m.ID, &m.League, &m.HomeTeam, &m.AwayTeam,
			&m.HomeGoals, &m.AwayGoals,
			&home, &draw, &away,
			&m.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		m.Minute = FinishedMinute
		m.Status = StatusFinished
		odds := Odds{Home: floatPtr(home), Draw: floatPtr(draw), Away: floatPtr(away)}
		if !odds.Empty() {
			m.Odds = &odds
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
