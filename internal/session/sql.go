package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const Schema = `
create table if not exists session_state (
	key text primary key,
	state text not null,
	saved_at integer not null
);
`

// SQLStore keeps the session in a row of a sqlite/libsql database, `key`
// allows several targets to share a database.
type SQLStore struct {
	db  *sql.DB
	key string
}

// NewSQLStore expects Schema to be applied to the database already.
func NewSQLStore(db *sql.DB, key string) SQLStore {
	return SQLStore{db: db, key: key}
}

func (s SQLStore) Load(ctx context.Context) (State, bool, error) {
	var serialized string
	err := s.db.QueryRowContext(
		ctx,
		"select state from session_state where key = ?",
		s.key,
	).Scan(&serialized)
	if errors.Is(err, sql.ErrNoRows) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("query session: %w", err)
	}

	var state State
	err = json.Unmarshal([]byte(serialized), &state)
	if err != nil {
		return State{}, false, fmt.Errorf("parse session: %w", err)
	}
	return state, !state.Empty(), nil
}

func (s SQLStore) Save(ctx context.Context, state State) error {
	serialized, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`insert into session_state (key, state, saved_at) values (?, ?, ?)
		on conflict (key) do update set state = excluded.state, saved_at = excluded.saved_at`,
		s.key, string(serialized), state.SavedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s SQLStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "delete from session_state where key = ?", s.key)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
