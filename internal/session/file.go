package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Larcf/footstats-data/lib/fsutil"
)

// FileStore keeps the session as a JSON document on the local filesystem.
type FileStore struct {
	path string
}

func NewFileStore(path string) FileStore {
	return FileStore{path: path}
}

func (s FileStore) Path() string {
	return s.path
}

func (s FileStore) Load(ctx context.Context) (State, bool, error) {
	contents, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("read session file: %w", err)
	}

	var state State
	err = json.Unmarshal(contents, &state)
	if err != nil {
		return State{}, false, fmt.Errorf("parse session file: %w", err)
	}
	return state, !state.Empty(), nil
}

func (s FileStore) Save(ctx context.Context, state State) error {
	serialized, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(s.path, serialized, 0600)
}

func (s FileStore) Clear(ctx context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
