package session

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const memoryKey = "session"

// MemoryStore keeps the session in process memory, states expire after ttl
// (ttl <= 0 means never). Used by tests and by long lived embedders that
// run several batches from one process.
type MemoryStore struct {
	cache *expirable.LRU[string, State]
}

func NewMemoryStore(ttl time.Duration) MemoryStore {
	return MemoryStore{
		cache: expirable.NewLRU[string, State](1, nil, ttl),
	}
}

func (s MemoryStore) Load(ctx context.Context) (State, bool, error) {
	state, ok := s.cache.Get(memoryKey)
	if !ok {
		return State{}, false, nil
	}
	return state, true, nil
}

func (s MemoryStore) Save(ctx context.Context, state State) error {
	s.cache.Add(memoryKey, state)
	return nil
}

func (s MemoryStore) Clear(ctx context.Context) error {
	s.cache.Remove(memoryKey)
	return nil
}
