package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Larcf/footstats-data/lib/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, store Store) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	// clearing an empty store is fine
	require.NoError(t, store.Clear(ctx))

	saved := State{
		UserAgent: "Mozilla/5.0 test",
		Cookies: []Cookie{
			{Name: "cf_clearance", Value: "abc"},
			{Name: "op_user_time_zone", Value: "-3"},
		},
		SavedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, saved))

	loaded, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	if diff := cmp.Diff(saved, loaded); diff != "" {
		t.Fatalf("loaded session mismatch (-want +got):\n%s", diff)
	}

	overwritten := State{UserAgent: "Mozilla/5.0 other", SavedAt: saved.SavedAt.Add(time.Hour)}
	require.NoError(t, store.Save(ctx, overwritten))
	loaded, ok, err = store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Mozilla/5.0 other", loaded.UserAgent)
	require.Empty(t, loaded.Cookies)

	require.NoError(t, store.Clear(ctx))
	_, ok, err = store.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")
	store := NewFileStore(path)
	testStore(t, store)

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestFileStoreCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	err := os.WriteFile(path, []byte("{not json"), 0600)
	if err != nil {
		t.Fatal(err)
	}
	_, ok, err := NewFileStore(path).Load(context.Background())
	require.Error(t, err)
	require.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore(0))
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemoryStore(time.Millisecond * 20)
	require.NoError(t, store.Save(context.Background(), State{UserAgent: "ua"}))

	time.Sleep(time.Millisecond * 60)

	_, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSQLStore(t *testing.T) {
	db := testutil.SetupDB(t, Schema)
	testStore(t, NewSQLStore(db, "oddsportal"))
}

func TestStateCookies(t *testing.T) {
	state := State{Cookies: []Cookie{{Name: "a", Value: "1"}}}
	httpCookies := state.HttpCookies()
	require.Len(t, httpCookies, 1)
	require.Equal(t, "a", httpCookies[0].Name)
	require.Equal(t, state.Cookies, CookiesFromHttp(httpCookies))
	require.False(t, state.Empty())
	require.True(t, State{}.Empty())
}
