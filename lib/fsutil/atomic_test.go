package fsutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func listDir(t testing.TB, dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "live-matches.json")

	err := WriteFileAtomic(path, []byte(`{"v":1}`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	err = WriteFileAtomic(path, []byte(`{"v":2}`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, `{"v":2}`, string(contents))
	require.Equal(t, []string{"live-matches.json"}, listDir(t, filepath.Dir(path)))
}

func TestWriteAtomicKeepsPreviousOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live-matches.json")

	err := WriteFileAtomic(path, []byte(`{"v":1}`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	interrupted := errors.New("interrupted")
	err = WriteAtomic(path, 0644, func(w io.Writer) error {
		_, err := w.Write([]byte(`{"v":2, "matches": [`))
		if err != nil {
			return err
		}
		return interrupted
	})
	require.ErrorIs(t, err, interrupted)

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, `{"v":1}`, string(contents))
	require.Equal(t, []string{"live-matches.json"}, listDir(t, dir))
}
