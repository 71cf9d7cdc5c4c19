package fsutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteAtomic writes a file through a temporary file in the same directory
// and renames it over `path` once `write` succeeded and the contents are
// synced. Readers of `path` observe either the old file or the new one,
// never a partial write.
func WriteAtomic(path string, perm os.FileMode, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	buffered := bufio.NewWriter(tmp)
	err = write(buffered)
	if err != nil {
		return err
	}
	err = buffered.Flush()
	if err != nil {
		return fmt.Errorf("flush temp file: %w", err)
	}
	err = tmp.Chmod(perm)
	if err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	err = tmp.Sync()
	if err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	err = os.Rename(tmpName, path)
	if err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// WriteFileAtomic is WriteAtomic for contents that are already in memory.
func WriteFileAtomic(path string, contents []byte, perm os.FileMode) error {
	return WriteAtomic(path, perm, func(w io.Writer) error {
		_, err := w.Write(contents)
		return err
	})
}
