package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemOutput writes every recorded HTTP exchange to its own file
// inside a directory.
type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput creates the given directory if it doesn't exist, files
// of a previous run with the same ids are overwritten.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return FilesystemOutput{}, fmt.Errorf("create http dump dir: %w", err)
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	name := filepath.Join(o.directory, fmt.Sprintf("%s.http", id))
	err := os.WriteFile(name, []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}
