package results

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Larcf/footstats-data/lib/fsutil"
)

// DefaultPath is where the batch is written when no path is configured.
const DefaultPath = "live-matches.json"

// WriteAtomic replaces the file at path with the batch, a reader sees either
// the previous file or the new one in full.
func WriteAtomic(path string, batch Batch) error {
	err := fsutil.WriteAtomic(path, 0644, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		// team names can contain '&' and friends, keep them readable
		encoder.SetEscapeHTML(false)
		return encoder.Encode(batch)
	})
	if err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	return nil
}

func Read(path string) (Batch, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Batch{}, err
	}
	var batch Batch
	err = json.Unmarshal(contents, &batch)
	if err != nil {
		return Batch{}, fmt.Errorf("parse batch %s: %w", path, err)
	}
	return batch, nil
}
