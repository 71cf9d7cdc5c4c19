package results

import (
	"time"
)

const (
	Source        = "oddsportal"
	SchemaVersion = "1.1"
)

type Metadata struct {
	Source        string `json:"source"`
	SchemaVersion string `json:"schema_version"`
	GeneratedAt   string `json:"generated_at"`
	Timezone      string `json:"timezone"`
}

type Status struct {
	Success          bool `json:"success"`
	MatchesProcessed int  `json:"matches_processed"`
	ErrorCount       int  `json:"error_count"`
}

// Batch is the output of a single run.
type Batch struct {
	Metadata Metadata      `json:"metadata"`
	Status   Status        `json:"status"`
	Matches  []MatchRecord `json:"matches"`
}

// NewBatch assembles a batch generated at `now`.
//
// `rowErrors` is the number of rows that were dropped, `fatal` is the error
// that aborted the run before any rows could be read (nil if the run got that
// far). A fatal error adds one to the error count and discards the records.
func NewBatch(records []MatchRecord, rowErrors int, fatal error, now time.Time) Batch {
	errorCount := rowErrors
	if fatal != nil {
		records = nil
		errorCount++
	}
	if records == nil {
		records = []MatchRecord{}
	}

	return Batch{
		Metadata: Metadata{
			Source:        Source,
			SchemaVersion: SchemaVersion,
			GeneratedAt:   now.Format(time.RFC3339),
			Timezone:      now.Location().String(),
		},
		Status: Status{
			Success:          len(records) > 0,
			MatchesProcessed: len(records),
			ErrorCount:       errorCount,
		},
		Matches: records,
	}
}
