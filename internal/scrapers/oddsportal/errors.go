package oddsportal

import (
	"fmt"
)

// FetchError is a transport failure or a non-2xx response, it is retried.
type FetchError struct {
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d (attempts: %d)", e.URL, e.StatusCode, e.Attempts)
	}
	return fmt.Sprintf("fetch %s: %v (attempts: %d)", e.URL, e.Err, e.Attempts)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// BlockedError means the response was an anti-bot interstitial, it is never
// retried with the same session.
type BlockedError struct {
	URL        string
	StatusCode int
	Phrase     string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("fetch %s: blocked (status %d, matched %q)", e.URL, e.StatusCode, e.Phrase)
}

// StructureError means the results table could not be found, no rows can be
// produced from the document.
type StructureError struct {
	Selectors []string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("results table not found (tried %v)", e.Selectors)
}

// RowError is a failure confined to a single table row, the row is dropped
// and the batch continues.
type RowError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
