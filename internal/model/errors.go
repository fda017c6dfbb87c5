package model

import "fmt"

// DataFormatError reports an input triple with a missing field. It is fatal
// for the protein's catalog only.
type DataFormatError struct {
	Row       int    // 1-based data row, 0 if unknown
	ProteinID string // empty when the protein id itself is missing
	Field     string
}

func (e *DataFormatError) Error() string {
	switch {
	case e.ProteinID == "" && e.Row > 0:
		return fmt.Sprintf("row %d: missing %s", e.Row, e.Field)
	case e.Row > 0:
		return fmt.Sprintf("protein %s: row %d: missing %s", e.ProteinID, e.Row, e.Field)
	default:
		return fmt.Sprintf("protein %s: missing %s", e.ProteinID, e.Field)
	}
}

// UsageError reports invalid configuration. It aborts the run before any
// enumeration starts.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return "usage: " + e.Msg }

// Usagef builds a UsageError from a format string.
func Usagef(format string, args ...any) *UsageError {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// DegenerateInputError reports a protein with no recorded sites.
// Enumeration is skipped for that protein.
type DegenerateInputError struct {
	ProteinID string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("protein %s: no glycosylation sites recorded", e.ProteinID)
}
