package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// File-level failures. Each rejects the whole file before anything is
// written.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrParse             = errors.New("parse error")
	ErrUnknownSchema     = errors.New("unknown schema")
	ErrMissingColumns    = errors.New("missing required columns")
	ErrInvalidDates      = errors.New("invalid dates")
	ErrUnknownBank       = errors.New("unknown bank")
)

// MissingColumnsError lists the required normalized columns absent from a
// table.
type MissingColumnsError struct {
	Bank    string
	Type    TransactionType
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumns, strings.Join(e.Missing, ", "))
}

func (e *MissingColumnsError) Unwrap() error { return ErrMissingColumns }

// InvalidDateRow is a source row whose occurrence or settlement date could
// not be parsed.
type InvalidDateRow struct {
	LineNumber int               `json:"line_number"`
	Values     map[string]string `json:"values"`
}

// InvalidDatesError reports every row with an unparsable date.
type InvalidDatesError struct {
	Rows []InvalidDateRow
}

func (e *InvalidDatesError) Error() string {
	lines := make([]string, 0, len(e.Rows))
	for _, r := range e.Rows {
		lines = append(lines, fmt.Sprintf("%d", r.LineNumber))
	}
	return fmt.Sprintf("%s in %d row(s): lines %s", ErrInvalidDates, len(e.Rows), strings.Join(lines, ", "))
}

func (e *InvalidDatesError) Unwrap() error { return ErrInvalidDates }

// parseError wraps a reader failure so it matches ErrParse while keeping the
// underlying cause.
func parseError(format Format, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrParse, format, err)
}
