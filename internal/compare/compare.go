// Package compare defines the contract for comparing ingested records with
// the production booking system.
//
// No production source is wired up. NotImplemented satisfies the contract
// and fails every call with ErrNotImplemented so callers surface the gap
// instead of reporting an empty, and therefore misleading, diff.
package compare

import (
	"context"
	"errors"
	"time"
)

// ErrNotImplemented is returned by comparers that have no production source.
var ErrNotImplemented = errors.New("production comparison not implemented")

// Request selects the records to compare: one bank for one calendar month.
type Request struct {
	BankCode int32
	Year     int
	Month    time.Month
}

// Unmatched is a production record with no ingested counterpart.
type Unmatched struct {
	IRCTCOrderNo int64     `json:"irctc_order_no"`
	BankCode     int32     `json:"bank_code"`
	Date         time.Time `json:"date"`
	Amount       string    `json:"amount"`
}

// Comparer finds production records missing from the ingested data.
type Comparer interface {
	Compare(ctx context.Context, req Request) ([]Unmatched, error)
}

// NotImplemented is the Comparer used until a production source exists.
type NotImplemented struct{}

func (NotImplemented) Compare(context.Context, Request) ([]Unmatched, error) {
	return nil, ErrNotImplemented
}
