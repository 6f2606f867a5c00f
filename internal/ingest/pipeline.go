package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Pipeline runs one uploaded file through read, normalize, schema check,
// coercion and persistence.
type Pipeline struct {
	store    Store
	registry *Registry
	logger   *slog.Logger
}

// NewPipeline returns a pipeline writing to store. A nil logger uses
// slog.Default().
func NewPipeline(store Store, registry *Registry, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{store: store, registry: registry, logger: logger}
}

// Registry returns the schema registry the pipeline validates against.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Process ingests one file. File-level problems (format, schema, columns,
// dates, bank) are returned before anything is written. Per-row storage
// failures are logged and reported in Result.FailedRows; rows written before
// a failure stay committed.
func (p *Pipeline) Process(ctx context.Context, up Upload) (*Result, error) {
	start := time.Now()
	log := p.logger.With("file", up.FileName, "bank", up.Bank, "type", up.Type)
	log.Info("processing file", "bytes", len(up.Data))

	batch, err := p.prepare(up, log)
	if err != nil {
		log.Error("file rejected", "error", err)
		return nil, err
	}

	code, err := p.registry.BankCode(up.Bank)
	if err != nil {
		log.Error("file rejected", "error", err)
		return nil, err
	}
	batch.SetBankCode(code)

	res := &Result{
		FileName:   up.FileName,
		Bank:       up.Bank,
		Type:       up.Type,
		BankCode:   code,
		TotalRows:  len(batch.Rows) + len(batch.Failed),
		FailedRows: batch.Failed,
	}
	for _, f := range batch.Failed {
		log.Warn("row skipped", "line", f.LineNumber, "reason", f.Reason)
	}

	for _, row := range batch.Rows {
		inserted, err := p.persist(ctx, row)
		keys := rowKeys(row)
		switch {
		case err != nil:
			log.Error("insert failed", append(keys, "line", row.Number, "error", err)...)
			res.FailedRows = append(res.FailedRows, FailedRow{
				LineNumber: row.Number,
				Reason:     fmt.Sprintf("insert failed: %v", err),
			})
		case inserted:
			res.Inserted++
			log.Info("record saved", keys...)
		default:
			res.Duplicates++
			log.Info("duplicate skipped", keys...)
		}
	}

	res.Duration = time.Since(start)
	log.Info("file processed",
		"rows", res.TotalRows,
		"inserted", res.Inserted,
		"duplicates", res.Duplicates,
		"failed", len(res.FailedRows),
		"duration", res.Duration,
	)
	return res, nil
}

// prepare performs every file-level check and returns the coerced rows.
func (p *Pipeline) prepare(up Upload, log *slog.Logger) (*Batch, error) {
	table, err := ReadTable(up.Data, up.FileName)
	if err != nil {
		return nil, err
	}

	table.NormalizeColumns()
	log.Debug("columns normalized", "columns", table.Columns, "rows", len(table.Rows))

	schema, err := p.registry.Lookup(up.Bank, up.Type)
	if err != nil {
		return nil, err
	}
	if err := schema.CheckColumns(table); err != nil {
		return nil, err
	}

	batch, err := Coerce(table, schema)
	if err != nil {
		var dates *InvalidDatesError
		if errors.As(err, &dates) {
			for _, r := range dates.Rows {
				log.Error("invalid date", "line", r.LineNumber, "values", r.Values)
			}
		}
		return nil, err
	}
	return batch, nil
}

func (p *Pipeline) persist(ctx context.Context, row Row) (bool, error) {
	switch {
	case row.Booking != nil:
		return p.store.InsertBooking(ctx, *row.Booking)
	case row.Refund != nil:
		return p.store.InsertRefund(ctx, *row.Refund)
	default:
		return false, fmt.Errorf("row %d has no record", row.Number)
	}
}

// rowKeys returns the business identifiers used in per-row log entries.
func rowKeys(row Row) []any {
	if row.Refund != nil {
		return []any{
			"irctc_order_no", row.Refund.IRCTCOrderNo,
			"bank_refund_ref_no", row.Refund.BankRefundRefNo,
		}
	}
	if row.Booking != nil {
		return []any{
			"irctc_order_no", row.Booking.IRCTCOrderNo,
			"bank_booking_ref_no", row.Booking.BankBookingRefNo,
		}
	}
	return nil
}
