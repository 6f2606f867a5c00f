package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	db "github.com/JonMunkholm/recon/internal/database"
)

// Store persists coerced records. Insert methods perform a single
// insert-if-absent on the full identity tuple and report whether a new row
// was written; inserted == false with a nil error means the record already
// existed.
type Store interface {
	InsertBooking(ctx context.Context, rec BookingRecord) (inserted bool, err error)
	InsertRefund(ctx context.Context, rec RefundRecord) (inserted bool, err error)
}

// RecordFilter narrows record listings. Zero values mean "no filter".
type RecordFilter struct {
	BankCode int32
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

// Validate reports paging values the queries cannot express.
func (f RecordFilter) Validate() error {
	if f.Limit < 0 || f.Limit > math.MaxInt32 {
		return fmt.Errorf("invalid request: limit %d out of range", f.Limit)
	}
	if f.Offset < 0 || f.Offset > math.MaxInt32 {
		return fmt.Errorf("invalid request: offset %d out of range", f.Offset)
	}
	return nil
}

// StoredBooking is a persisted booking record.
type StoredBooking struct {
	ID        int64
	CreatedAt time.Time
	BookingRecord
}

// StoredRefund is a persisted refund record.
type StoredRefund struct {
	ID        int64
	CreatedAt time.Time
	RefundRecord
}

// PostgresStore implements Store on the booking_data and refund_data tables.
type PostgresStore struct {
	conn db.DBTX
}

// NewPostgresStore returns a store using conn, typically a *pgxpool.Pool.
func NewPostgresStore(conn db.DBTX) *PostgresStore {
	return &PostgresStore{conn: conn}
}

func (s *PostgresStore) InsertBooking(ctx context.Context, rec BookingRecord) (bool, error) {
	_, err := db.New(s.conn).InsertBooking(ctx, db.InsertBookingParams{
		BankCode:         rec.BankCode,
		TxnDate:          toPgDate(rec.TxnDate),
		CreditedOnDate:   toPgDate(rec.CreditedOnDate),
		BookingAmount:    toPgNumeric(rec.BookingAmount),
		IrctcOrderNo:     toPgInt8(rec.IRCTCOrderNo),
		BankBookingRefNo: toPgInt8(rec.BankBookingRefNo),
	})
	return insertOutcome(err)
}

func (s *PostgresStore) InsertRefund(ctx context.Context, rec RefundRecord) (bool, error) {
	_, err := db.New(s.conn).InsertRefund(ctx, db.InsertRefundParams{
		BankCode:         rec.BankCode,
		RefundDate:       toPgDate(rec.RefundDate),
		DebitedOnDate:    toPgDate(rec.DebitedOnDate),
		RefundAmount:     toPgNumeric(rec.RefundAmount),
		IrctcOrderNo:     toPgInt8(rec.IRCTCOrderNo),
		BankBookingRefNo: toPgInt8(rec.BankBookingRefNo),
		BankRefundRefNo:  toPgInt8(rec.BankRefundRefNo),
	})
	return insertOutcome(err)
}

// ListBookings returns bookings ordered by transaction date, plus the total
// number matching f ignoring paging.
func (s *PostgresStore) ListBookings(ctx context.Context, f RecordFilter) ([]StoredBooking, int64, error) {
	if err := f.Validate(); err != nil {
		return nil, 0, err
	}
	q := db.New(s.conn)
	bank, from, to := filterParams(f)

	total, err := q.CountBookings(ctx, db.CountBookingsParams{BankCode: bank, FromDate: from, ToDate: to})
	if err != nil {
		return nil, 0, err
	}
	rows, err := q.ListBookings(ctx, db.ListBookingsParams{
		BankCode: bank,
		FromDate: from,
		ToDate:   to,
		Limit:    int32(f.Limit),
		Offset:   int32(f.Offset),
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]StoredBooking, 0, len(rows))
	for _, r := range rows {
		out = append(out, StoredBooking{
			ID:        r.ID,
			CreatedAt: r.CreatedAt.Time,
			BookingRecord: BookingRecord{
				BankCode:         r.BankCode,
				TxnDate:          r.TxnDate.Time,
				CreditedOnDate:   r.CreditedOnDate.Time,
				BookingAmount:    fromPgNumeric(r.BookingAmount),
				IRCTCOrderNo:     r.IrctcOrderNo.Int64,
				BankBookingRefNo: r.BankBookingRefNo.Int64,
			},
		})
	}
	return out, total, nil
}

// ListRefunds returns refunds ordered by refund date, plus the total number
// matching f ignoring paging.
func (s *PostgresStore) ListRefunds(ctx context.Context, f RecordFilter) ([]StoredRefund, int64, error) {
	if err := f.Validate(); err != nil {
		return nil, 0, err
	}
	q := db.New(s.conn)
	bank, from, to := filterParams(f)

	total, err := q.CountRefunds(ctx, db.CountRefundsParams{BankCode: bank, FromDate: from, ToDate: to})
	if err != nil {
		return nil, 0, err
	}
	rows, err := q.ListRefunds(ctx, db.ListRefundsParams{
		BankCode: bank,
		FromDate: from,
		ToDate:   to,
		Limit:    int32(f.Limit),
		Offset:   int32(f.Offset),
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]StoredRefund, 0, len(rows))
	for _, r := range rows {
		out = append(out, StoredRefund{
			ID:        r.ID,
			CreatedAt: r.CreatedAt.Time,
			RefundRecord: RefundRecord{
				BankCode:         r.BankCode,
				RefundDate:       r.RefundDate.Time,
				DebitedOnDate:    r.DebitedOnDate.Time,
				RefundAmount:     fromPgNumeric(r.RefundAmount),
				IRCTCOrderNo:     r.IrctcOrderNo.Int64,
				BankBookingRefNo: r.BankBookingRefNo.Int64,
				BankRefundRefNo:  r.BankRefundRefNo.Int64,
			},
		})
	}
	return out, total, nil
}

// insertOutcome interprets the result of an insert-if-absent. No returned
// row means the conflict clause fired.
func insertOutcome(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows), isUniqueViolation(err):
		return false, nil
	default:
		return false, err
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func filterParams(f RecordFilter) (pgtype.Int4, pgtype.Date, pgtype.Date) {
	var bank pgtype.Int4
	if f.BankCode != 0 {
		bank = pgtype.Int4{Int32: f.BankCode, Valid: true}
	}
	var from, to pgtype.Date
	if !f.From.IsZero() {
		from = toPgDate(f.From)
	}
	if !f.To.IsZero() {
		to = toPgDate(f.To)
	}
	return bank, from, to
}

func toPgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: true}
}

func toPgInt8(v int64) pgtype.Int8 {
	return pgtype.Int8{Int64: v, Valid: true}
}

func toPgNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func fromPgNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
