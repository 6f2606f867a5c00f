package ingest

import (
	"fmt"
	"strings"
)

// Row is one coerced source row. Exactly one of Booking and Refund is set.
type Row struct {
	Number  int
	Booking *BookingRecord
	Refund  *RefundRecord
}

// Batch is the outcome of coercing a table.
type Batch struct {
	Type   TransactionType
	Rows   []Row
	Failed []FailedRow
}

// layoutFields names the date and amount fields of a transaction type.
type layoutFields struct {
	occurred, settled, amount Field
}

var typeLayouts = map[TransactionType]layoutFields{
	Booking: {occurred: FieldTxnDate, settled: FieldCreditedOnDate, amount: FieldBookingAmount},
	Refund:  {occurred: FieldRefundDate, settled: FieldDebitedOnDate, amount: FieldRefundAmount},
}

// Coerce converts every row of t into typed records according to s. t must be
// normalized and contain the schema's columns.
//
// Any row with an unparsable date fails the whole table with an
// *InvalidDatesError. Rows with an unparsable amount are returned in
// Batch.Failed. Bank codes are left at zero for the caller to fill in.
func Coerce(t *Table, s Schema) (*Batch, error) {
	layout, ok := typeLayouts[s.Type]
	if !ok {
		return nil, fmt.Errorf("%w: type %q", ErrUnknownSchema, s.Type)
	}

	idx := t.Index()
	pos := make(map[Field]int, len(s.Columns))
	for _, c := range s.Columns {
		if p, ok := idx[strings.ToLower(c.Source)]; ok {
			pos[c.Field] = p
		}
	}
	cell := func(i int, f Field) string {
		p, ok := pos[f]
		if !ok {
			return ""
		}
		return t.Cell(i, p)
	}

	batch := &Batch{Type: s.Type}
	var badDates []InvalidDateRow

	for i := range t.Rows {
		num := t.RowNumber(i)

		occurred, okOccurred := ParseDate(cell(i, layout.occurred))
		settled, okSettled := ParseDate(cell(i, layout.settled))
		if !okOccurred || !okSettled {
			badDates = append(badDates, InvalidDateRow{
				LineNumber: num,
				Values:     dateValues(s, i, cell, layout),
			})
			continue
		}
		if len(badDates) > 0 {
			// only collecting the remaining offenders now
			continue
		}

		rawAmount := cell(i, layout.amount)
		amount, ok := ParseAmount(rawAmount)
		if !ok {
			batch.Failed = append(batch.Failed, FailedRow{
				LineNumber: num,
				Reason:     fmt.Sprintf("invalid amount %q", rawAmount),
				Data:       t.Rows[i],
			})
			continue
		}

		order := ParseRefNumber(cell(i, FieldIRCTCOrderNo))
		bookingRef := ParseRefNumber(cell(i, FieldBankBookingRefNo))

		row := Row{Number: num}
		switch s.Type {
		case Booking:
			row.Booking = &BookingRecord{
				TxnDate:          occurred,
				CreditedOnDate:   settled,
				BookingAmount:    amount,
				IRCTCOrderNo:     order,
				BankBookingRefNo: bookingRef,
			}
		case Refund:
			row.Refund = &RefundRecord{
				RefundDate:       occurred,
				DebitedOnDate:    settled,
				RefundAmount:     amount,
				IRCTCOrderNo:     order,
				BankBookingRefNo: bookingRef,
				BankRefundRefNo:  ParseRefNumber(cell(i, FieldBankRefundRefNo)),
			}
		}
		batch.Rows = append(batch.Rows, row)
	}

	if len(badDates) > 0 {
		return nil, &InvalidDatesError{Rows: badDates}
	}
	return batch, nil
}

// SetBankCode stamps code on every record of the batch.
func (b *Batch) SetBankCode(code int32) {
	for _, r := range b.Rows {
		if r.Booking != nil {
			r.Booking.BankCode = code
		}
		if r.Refund != nil {
			r.Refund.BankCode = code
		}
	}
}

func dateValues(s Schema, i int, cell func(int, Field) string, layout layoutFields) map[string]string {
	values := make(map[string]string, 2)
	for _, f := range []Field{layout.occurred, layout.settled} {
		name, _ := s.source(f)
		values[name] = cell(i, f)
	}
	return values
}
