package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func normalizedTable(t *testing.T, csv string) *Table {
	t.Helper()
	table, err := ReadTable([]byte(csv), "f.csv")
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	table.NormalizeColumns()
	return table
}

func TestCoerce_Booking(t *testing.T) {
	s, err := mustRegistry(t).Lookup("karur_vysya", Booking)
	if err != nil {
		t.Fatal(err)
	}
	table := normalizedTable(t, "TXN DATE,IRCTC ORDER NO.,BANK BOOKING REF.NO.,BOOKING AMOUNT,CREDITED ON\n"+
		"05-Jan-24,1234567890,9876543210,1500.50,06-Jan-24\n"+
		"07-Jan-24,,12.0,10,08-Jan-24\n")

	batch, err := Coerce(table, s)
	if err != nil {
		t.Fatalf("Coerce() error = %v", err)
	}
	if len(batch.Rows) != 2 || len(batch.Failed) != 0 {
		t.Fatalf("got %d rows, %d failed; want 2, 0", len(batch.Rows), len(batch.Failed))
	}

	first := batch.Rows[0].Booking
	if first == nil {
		t.Fatal("first row has no booking record")
	}
	if !first.TxnDate.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("TxnDate = %v", first.TxnDate)
	}
	if !first.CreditedOnDate.Equal(time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("CreditedOnDate = %v", first.CreditedOnDate)
	}
	if !first.BookingAmount.Equal(decimal.RequireFromString("1500.50")) {
		t.Errorf("BookingAmount = %s", first.BookingAmount)
	}
	if first.IRCTCOrderNo != 1234567890 || first.BankBookingRefNo != 9876543210 {
		t.Errorf("refs = %d, %d", first.IRCTCOrderNo, first.BankBookingRefNo)
	}

	second := batch.Rows[1].Booking
	if second.IRCTCOrderNo != 0 {
		t.Errorf("blank order number = %d, want 0", second.IRCTCOrderNo)
	}
	if second.BankBookingRefNo != 12 {
		t.Errorf("BankBookingRefNo = %d, want 12", second.BankBookingRefNo)
	}
	if batch.Rows[1].Number != 3 {
		t.Errorf("Number = %d, want 3", batch.Rows[1].Number)
	}

	batch.SetBankCode(40)
	if first.BankCode != 40 || second.BankCode != 40 {
		t.Error("SetBankCode() did not update every record")
	}
}

func TestCoerce_RefundOptionalRefs(t *testing.T) {
	s, err := mustRegistry(t).Lookup("hdfc", Refund)
	if err != nil {
		t.Fatal(err)
	}
	table := normalizedTable(t, "REFUND DATE,REFUND ORDER NO.,REFUND AMOUNT,CREDITED ON\n"+
		"10-Mar-24,555,99.99,11-Mar-24\n")

	batch, err := Coerce(table, s)
	if err != nil {
		t.Fatalf("Coerce() error = %v", err)
	}
	r := batch.Rows[0].Refund
	if r == nil {
		t.Fatal("expected refund record")
	}
	if r.IRCTCOrderNo != 555 || r.BankBookingRefNo != 0 || r.BankRefundRefNo != 0 {
		t.Errorf("refs = %d, %d, %d", r.IRCTCOrderNo, r.BankBookingRefNo, r.BankRefundRefNo)
	}
	if !r.DebitedOnDate.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("DebitedOnDate = %v", r.DebitedOnDate)
	}
}

func TestCoerce_InvalidDatesRejectTable(t *testing.T) {
	s, err := mustRegistry(t).Lookup("karur_vysya", Booking)
	if err != nil {
		t.Fatal(err)
	}
	table := normalizedTable(t, "TXN DATE,IRCTC ORDER NO.,BANK BOOKING REF.NO.,BOOKING AMOUNT,CREDITED ON\n"+
		"05-Jan-24,1,1,1.00,06-Jan-24\n"+
		"2024-01-05,2,2,2.00,06-Jan-24\n"+
		"05-Jan-24,3,3,3.00,\n")

	batch, err := Coerce(table, s)
	if batch != nil {
		t.Error("no batch should be returned when dates are invalid")
	}
	var dates *InvalidDatesError
	if !errors.As(err, &dates) {
		t.Fatalf("error = %v, want *InvalidDatesError", err)
	}
	if !errors.Is(err, ErrInvalidDates) {
		t.Error("InvalidDatesError should match ErrInvalidDates")
	}
	if len(dates.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(dates.Rows))
	}
	if dates.Rows[0].LineNumber != 3 || dates.Rows[1].LineNumber != 4 {
		t.Errorf("line numbers = %d, %d; want 3, 4", dates.Rows[0].LineNumber, dates.Rows[1].LineNumber)
	}
	if got := dates.Rows[0].Values["TXNDATE"]; got != "2024-01-05" {
		t.Errorf("Values[TXNDATE] = %q", got)
	}
}

func TestCoerce_InvalidAmountFailsRowOnly(t *testing.T) {
	s, err := mustRegistry(t).Lookup("karur_vysya", Booking)
	if err != nil {
		t.Fatal(err)
	}
	table := normalizedTable(t, "TXN DATE,IRCTC ORDER NO.,BANK BOOKING REF.NO.,BOOKING AMOUNT,CREDITED ON\n"+
		"05-Jan-24,1,1,abc,06-Jan-24\n"+
		"05-Jan-24,2,2,2.00,06-Jan-24\n")

	batch, err := Coerce(table, s)
	if err != nil {
		t.Fatalf("Coerce() error = %v", err)
	}
	if len(batch.Rows) != 1 || len(batch.Failed) != 1 {
		t.Fatalf("got %d rows, %d failed; want 1, 1", len(batch.Rows), len(batch.Failed))
	}
	if batch.Failed[0].LineNumber != 2 {
		t.Errorf("failed line = %d, want 2", batch.Failed[0].LineNumber)
	}
}
