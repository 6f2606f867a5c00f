package ingest

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func mustRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry() error = %v", err)
	}
	return reg
}

func TestDefaultRegistry(t *testing.T) {
	reg := mustRegistry(t)

	for _, bank := range []string{"hdfc", "icici", "karur_vysya"} {
		for _, typ := range []TransactionType{Booking, Refund} {
			if _, err := reg.Lookup(bank, typ); err != nil {
				t.Errorf("Lookup(%s, %s) error = %v", bank, typ, err)
			}
		}
	}

	codes := map[string]int32{"hdfc": 101, "icici": 102, "karur_vysya": 40}
	for bank, want := range codes {
		got, err := reg.BankCode(bank)
		if err != nil || got != want {
			t.Errorf("BankCode(%s) = %d, %v; want %d", bank, got, err, want)
		}
	}

	if got := reg.Banks(); !reflect.DeepEqual(got, []string{"hdfc", "icici", "karur_vysya"}) {
		t.Errorf("Banks() = %q", got)
	}
}

func TestRegistry_Lookup(t *testing.T) {
	reg := mustRegistry(t)

	s, err := reg.Lookup(" Karur_Vysya ", Booking)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	want := []string{"TXNDATE", "IRCTCORDERNO", "BANKBOOKINGREFNO", "BOOKINGAMOUNT", "CREDITEDON"}
	if got := s.RequiredColumns(); !reflect.DeepEqual(got, want) {
		t.Errorf("RequiredColumns() = %q, want %q", got, want)
	}

	if _, err := reg.Lookup("sbi", Booking); !errors.Is(err, ErrUnknownSchema) {
		t.Errorf("Lookup(sbi) error = %v, want ErrUnknownSchema", err)
	}
	if _, err := reg.Lookup("hdfc", TransactionType("chargeback")); !errors.Is(err, ErrUnknownSchema) {
		t.Errorf("Lookup(chargeback) error = %v, want ErrUnknownSchema", err)
	}
	if _, err := reg.BankCode("sbi"); !errors.Is(err, ErrUnknownBank) {
		t.Errorf("BankCode(sbi) error = %v, want ErrUnknownBank", err)
	}
}

func TestSchema_CheckColumns(t *testing.T) {
	s, err := mustRegistry(t).Lookup("karur_vysya", Booking)
	if err != nil {
		t.Fatal(err)
	}

	full := &Table{Columns: []string{"txndate", "IRCTCORDERNO", "BANKBOOKINGREFNO", "BOOKINGAMOUNT", "CREDITEDON", "EXTRA"}}
	if err := s.CheckColumns(full); err != nil {
		t.Errorf("CheckColumns() error = %v", err)
	}

	partial := &Table{Columns: []string{"TXNDATE", "IRCTCORDERNO", "BOOKINGAMOUNT"}}
	err = s.CheckColumns(partial)
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("CheckColumns() error = %v, want *MissingColumnsError", err)
	}
	if !errors.Is(err, ErrMissingColumns) {
		t.Error("MissingColumnsError should match ErrMissingColumns")
	}
	if want := []string{"BANKBOOKINGREFNO", "CREDITEDON"}; !reflect.DeepEqual(missing.Missing, want) {
		t.Errorf("Missing = %q, want %q", missing.Missing, want)
	}
}

func TestLoadRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{
			name: "unknown transaction type",
			yaml: `
schemas:
  - bank: x
    type: chargeback
    columns: []`,
			wantMsg: "unknown transaction type",
		},
		{
			name: "field not valid for type",
			yaml: `
schemas:
  - bank: x
    type: booking
    columns:
      - {source: A, field: refund_date}`,
			wantMsg: "not valid for booking",
		},
		{
			name: "mandatory field missing",
			yaml: `
schemas:
  - bank: x
    type: refund
    columns:
      - {source: A, field: refund_date}
      - {source: B, field: debited_on_date}
      - {source: C, field: irctc_order_no}`,
			wantMsg: `mandatory field "refund_amount"`,
		},
		{
			name: "source listed twice after normalization",
			yaml: `
schemas:
  - bank: x
    type: booking
    columns:
      - {source: "TXN DATE", field: txn_date}
      - {source: "txn.date", field: credited_on_date}`,
			wantMsg: "listed twice",
		},
		{
			name: "duplicate schema",
			yaml: `
schemas:
  - {bank: x, type: booking, columns: [{source: A, field: txn_date}, {source: B, field: credited_on_date}, {source: C, field: booking_amount}, {source: D, field: irctc_order_no}]}
  - {bank: X, type: booking, columns: [{source: A, field: txn_date}, {source: B, field: credited_on_date}, {source: C, field: booking_amount}, {source: D, field: irctc_order_no}]}`,
			wantMsg: "duplicate schema",
		},
		{
			name:    "unknown key",
			yaml:    "bank_codez: {}",
			wantMsg: "decode schema registry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRegistry(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatal("LoadRegistry() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestNewRegistry_SchemaWithoutBankCode(t *testing.T) {
	reg, err := NewRegistry(map[string]int32{"hdfc": 101}, []Schema{{
		Bank: "axis",
		Type: Booking,
		Columns: []Column{
			{Source: "TXN DATE", Field: FieldTxnDate},
			{Source: "CREDITED ON", Field: FieldCreditedOnDate},
			{Source: "AMOUNT", Field: FieldBookingAmount},
			{Source: "ORDER NO.", Field: FieldIRCTCOrderNo},
		},
	}})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	s, err := reg.Lookup("axis", Booking)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if s.Columns[0].Source != "TXNDATE" {
		t.Errorf("source not normalized: %q", s.Columns[0].Source)
	}
	if _, err := reg.BankCode("axis"); !errors.Is(err, ErrUnknownBank) {
		t.Errorf("BankCode() error = %v, want ErrUnknownBank", err)
	}
}
