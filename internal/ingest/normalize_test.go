package ingest

import "testing"

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: " Bank Booking Ref.No. ", want: "BankBookingRefNo"},
		{input: "BankBookingRefNo", want: "BankBookingRefNo"},
		{input: "IRCTC ORDER NO.", want: "IRCTCORDERNO"},
		{input: "credited_on", want: "credited_on"},
		{input: "txn-date (dd-mmm-yy)", want: "txndateddmmmyy"},
		{input: "\tAmount ₹ ", want: "Amount"},
		{input: "Réf 2", want: "Réf2"},
		{input: "...", want: ""},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeColumn(tt.input); got != tt.want {
				t.Errorf("NormalizeColumn(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeColumn_Idempotent(t *testing.T) {
	inputs := []string{
		" Bank Booking Ref.No. ",
		"BankBookingRefNo",
		"IRCTC ORDER NO.",
		"  a_b-c d  ",
		"Réf 2",
	}
	for _, in := range inputs {
		once := NormalizeColumn(in)
		twice := NormalizeColumn(once)
		if once != twice {
			t.Errorf("NormalizeColumn not idempotent for %q: %q then %q", in, once, twice)
		}
	}

	a := NormalizeColumn(" Bank Booking Ref.No. ")
	b := NormalizeColumn(a)
	c := NormalizeColumn("BankBookingRefNo")
	if a != b || b != c {
		t.Errorf("got %q, %q, %q; want all equal", a, b, c)
	}
}

func TestTable_NormalizeColumns(t *testing.T) {
	table := &Table{Columns: []string{" TXN DATE ", "IRCTC ORDER NO."}}
	table.NormalizeColumns()

	if table.Columns[0] != "TXNDATE" || table.Columns[1] != "IRCTCORDERNO" {
		t.Errorf("Columns = %q", table.Columns)
	}

	idx := table.Index()
	if _, ok := idx["txndate"]; !ok {
		t.Error("Index() should be keyed by lower-cased names")
	}
}
