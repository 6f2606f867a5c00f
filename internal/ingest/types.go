package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType identifies which kind of statement a file carries.
type TransactionType string

const (
	Booking TransactionType = "booking"
	Refund  TransactionType = "refund"
)

// ParseTransactionType validates a transaction type identifier.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case Booking:
		return Booking, nil
	case Refund:
		return Refund, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Field is a target attribute of a booking or refund record.
type Field string

const (
	FieldTxnDate          Field = "txn_date"
	FieldCreditedOnDate   Field = "credited_on_date"
	FieldBookingAmount    Field = "booking_amount"
	FieldRefundDate       Field = "refund_date"
	FieldDebitedOnDate    Field = "debited_on_date"
	FieldRefundAmount     Field = "refund_amount"
	FieldIRCTCOrderNo     Field = "irctc_order_no"
	FieldBankBookingRefNo Field = "bank_booking_ref_no"
	FieldBankRefundRefNo  Field = "bank_refund_ref_no"
)

// fieldRole describes how a field is coerced and whether a schema must map it.
type fieldRole struct {
	kind      fieldKind
	mandatory bool
}

type fieldKind int

const (
	kindDate fieldKind = iota
	kindAmount
	kindRef
)

// fieldsByType lists the target fields each transaction type accepts.
var fieldsByType = map[TransactionType]map[Field]fieldRole{
	Booking: {
		FieldTxnDate:          {kind: kindDate, mandatory: true},
		FieldCreditedOnDate:   {kind: kindDate, mandatory: true},
		FieldBookingAmount:    {kind: kindAmount, mandatory: true},
		FieldIRCTCOrderNo:     {kind: kindRef, mandatory: true},
		FieldBankBookingRefNo: {kind: kindRef},
	},
	Refund: {
		FieldRefundDate:       {kind: kindDate, mandatory: true},
		FieldDebitedOnDate:    {kind: kindDate, mandatory: true},
		FieldRefundAmount:     {kind: kindAmount, mandatory: true},
		FieldIRCTCOrderNo:     {kind: kindRef, mandatory: true},
		FieldBankBookingRefNo: {kind: kindRef},
		FieldBankRefundRefNo:  {kind: kindRef},
	},
}

// Table is the uniform shape every reader produces: a header and rows of raw
// string cells in source order.
type Table struct {
	Columns []string
	Rows    [][]string

	// RowNumbers holds the 1-based source record number of each row, with
	// the header as record 1. Optional.
	RowNumbers []int
}

// RowNumber returns the source record number of row i.
func (t *Table) RowNumber(i int) int {
	if i < len(t.RowNumbers) {
		return t.RowNumbers[i]
	}
	return i + 2
}

// Cell returns the cell of row i under column position col, or "" when the
// row is shorter than the header.
func (t *Table) Cell(i, col int) string {
	row := t.Rows[i]
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// Row returns row i as a column name to cell mapping.
func (t *Table) Row(i int) map[string]string {
	m := make(map[string]string, len(t.Columns))
	for j, name := range t.Columns {
		m[name] = t.Cell(i, j)
	}
	return m
}

// HeaderIndex maps column names (lowercase, normalized) to their position.
type HeaderIndex map[string]int

// Index builds a HeaderIndex for the table. The first occurrence of a
// repeated column name wins.
func (t *Table) Index() HeaderIndex {
	idx := make(HeaderIndex, len(t.Columns))
	for i, name := range t.Columns {
		key := strings.ToLower(name)
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

// BookingRecord is one confirmed booking transaction for a bank.
type BookingRecord struct {
	BankCode         int32
	TxnDate          time.Time
	CreditedOnDate   time.Time
	BookingAmount    decimal.Decimal
	IRCTCOrderNo     int64
	BankBookingRefNo int64
}

// RefundRecord is one refund transaction for a bank.
type RefundRecord struct {
	BankCode         int32
	RefundDate       time.Time
	DebitedOnDate    time.Time
	RefundAmount     decimal.Decimal
	IRCTCOrderNo     int64
	BankBookingRefNo int64
	BankRefundRefNo  int64
}

// Upload is one file handed to the pipeline by the web layer.
type Upload struct {
	Data     []byte
	FileName string
	Bank     string
	Type     TransactionType
}

// FailedRow describes a row that was coerced but not persisted.
type FailedRow struct {
	LineNumber int      `json:"line_number"`
	Reason     string   `json:"reason"`
	Data       []string `json:"data,omitempty"`
}

// Result summarizes one processed file.
type Result struct {
	FileName   string          `json:"file_name"`
	Bank       string          `json:"bank"`
	Type       TransactionType `json:"transaction_type"`
	BankCode   int32           `json:"bank_code"`
	TotalRows  int             `json:"total_rows"`
	Inserted   int             `json:"inserted"`
	Duplicates int             `json:"duplicates"`
	FailedRows []FailedRow     `json:"failed_rows,omitempty"`
	Duration   time.Duration   `json:"duration"`
}
