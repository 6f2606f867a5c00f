// Package ingest turns uploaded bank reconciliation files into deduplicated
// booking and refund records.
//
// This package holds all of the domain logic and has no HTTP or job-runner
// dependencies. It can be driven by the web layer, a CLI, or tests.
//
// # Pipeline
//
// A single call to [Pipeline.Process] handles one uploaded file:
//
//  1. [ReadTable] detects the format from the file extension and produces a
//     uniform [Table] of string cells (CSV/TXT, XLSX, XLS, ODS, JSON)
//  2. Column names are normalized with [NormalizeColumn]
//  3. The [Registry] supplies the [Schema] for the (bank, transaction type)
//     pair and the table is checked for the schema's required columns
//  4. [Coerce] converts cells into typed [BookingRecord] or [RefundRecord]
//     values; any unparsable date rejects the whole file
//  5. Each record is written with an insert-if-absent against the [Store];
//     the storage uniqueness constraint is the only duplicate signal
//
// Steps 1-4 are fail-fast: nothing is written unless the whole file is
// readable, mapped and carries valid dates. Step 5 is per row and is not
// transactional, so a failure mid-file leaves earlier rows committed.
//
// # Schema Registry
//
// Bank layouts are described in schemas.yaml (embedded) and validated when
// the registry is built:
//
//	bank_codes:
//	  karur_vysya: 40
//	schemas:
//	  - bank: karur_vysya
//	    type: booking
//	    columns:
//	      - {source: "TXN DATE", field: txn_date}
//	      - {source: "IRCTC ORDER NO.", field: irctc_order_no}
//
// # Error Handling
//
// File-level failures wrap one of the sentinel errors ([ErrUnsupportedFormat],
// [ErrParse], [ErrUnknownSchema], [ErrMissingColumns], [ErrInvalidDates],
// [ErrUnknownBank]). [MapError] turns any error into a user-facing message
// with a support code.
package ingest
