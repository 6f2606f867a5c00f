package web

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/recon/internal/ingest"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
	dateParamLayout = "2006-01-02"
)

type bookingView struct {
	ID               int64     `json:"id"`
	BankCode         int32     `json:"bank_code"`
	TxnDate          string    `json:"txn_date"`
	CreditedOnDate   string    `json:"credited_on_date"`
	BookingAmount    string    `json:"booking_amount"`
	IRCTCOrderNo     int64     `json:"irctc_order_no"`
	BankBookingRefNo int64     `json:"bank_booking_ref_no"`
	CreatedAt        time.Time `json:"created_at"`
}

type refundView struct {
	ID               int64     `json:"id"`
	BankCode         int32     `json:"bank_code"`
	RefundDate       string    `json:"refund_date"`
	DebitedOnDate    string    `json:"debited_on_date"`
	RefundAmount     string    `json:"refund_amount"`
	IRCTCOrderNo     int64     `json:"irctc_order_no"`
	BankBookingRefNo int64     `json:"bank_booking_ref_no"`
	BankRefundRefNo  int64     `json:"bank_refund_ref_no"`
	CreatedAt        time.Time `json:"created_at"`
}

type recordsResponse struct {
	Type       ingest.TransactionType `json:"transaction_type"`
	Records    any                    `json:"records"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	TotalPages int                    `json:"total_pages"`
}

// handleRecords lists stored bookings or refunds, optionally filtered by
// bank and by an inclusive date range on the transaction date.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	typ, err := ingest.ParseTransactionType(chi.URLParam(r, "type"))
	if err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request: %w", err), http.StatusBadRequest)
		return
	}

	filter, page, pageSize, err := s.parseRecordQuery(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	resp := recordsResponse{Type: typ, Page: page, PageSize: pageSize}
	switch typ {
	case ingest.Booking:
		rows, total, err := s.records.ListBookings(r.Context(), filter)
		if err != nil {
			s.respondError(w, r, err, http.StatusInternalServerError)
			return
		}
		views := make([]bookingView, 0, len(rows))
		for _, b := range rows {
			views = append(views, bookingView{
				ID:               b.ID,
				BankCode:         b.BankCode,
				TxnDate:          formatDate(b.TxnDate),
				CreditedOnDate:   formatDate(b.CreditedOnDate),
				BookingAmount:    b.BookingAmount.StringFixed(2),
				IRCTCOrderNo:     b.IRCTCOrderNo,
				BankBookingRefNo: b.BankBookingRefNo,
				CreatedAt:        b.CreatedAt,
			})
		}
		resp.Records, resp.Total = views, total

	case ingest.Refund:
		rows, total, err := s.records.ListRefunds(r.Context(), filter)
		if err != nil {
			s.respondError(w, r, err, http.StatusInternalServerError)
			return
		}
		views := make([]refundView, 0, len(rows))
		for _, rf := range rows {
			views = append(views, refundView{
				ID:               rf.ID,
				BankCode:         rf.BankCode,
				RefundDate:       formatDate(rf.RefundDate),
				DebitedOnDate:    formatDate(rf.DebitedOnDate),
				RefundAmount:     rf.RefundAmount.StringFixed(2),
				IRCTCOrderNo:     rf.IRCTCOrderNo,
				BankBookingRefNo: rf.BankBookingRefNo,
				BankRefundRefNo:  rf.BankRefundRefNo,
				CreatedAt:        rf.CreatedAt,
			})
		}
		resp.Records, resp.Total = views, total
	}

	resp.TotalPages = int((resp.Total + int64(pageSize) - 1) / int64(pageSize))
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) parseRecordQuery(r *http.Request) (ingest.RecordFilter, int, int, error) {
	q := r.URL.Query()
	var f ingest.RecordFilter

	if bank := q.Get("bank"); bank != "" {
		code, err := s.registry.BankCode(bank)
		if err != nil {
			return f, 0, 0, err
		}
		f.BankCode = code
	}

	var err error
	if f.From, err = parseDateParam(q.Get("from"), "from"); err != nil {
		return f, 0, 0, err
	}
	if f.To, err = parseDateParam(q.Get("to"), "to"); err != nil {
		return f, 0, 0, err
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, 0, 0, fmt.Errorf("invalid request: to (%s) is before from (%s)", q.Get("to"), q.Get("from"))
	}

	page, err := parsePositiveInt(q.Get("page"), "page", 1)
	if err != nil {
		return f, 0, 0, err
	}
	pageSize, err := parsePositiveInt(q.Get("page_size"), "page_size", defaultPageSize)
	if err != nil {
		return f, 0, 0, err
	}
	pageSize = min(pageSize, maxPageSize)
	if page-1 > math.MaxInt32/pageSize {
		return f, 0, 0, fmt.Errorf("invalid request: page %d is out of range", page)
	}

	f.Limit = pageSize
	f.Offset = (page - 1) * pageSize
	return f, page, pageSize, nil
}

func parseDateParam(v, name string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateParamLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid request: %s must be YYYY-MM-DD, got %q", name, v)
	}
	return t, nil
}

func parsePositiveInt(v, name string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid request: %s must be a positive integer, got %q", name, v)
	}
	return n, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateParamLayout)
}
