package handler

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"alkozay-factory-api/internal/report"
	"alkozay-factory-api/internal/service"
	"alkozay-factory-api/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves monthly reports and receipts.
type ReportHandler struct {
	ledger *service.LedgerService
}

// NewReportHandler creates a new report handler.
func NewReportHandler(ledger *service.LedgerService) *ReportHandler {
	return &ReportHandler{ledger: ledger}
}

// Monthly handles GET /api/v1/reports/{month}
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	rep, err := report.MonthlyReport(h.ledger.Snapshot(), chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, rep)
}

// MonthlyXLSX handles GET /api/v1/reports/{month}/xlsx
func (h *ReportHandler) MonthlyXLSX(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	rep, err := report.MonthlyReport(h.ledger.Snapshot(), month)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteMonthlyXLSX(&buf, rep); err != nil {
		writeError(w, err)
		return
	}
	response.Attachment(w, xlsxContentType, report.XLSXFileName(month), buf.Bytes())
}

// Receipt handles GET /api/v1/sales/{id}/receipt
func (h *ReportHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sale, err := h.ledger.Sale(id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Text(w, http.StatusOK, report.Receipt(h.ledger.Snapshot(), sale))
}
