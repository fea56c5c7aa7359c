package handler

import (
	"errors"
	"net/http"
	"strconv"

	"alkozay-factory-api/internal/ledger"
	"alkozay-factory-api/internal/service"
	"alkozay-factory-api/pkg/apierror"
	"alkozay-factory-api/pkg/response"
)

// BackupHandler serves backup export and import.
type BackupHandler struct {
	ledger *service.LedgerService
}

// NewBackupHandler creates a new backup handler.
func NewBackupHandler(ledger *service.LedgerService) *BackupHandler {
	return &BackupHandler{ledger: ledger}
}

// Export handles GET /api/v1/backup/export
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, name, err := h.ledger.ExportBackup()
	if err != nil {
		writeError(w, err)
		return
	}
	response.Attachment(w, "application/json", name, data)
}

// Preview handles POST /api/v1/backup/preview. The body is a backup file.
func (h *BackupHandler) Preview(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	summary, err := h.ledger.PreviewBackup(data)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, summary)
}

// Import handles POST /api/v1/backup/import?confirm=true. Without confirm the
// backup is validated and its summary returned with 412.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	summary, err := h.ledger.RestoreBackup(r.Context(), data, confirmed)
	if errors.Is(err, ledger.ErrNotConfirmed) {
		response.Error(w, apierror.PreconditionFailed(
			"importing "+summary.Name+" replaces ALL current data; resend with confirm=true"))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, summary)
}
