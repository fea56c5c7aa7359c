package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alkozay-factory-api/internal/backup"
	"alkozay-factory-api/internal/ledger"
	"alkozay-factory-api/internal/report"
	"alkozay-factory-api/internal/service"
)

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
		kind string
	}{
		{ledger.ErrInvalidSupplier, http.StatusBadRequest, "VALIDATION_ERROR"},
		{fmt.Errorf("wrapped: %w", ledger.ErrInvalidQuantity), http.StatusBadRequest, "VALIDATION_ERROR"},
		{fmt.Errorf("%w: missing sales", backup.ErrInvalidBackup), http.StatusBadRequest, "BAD_REQUEST"},
		{report.ErrInvalidMonth, http.StatusBadRequest, "BAD_REQUEST"},
		{ledger.ErrSaleNotFound, http.StatusNotFound, "NOT_FOUND"},
		{ledger.ErrImportNotFound, http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("%w: need 12", ledger.ErrInsufficientStock), http.StatusConflict, "CONFLICT"},
		{ledger.ErrNotConfirmed, http.StatusPreconditionFailed, "CONFIRMATION_REQUIRED"},
		{service.ErrNoSlotWritten, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)
			assert.Equal(t, tt.code, rec.Code)

			var body struct {
				Success bool `json:"success"`
				Error   struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.kind, body.Error.Code)
		})
	}
}

func TestDecodeJSONValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"type":"tiny","qs":-1}`))

	var dst ImportRequest
	err := decodeJSON(rec, req, &dst)
	require.Error(t, err)

	writeError(rec, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"sup"`)
	assert.Contains(t, rec.Body.String(), `"field":"type"`)
	assert.Contains(t, rec.Body.String(), `"field":"qs"`)
}

func TestPagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=2&limit=10", nil)
	page, limit := pageParams(req)
	assert.Equal(t, 2, page)
	assert.Equal(t, 10, limit)

	page, limit = pageParams(httptest.NewRequest(http.MethodGet, "/?page=-3&limit=9999", nil))
	assert.Equal(t, 1, page)
	assert.Equal(t, 500, limit)

	start, end := paginate(25, 2, 10)
	assert.Equal(t, []int{10, 20}, []int{start, end})
	start, end = paginate(25, 3, 10)
	assert.Equal(t, []int{20, 25}, []int{start, end})
	start, end = paginate(25, 9, 10)
	assert.Equal(t, []int{25, 25}, []int{start, end})
}
