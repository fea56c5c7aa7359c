package handler

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"alkozay-factory-api/internal/ledger"
	"alkozay-factory-api/internal/model"
	"alkozay-factory-api/internal/report"
	"alkozay-factory-api/internal/service"
	"alkozay-factory-api/pkg/apierror"
	"alkozay-factory-api/pkg/response"
)

// recentActivities is how many activity entries the dashboard shows.
const recentActivities = 10

// LedgerHandler serves imports, sales, inventory and settings.
type LedgerHandler struct {
	ledger *service.LedgerService
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(ledger *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// ImportRequest is the body of an import create or edit.
type ImportRequest struct {
	Supplier      string          `json:"sup" validate:"required,max=120"`
	Type          string          `json:"type" validate:"required,oneof=small large both"`
	QtySmall      int             `json:"qs" validate:"gte=0,max=100000000"`
	QtyLarge      int             `json:"ql" validate:"gte=0,max=100000000"`
	CostPerBottle decimal.Decimal `json:"costPerBottle"`
}

func (req ImportRequest) input() ledger.ImportInput {
	return ledger.ImportInput{
		Supplier:      req.Supplier,
		Type:          model.ImportType(req.Type),
		QtySmall:      req.QtySmall,
		QtyLarge:      req.QtyLarge,
		CostPerBottle: req.CostPerBottle,
	}
}

// SaleRequest is the body of a sale create or edit. Quantities are packs.
type SaleRequest struct {
	QtySmall int    `json:"qs" validate:"gte=0,max=10000000"`
	QtyLarge int    `json:"ql" validate:"gte=0,max=10000000"`
	Note     string `json:"note" validate:"max=200"`
}

func (req SaleRequest) input() ledger.SaleInput {
	return ledger.SaleInput{QtySmall: req.QtySmall, QtyLarge: req.QtyLarge, Note: req.Note}
}

// SettingsRequest is a partial settings update.
type SettingsRequest struct {
	Name       *string          `json:"name" validate:"omitempty,max=120"`
	Location   *string          `json:"location" validate:"omitempty,max=120"`
	PriceSmall *decimal.Decimal `json:"priceSmall"`
	PriceLarge *decimal.Decimal `json:"priceLarge"`
	MinSmall   *int             `json:"minSmall" validate:"omitempty,gte=0"`
	MinLarge   *int             `json:"minLarge" validate:"omitempty,gte=0"`
}

// SettingsResponse is the factory profile with its settings.
type SettingsResponse struct {
	Name     string         `json:"name"`
	Location string         `json:"location"`
	Settings model.Settings `json:"settings"`
}

// DashboardResponse is everything the dashboard shows.
type DashboardResponse struct {
	Stats      model.Stats         `json:"stats"`
	Stock      report.Stock        `json:"stock"`
	Chart      []report.ChartPoint `json:"chart"`
	Activities []model.Activity    `json:"activities"`
	Status     service.Status      `json:"status"`
}

// Dashboard handles GET /api/v1/dashboard
func (h *LedgerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	doc := h.ledger.Snapshot()
	acts := doc.Activities
	if len(acts) > recentActivities {
		acts = acts[:recentActivities]
	}
	response.OK(w, DashboardResponse{
		Stats:      h.ledger.Stats(),
		Stock:      report.StockOf(doc),
		Chart:      report.SalesChart(doc.Sales, h.ledger.Now()),
		Activities: acts,
		Status:     h.ledger.Status(),
	})
}

// ListImports handles GET /api/v1/imports
func (h *LedgerHandler) ListImports(w http.ResponseWriter, r *http.Request) {
	imports := h.ledger.Snapshot().Imports
	if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q"))); q != "" {
		filtered := imports[:0:0]
		for _, rec := range imports {
			if strings.Contains(strings.ToLower(rec.Supplier), q) || strings.Contains(rec.Date.Format("2006-01-02"), q) {
				filtered = append(filtered, rec)
			}
		}
		imports = filtered
	}

	page, limit := pageParams(r)
	start, end := paginate(len(imports), page, limit)
	response.JSONWithMeta(w, http.StatusOK, imports[start:end], page, limit, len(imports))
}

// CreateImport handles POST /api/v1/imports
func (h *LedgerHandler) CreateImport(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.ledger.RecordImport(r.Context(), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, rec)
}

// UpdateImport handles PUT /api/v1/imports/{id}
func (h *LedgerHandler) UpdateImport(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req ImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.ledger.EditImport(r.Context(), id, req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, rec)
}

// DeleteImport handles DELETE /api/v1/imports/{id}
func (h *LedgerHandler) DeleteImport(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.ledger.DeleteImport(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	response.NoContent(w)
}

// ListSales handles GET /api/v1/sales. q filters by note or date.
func (h *LedgerHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales := h.ledger.Snapshot().Sales
	if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q"))); q != "" {
		filtered := sales[:0:0]
		for _, s := range sales {
			if strings.Contains(strings.ToLower(s.Note), q) || strings.Contains(s.Date.Format("2006-01-02"), q) {
				filtered = append(filtered, s)
			}
		}
		sales = filtered
	}

	page, limit := pageParams(r)
	start, end := paginate(len(sales), page, limit)
	response.JSONWithMeta(w, http.StatusOK, sales[start:end], page, limit, len(sales))
}

// CreateSale handles POST /api/v1/sales
func (h *LedgerHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req SaleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.ledger.RecordSale(r.Context(), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, rec)
}

// UpdateSale handles PUT /api/v1/sales/{id}
func (h *LedgerHandler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req SaleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.ledger.EditSale(r.Context(), id, req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, rec)
}

// DeleteSale handles DELETE /api/v1/sales/{id}
func (h *LedgerHandler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.ledger.DeleteSale(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	response.NoContent(w)
}

// Inventory handles GET /api/v1/inventory
func (h *LedgerHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	response.OK(w, report.StockOf(h.ledger.Snapshot()))
}

// Activities handles GET /api/v1/activities
func (h *LedgerHandler) Activities(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.ledger.Snapshot().Activities)
}

// GetSettings handles GET /api/v1/settings
func (h *LedgerHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	doc := h.ledger.Snapshot()
	response.OK(w, SettingsResponse{
		Name:     doc.Meta.Name,
		Location: doc.Meta.Location,
		Settings: doc.Settings,
	})
}

// UpdateSettings handles PUT /api/v1/settings
func (h *LedgerHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	var details []apierror.FieldError
	if req.PriceSmall != nil && req.PriceSmall.IsNegative() {
		details = append(details, apierror.FieldError{Field: "priceSmall", Message: "must not be negative"})
	}
	if req.PriceLarge != nil && req.PriceLarge.IsNegative() {
		details = append(details, apierror.FieldError{Field: "priceLarge", Message: "must not be negative"})
	}
	if len(details) > 0 {
		writeError(w, apierror.ValidationError("request validation failed").WithDetails(details...))
		return
	}

	h.ledger.UpdateSettings(r.Context(), model.SettingsPatch{
		Name:       trimmed(req.Name),
		Location:   trimmed(req.Location),
		PriceSmall: req.PriceSmall,
		PriceLarge: req.PriceLarge,
		MinSmall:   req.MinSmall,
		MinLarge:   req.MinLarge,
	})
	h.GetSettings(w, r)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
