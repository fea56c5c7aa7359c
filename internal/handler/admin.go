package handler

import (
	"net/http"
	"runtime"
	"time"

	"alkozay-factory-api/internal/service"
	"alkozay-factory-api/pkg/response"
)

// AdminHandler handles maintenance requests.
type AdminHandler struct {
	ledger    *service.LedgerService
	startTime time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(ledger *service.LedgerService) *AdminHandler {
	return &AdminHandler{
		ledger:    ledger,
		startTime: time.Now(),
	}
}

// ResetRequest confirms a full reset.
type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

// Reset handles POST /api/v1/admin/reset
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.ledger.Reset(r.Context(), req.Confirm); err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, h.ledger.Status())
}

// Save handles POST /api/v1/admin/save
func (h *AdminHandler) Save(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledger.Save(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, result)
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().UTC().Format(time.RFC3339)
	stats["ledger"] = h.ledger.Status()
	stats["totals"] = h.ledger.Stats()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}
