package handler

import (
	"net/http"
	"runtime"
	"time"

	"alkozay-factory-api/internal/service"
	"alkozay-factory-api/pkg/response"
)

// Handler serves health and status checks.
type Handler struct {
	service   string
	version   string
	ledger    *service.LedgerService
	startTime time.Time
}

// New creates a new health handler.
func New(serviceName, version string, ledger *service.LedgerService) *Handler {
	return &Handler{
		service:   serviceName,
		version:   version,
		ledger:    ledger,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	})
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Ready     bool      `json:"ready"`
	Timestamp time.Time `json:"timestamp"`
	Checks    []Check   `json:"checks"`
}

// Check represents an individual readiness check.
type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Ready handles GET /api/v1/ready. The service is ready while at least one
// storage slot accepts writes.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := []Check{{Name: "api", Status: "ok"}}

	writable := false
	for _, slot := range h.ledger.Status().Slots {
		status := "ok"
		if !slot.Healthy {
			status = "failing"
		} else {
			writable = true
		}
		checks = append(checks, Check{Name: slot.Name, Status: status})
	}

	code := http.StatusOK
	if !writable {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, code, ReadyResponse{
		Ready:     writable,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	})
}

// StatusResponse represents the status response used by uptime monitors.
type StatusResponse struct {
	Service       string     `json:"service"`
	Status        string     `json:"status"`
	Timestamp     string     `json:"timestamp"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	MemoryMB      float64    `json:"memory_mb"`
	LastSave      *time.Time `json:"last_save"`
}

// Status handles GET /api/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	memoryMB := float64(memStats.Alloc) / 1024 / 1024

	resp := StatusResponse{
		Service:       h.service,
		Status:        "ok",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		MemoryMB:      float64(int(memoryMB*100)) / 100,
		LastSave:      h.ledger.Status().LastSave,
	}

	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	response.OK(w, resp)
}
