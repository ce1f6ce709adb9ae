package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Version is reported by /api/health and /api/info.
const Version = "1.0.0"

// Pinger checks database connectivity. Satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the unauthenticated service endpoints.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// RegisterRoutes registers /health and /info.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/info", h.Info)
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		log.Printf("ERROR: health check: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":   "error",
			"database": "unreachable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"database":  "connected",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Info handles GET /api/info.
func (h *HealthHandler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "Coffee Shop POS API",
		"version": Version,
		"endpoints": map[string]string{
			"auth":   "/api/auth",
			"orders": "/api/orders",
			"bills":  "/api/bills",
			"stock":  "/api/stock",
			"health": "/api/health",
			"live":   "/ws/{orders|bills|stock}",
		},
	})
}
