package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"surfup-server/internal/respond"
)

// pinger is the part of *sql.DB the health check uses.
type pinger interface {
	PingContext(ctx context.Context) error
}

type healthchecker struct {
	db pinger
}

func (h *healthchecker) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		slog.Error("failed to check database connectivity", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to check database connectivity")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(r chi.Router, db pinger) {
	h := &healthchecker{db: db}
	r.Get("/healthz", h.handleHealthz)
}
