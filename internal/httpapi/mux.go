package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"surfup-server/internal/respond"
)

// NewRouter returns the root router with middleware, the health check and
// JSON answers for unknown routes. Feature modules register onto it.
// Repeated slashes are collapsed before routing, so /api/v1.0//2017-01-31
// reaches /{start} rather than /{start}/{end} with an empty start.
func NewRouter(db pinger) chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.CleanPath,
		assignRequestID,
		middleware.RequestID,
		requestLogger,
		recoverer,
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, r.Method+" not allowed on "+r.URL.Path)
	})

	registerHealthcheck(r, db)
	return r
}
