package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/templui/folio/internal/ctxkeys"
	"github.com/templui/folio/internal/db"
)

type healthHandler struct {
	db     *sqlx.DB
	driver string
}

func NewHealthHandler(database *sqlx.DB, driver string) *healthHandler {
	return &healthHandler{db: database, driver: driver}
}

// Health reports database connectivity and the applied migration version.
func (h *healthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := map[string]any{"status": "healthy"}
	if cfg := ctxkeys.Config(r.Context()); cfg != nil {
		resp["app"] = cfg.AppName
		resp["env"] = cfg.AppEnv
	}

	if err := h.db.PingContext(ctx); err != nil {
		resp["status"] = "unhealthy"
		resp["error"] = "database unreachable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	version, err := db.MigrationVersion(ctx, h.db.DB, h.driver)
	if err == nil {
		resp["schema_version"] = version
	}
	writeJSON(w, http.StatusOK, resp)
}
