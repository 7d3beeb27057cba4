// Package health serves liveness and readiness probes backed by the database.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/apperr"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	SchemaUpToDate = "up-to-date"
	SchemaPending  = "pending"
	SchemaUnknown  = "unknown"
)

// RequiredTables are created by the account repository at startup.
var RequiredTables = []string{"tenants", "identities"}

const checkTimeout = 5 * time.Second

type Handler struct {
	db     *sqlx.DB
	logger *zap.SugaredLogger
}

func NewHandler(db *sqlx.DB, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{db: db, logger: logger}
}

// Schema reports which required tables are missing.
type Schema struct {
	Status  string   `json:"status"`
	Missing []string `json:"missing"`
}

// Status is the body of GET /api/health.
type Status struct {
	Status   string  `json:"status"`
	Database string  `json:"database"`
	Schema   *Schema `json:"schema,omitempty"`
}

// Health pings the database and checks the schema. A failed ping is 503;
// a missing table is reported but still 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		h.logger.Warnw("health check failed", "err", err)
		apperr.WriteJSON(w, http.StatusServiceUnavailable, Status{Status: StatusUnhealthy, Database: "disconnected"})
		return
	}
	apperr.WriteJSON(w, http.StatusOK, Status{
		Status:   StatusHealthy,
		Database: "connected",
		Schema:   h.schema(ctx),
	})
}

// Simple only pings.
func (h *Handler) Simple(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		apperr.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error"})
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ping(ctx context.Context) error {
	var one int
	return h.db.GetContext(ctx, &one, "SELECT 1")
}

func (h *Handler) schema(ctx context.Context) *Schema {
	const q = `SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name = ANY($1)`
	var present []string
	if err := h.db.SelectContext(ctx, &present, q, pq.Array(RequiredTables)); err != nil {
		h.logger.Warnw("schema check failed", "err", err)
		return &Schema{Status: SchemaUnknown, Missing: []string{}}
	}
	have := make(map[string]bool, len(present))
	for _, t := range present {
		have[t] = true
	}
	missing := []string{}
	for _, t := range RequiredTables {
		if !have[t] {
			missing = append(missing, t)
		}
	}
	s := &Schema{Status: SchemaUpToDate, Missing: missing}
	if len(missing) > 0 {
		s.Status = SchemaPending
	}
	return s
}
