package account

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/gate"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/metrics"
)

const maxBodyBytes = 1 << 20

// Handler exposes HTTP endpoints for signup, login and the caller's own
// identity and tenant.
type Handler struct {
	svc       *Service
	validator *Validator
	logger    *zap.SugaredLogger
	metrics   *metrics.Metrics
}

func NewHandler(svc *Service, logger *zap.SugaredLogger, m *metrics.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{svc: svc, validator: NewValidator(), logger: logger, metrics: m}
}

// Signup handles POST /api/auth/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.fail(w, "signup", err)
		return
	}
	res, err := h.svc.Signup(r.Context(), req.Input())
	if err != nil {
		h.fail(w, "signup", err)
		return
	}
	h.metrics.RecordOutcome("signup", "ok")
	apperr.WriteJSON(w, http.StatusCreated, res)
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.fail(w, "login", err)
		return
	}
	res, err := h.svc.Login(r.Context(), req.Input())
	if err != nil {
		h.fail(w, "login", err)
		return
	}
	h.metrics.RecordOutcome("login", "ok")
	apperr.WriteJSON(w, http.StatusOK, res)
}

// Me handles GET /api/auth/me behind the authenticate gate.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := gate.ClaimsFromContext(r.Context())
	if !ok {
		apperr.Write(w, h.logger, apperr.ErrMissingToken)
		return
	}
	user, err := h.svc.GetByID(r.Context(), claims.UserID)
	if err != nil {
		apperr.Write(w, h.logger, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Tenant handles GET /api/tenant behind the admin gate.
func (h *Handler) Tenant(w http.ResponseWriter, r *http.Request) {
	claims, ok := gate.ClaimsFromContext(r.Context())
	if !ok {
		apperr.Write(w, h.logger, apperr.ErrMissingToken)
		return
	}
	t, err := h.svc.GetTenant(r.Context(), claims.OrganizationID)
	if err != nil {
		apperr.Write(w, h.logger, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]any{"tenant": t})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Debugw("invalid payload", "path", r.URL.Path, "err", err)
		apperr.Write(w, h.logger, apperr.Validation("body"))
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.metrics.RecordOutcome(op, apperr.From(err).Kind.String())
	apperr.Write(w, h.logger, err)
}
