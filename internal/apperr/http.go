package apperr

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Body is the JSON shape of every error response.
type Body struct {
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Write maps err onto its status and wire code. Internal failures are logged
// with their cause; the client only ever receives the opaque code.
func Write(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	ae := From(err)
	if ae == nil {
		ae = Internal("", nil)
	}
	if ae.Kind == KindInternal && logger != nil {
		logger.Errorw("request failed", "op", ae.Op, "err", ae.Cause)
	}
	WriteJSON(w, Status(ae.Kind), Body{Code: Code(ae.Kind), Field: ae.Field})
}
