// Package gate guards protected routes. Each check returns an Outcome that
// either carries verified claims or the error to respond with; the middleware
// turns that into "continue" or a written error response.
package gate

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/account/entity"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/token"
)

// Verifier checks a raw token. Any failure is reported as an error.
type Verifier interface {
	Verify(raw string) (*token.Claims, error)
}

// Outcome is the result of a check: exactly one of claims or err is set.
type Outcome struct {
	claims *token.Claims
	err    *apperr.Error
}

func allow(c *token.Claims) Outcome { return Outcome{claims: c} }

func deny(err *apperr.Error) Outcome { return Outcome{err: err} }

// OK reports whether the request may proceed.
func (o Outcome) OK() bool { return o.err == nil }

// Claims returns the verified claims, or nil for a denied outcome.
func (o Outcome) Claims() *token.Claims { return o.claims }

// Err returns nil for an allowed outcome.
func (o Outcome) Err() error {
	if o.err == nil {
		return nil
	}
	return o.err
}

// Check is one gate evaluated against a request.
type Check func(r *http.Request) Outcome

// Gate evaluates checks against the token codec. It never touches the store.
type Gate struct {
	verifier Verifier
	logger   *zap.SugaredLogger
	metrics  *metrics.Metrics
}

func New(v Verifier, logger *zap.SugaredLogger, m *metrics.Metrics) *Gate {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Gate{verifier: v, logger: logger, metrics: m}
}

// Authenticate requires "Authorization: Bearer <token>". A missing header or
// any other scheme is MissingToken; a token that fails verification is
// InvalidToken.
func (g *Gate) Authenticate(r *http.Request) Outcome {
	raw, ok := bearer(r.Header.Get("Authorization"))
	if !ok {
		return deny(apperr.ErrMissingToken)
	}
	claims, err := g.verifier.Verify(raw)
	if err != nil {
		return deny(apperr.ErrInvalidToken)
	}
	return allow(claims)
}

// RequireAdmin authenticates once, then requires the ADMIN role.
func (g *Gate) RequireAdmin(r *http.Request) Outcome {
	out := g.Authenticate(r)
	if !out.OK() {
		return out
	}
	if out.claims.Role != entity.RoleAdmin {
		return deny(apperr.ErrAdminRequired)
	}
	return out
}

// Middleware runs check before next. On success the claims are attached to
// the request context; otherwise the error is written and next is skipped.
func (g *Gate) Middleware(name string, check Check) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			out := check(r)
			if !out.OK() {
				g.metrics.RecordOutcome(name, out.err.Kind.String())
				g.logger.Debugw("gate denied", "gate", name, "path", r.URL.Path, "kind", out.err.Kind.String())
				apperr.Write(w, g.logger, out.err)
				return
			}
			g.metrics.RecordOutcome(name, "ok")
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), out.claims)))
		})
	}
}

func bearer(header string) (string, bool) {
	scheme, raw, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || raw == "" {
		return "", false
	}
	return raw, true
}

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying c.
func WithClaims(ctx context.Context, c *token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims attached by Middleware.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*token.Claims)
	return c, ok && c != nil
}
