// Package token signs and verifies the HS256 JWTs that carry an identity's
// tenant and role between requests. Tokens are stateless: nothing is stored and
// a single token cannot be revoked; rotating the secret invalidates all of them.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/account/entity"
)

// ErrInvalidToken is the only failure Verify reports. Bad signature, wrong
// issuer or audience, expiry and malformed input are deliberately not told apart.
var ErrInvalidToken = errors.New("invalid token")

// Principal is what a token asserts about its bearer.
type Principal struct {
	UserID         string      `json:"userId"`
	OrganizationID string      `json:"organizationId"`
	Role           entity.Role `json:"role"`
	Email          string      `json:"email"`
}

// Claims is the full signed payload.
type Claims struct {
	Principal
	jwt.RegisteredClaims
}

// Codec signs and verifies tokens with one process-wide symmetric key.
type Codec struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

// NewCodec builds a Codec from cfg.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrSecretMissing
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = Validity
	}
	c := &Codec{
		secret:   cfg.Secret,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
		now:      time.Now,
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	return c, nil
}

// Sign mints a token for p valid for the configured window from now.
func (c *Codec) Sign(p Principal) (string, error) {
	now := c.now()
	claims := Claims{
		Principal: p,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   p.UserID,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks signature, issuer, audience and expiry in one pass.
func (c *Codec) Verify(raw string) (*Claims, error) {
	var claims Claims
	tok, err := c.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" || claims.OrganizationID == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
