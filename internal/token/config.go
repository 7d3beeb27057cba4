package token

import (
	"errors"
	"os"
	"strings"
	"time"
)

const (
	// DevSecret is only accepted outside production.
	// #nosec G101 -- well-known development default, rejected in production.
	DevSecret = "dev-secret-change-in-production"

	DefaultIssuer   = "pitchfork"
	DefaultAudience = "pitchfork-api"

	// Validity is the fixed lifetime of every issued token.
	Validity = 7 * 24 * time.Hour
)

var ErrSecretMissing = errors.New("JWT_SECRET is required in production")

type Config struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// ConfigFromEnv reads JWT_SECRET, JWT_ISSUER and JWT_AUDIENCE. With
// APP_ENV=production an absent secret is an error; otherwise DevSecret is used.
func ConfigFromEnv() (Config, error) {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		if IsProduction() {
			return Config{}, ErrSecretMissing
		}
		secret = DevSecret
	}
	iss := strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	if iss == "" {
		iss = DefaultIssuer
	}
	aud := strings.TrimSpace(os.Getenv("JWT_AUDIENCE"))
	if aud == "" {
		aud = DefaultAudience
	}
	return Config{Secret: []byte(secret), Issuer: iss, Audience: aud, TTL: Validity}, nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV"))) {
	case "production", "prod":
		return true
	}
	return false
}
