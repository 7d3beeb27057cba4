package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/account/entity"
)

func testConfig() Config {
	return Config{
		Secret:   []byte("0123456789abcdef0123456789abcdef"),
		Issuer:   DefaultIssuer,
		Audience: DefaultAudience,
		TTL:      Validity,
	}
}

func newTestCodec(t *testing.T, cfg Config) *Codec {
	t.Helper()
	c, err := NewCodec(cfg)
	require.NoError(t, err)
	return c
}

var alice = Principal{
	UserID:         "usr_1",
	OrganizationID: "org_1",
	Role:           entity.RoleAdmin,
	Email:          "a@x.com",
}

func TestSignVerify_RoundTrip(t *testing.T) {
	c := newTestCodec(t, testConfig())
	now := time.Now().Truncate(time.Second)
	c.now = func() time.Time { return now }

	raw, err := c.Sign(alice)
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(raw, ".")))

	claims, err := c.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, alice, claims.Principal)
	assert.Equal(t, DefaultIssuer, claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{DefaultAudience}, claims.Audience)
	assert.Equal(t, now.Add(Validity).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
}

func TestVerify_AllFailuresCollapse(t *testing.T) {
	cfg := testConfig()
	c := newTestCodec(t, cfg)

	good, err := c.Sign(alice)
	require.NoError(t, err)

	expired := func() string {
		past := newTestCodec(t, cfg)
		past.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
		s, err := past.Sign(alice)
		require.NoError(t, err)
		return s
	}()

	signedWith := func(mut func(*Config)) string {
		other := cfg
		mut(&other)
		s, err := newTestCodec(t, other).Sign(alice)
		require.NoError(t, err)
		return s
	}

	noneAlg := func() string {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Principal: alice, RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}})
		s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		return s
	}()

	tampered := func() string {
		parts := strings.Split(good, ".")
		swap := byte('A')
		if parts[2][0] == swap {
			swap = 'B'
		}
		parts[2] = string(swap) + parts[2][1:]
		return strings.Join(parts, ".")
	}()

	missingRole := func() string {
		p := alice
		p.Role = ""
		s, err := c.Sign(p)
		require.NoError(t, err)
		return s
	}()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"tampered", tampered},
		{"expired", expired},
		{"wrong secret", signedWith(func(c *Config) { c.Secret = []byte("another-secret-another-secret-xx") })},
		{"wrong issuer", signedWith(func(c *Config) { c.Issuer = "someone-else" })},
		{"wrong audience", signedWith(func(c *Config) { c.Audience = "other-api" })},
		{"alg none", noneAlg},
		{"missing role", missingRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := c.Verify(tt.raw)
			assert.Nil(t, claims)
			assert.Same(t, ErrInvalidToken, err)
		})
	}
}

func TestNewCodec_RequiresSecret(t *testing.T) {
	_, err := NewCodec(Config{Issuer: "x", Audience: "y"})
	assert.ErrorIs(t, err, ErrSecretMissing)
}

func TestConfigFromEnv(t *testing.T) {
	t.Run("development falls back to default secret", func(t *testing.T) {
		t.Setenv("APP_ENV", "development")
		t.Setenv("JWT_SECRET", "")
		t.Setenv("JWT_ISSUER", "")
		t.Setenv("JWT_AUDIENCE", "")

		cfg, err := ConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, []byte(DevSecret), cfg.Secret)
		assert.Equal(t, DefaultIssuer, cfg.Issuer)
		assert.Equal(t, DefaultAudience, cfg.Audience)
		assert.Equal(t, 7*24*time.Hour, cfg.TTL)
	})

	t.Run("production without secret fails fast", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "  ")

		_, err := ConfigFromEnv()
		assert.ErrorIs(t, err, ErrSecretMissing)
	})

	t.Run("explicit values", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "s3cr3t-s3cr3t-s3cr3t-s3cr3t-s3cr3t")
		t.Setenv("JWT_ISSUER", "acme")
		t.Setenv("JWT_AUDIENCE", "acme-api")

		cfg, err := ConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "acme", cfg.Issuer)
		assert.Equal(t, "acme-api", cfg.Audience)
	})
}
