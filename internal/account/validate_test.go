package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/account/entity"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/apperr"
)

func strPtr(s string) *string { return &s }

func TestValidator_Signup(t *testing.T) {
	v := NewValidator()
	valid := SignupRequest{Email: "a@x.com", Password: "password123", TenantName: "Acme"}

	tests := []struct {
		name  string
		mut   func(*SignupRequest)
		field string
	}{
		{"valid", func(*SignupRequest) {}, ""},
		{"valid with optionals", func(r *SignupRequest) { r.Name = strPtr("Ada"); r.Locale = "fr" }, ""},
		{"missing email", func(r *SignupRequest) { r.Email = "" }, "email"},
		{"bad email", func(r *SignupRequest) { r.Email = "not-an-email" }, "email"},
		{"short password", func(r *SignupRequest) { r.Password = "1234567" }, "password"},
		{"empty name", func(r *SignupRequest) { r.Name = strPtr("") }, "name"},
		{"missing tenant", func(r *SignupRequest) { r.TenantName = "" }, "tenant_name"},
		{"unknown locale", func(r *SignupRequest) { r.Locale = "de" }, "locale"},
		{"first field wins", func(r *SignupRequest) { r.Email = ""; r.Password = "" }, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mut(&req)
			err := v.Struct(req)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			ae := apperr.From(err)
			assert.Equal(t, apperr.KindValidation, ae.Kind)
			assert.Equal(t, tt.field, ae.Field)
		})
	}
}

func TestValidator_Login(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(LoginRequest{Email: "a@x.com", Password: "x"}))

	err := v.Struct(LoginRequest{Email: "a@x.com"})
	assert.Equal(t, "password", apperr.From(err).Field)

	err = v.Struct(LoginRequest{Email: "a@", Password: "x"})
	assert.Equal(t, "email", apperr.From(err).Field)
}

func TestSignupRequest_DefaultLocale(t *testing.T) {
	in := SignupRequest{Email: "a@x.com", Password: "password123", TenantName: "Acme"}.Input()
	assert.Equal(t, entity.LocaleEN, in.Locale)

	in = SignupRequest{Locale: "it"}.Input()
	assert.Equal(t, entity.LocaleIT, in.Locale)
}
