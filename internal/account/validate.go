package account

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/account/entity"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/apperr"
)

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8"`
	Name       *string `json:"name" validate:"omitnil,min=1"`
	TenantName string  `json:"tenant_name" validate:"required,min=1"`
	Locale     string  `json:"locale" validate:"omitempty,oneof=en fr it"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validator checks request bodies and reports only the first offending field,
// named as it appears in JSON.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct returns nil or an apperr validation error for the first failing field.
func (v *Validator) Struct(req any) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.Validation(verrs[0].Field())
	}
	return apperr.Internal("account.validate", err)
}

// Input converts a validated request, applying the default locale.
func (r SignupRequest) Input() SignupInput {
	locale := entity.Locale(r.Locale)
	if locale == "" {
		locale = entity.DefaultLocale
	}
	return SignupInput{
		Email:      r.Email,
		Password:   r.Password,
		Name:       r.Name,
		TenantName: r.TenantName,
		Locale:     locale,
	}
}

func (r LoginRequest) Input() LoginInput {
	return LoginInput{Email: r.Email, Password: r.Password}
}
