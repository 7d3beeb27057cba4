package entity

import "time"

// Role is an identity's authority inside its tenant.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Locale is a supported UI language.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleFR Locale = "fr"
	LocaleIT Locale = "it"

	DefaultLocale = LocaleEN
)

// Locales lists every accepted locale.
var Locales = []Locale{LocaleEN, LocaleFR, LocaleIT}

// Tenant is an organizational boundary; rows live in `tenants`.
type Tenant struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Identity is a row of `identities`, including its password hash.
// It must never be written to a response; use Public.
type Identity struct {
	ID           string    `db:"id" json:"-"`
	Email        string    `db:"email" json:"-"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         *string   `db:"name" json:"-"`
	Role         Role      `db:"role" json:"-"`
	TenantID     string    `db:"tenant_id" json:"-"`
	Locale       Locale    `db:"locale" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
	UpdatedAt    time.Time `db:"updated_at" json:"-"`
}

// PublicIdentity is the outward projection of an Identity. It has no password
// hash field, so serializing it cannot leak one.
type PublicIdentity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	Role      Role      `json:"role"`
	TenantID  string    `json:"tenant_id"`
	Locale    Locale    `json:"locale"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Tenant    *Tenant   `json:"tenant,omitempty"`
}

// Public projects i for external callers. tenant may be nil.
func (i *Identity) Public(tenant *Tenant) PublicIdentity {
	return PublicIdentity{
		ID:        i.ID,
		Email:     i.Email,
		Name:      i.Name,
		Role:      i.Role,
		TenantID:  i.TenantID,
		Locale:    i.Locale,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
		Tenant:    tenant,
	}
}

// IdentityWithTenant is an identity joined with its owning tenant.
type IdentityWithTenant struct {
	Identity
	Tenant Tenant
}
