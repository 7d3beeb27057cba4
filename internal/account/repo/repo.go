package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/account/entity"
)

// ErrEmailTaken is returned when the unique email constraint rejects an insert.
var ErrEmailTaken = errors.New("email already registered")

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// AccountRepo provides data access for tenants and identities using sqlx.
type AccountRepo struct {
	db *sqlx.DB
}

func NewAccountRepo(db *sqlx.DB) *AccountRepo { return &AccountRepo{db: db} }

// EnsureTables creates the tenants and identities tables if they do not exist.
// Prefer migrations in production.
func (r *AccountRepo) EnsureTables(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tenants (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS identities (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  name TEXT,
  role TEXT NOT NULL DEFAULT 'MEMBER',
  tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  locale TEXT NOT NULL DEFAULT 'en',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  CONSTRAINT identities_email_key UNIQUE (email)
);
CREATE INDEX IF NOT EXISTS idx_identities_tenant_id ON identities(tenant_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const identityColumns = `id, email, password_hash, name, role, tenant_id, locale, created_at, updated_at`

// FindByEmail returns the identity with exactly this email or sql.ErrNoRows.
func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	const q = `SELECT ` + identityColumns + ` FROM identities WHERE email=$1`
	var row entity.Identity
	if err := r.db.GetContext(ctx, &row, q, email); err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByID returns the identity joined with its tenant or sql.ErrNoRows.
func (r *AccountRepo) FindByID(ctx context.Context, id string) (*entity.IdentityWithTenant, error) {
	const q = `SELECT i.id, i.email, i.password_hash, i.name, i.role, i.tenant_id, i.locale,
		i.created_at, i.updated_at,
		t.name AS tenant_name, t.created_at AS tenant_created_at, t.updated_at AS tenant_updated_at
	  FROM identities i JOIN tenants t ON t.id = i.tenant_id
	  WHERE i.id=$1`
	var row struct {
		entity.Identity
		TenantName      string    `db:"tenant_name"`
		TenantCreatedAt time.Time `db:"tenant_created_at"`
		TenantUpdatedAt time.Time `db:"tenant_updated_at"`
	}
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &entity.IdentityWithTenant{
		Identity: row.Identity,
		Tenant: entity.Tenant{
			ID:        row.TenantID,
			Name:      row.TenantName,
			CreatedAt: row.TenantCreatedAt,
			UpdatedAt: row.TenantUpdatedAt,
		},
	}, nil
}

// FindTenant returns a tenant by id or sql.ErrNoRows.
func (r *AccountRepo) FindTenant(ctx context.Context, id string) (*entity.Tenant, error) {
	const q = `SELECT id, name, created_at, updated_at FROM tenants WHERE id=$1`
	var t entity.Tenant
	if err := r.db.GetContext(ctx, &t, q, id); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTenantWithAdmin inserts the tenant and its first identity in one
// transaction. A duplicate email rolls both back and returns ErrEmailTaken.
func (r *AccountRepo) CreateTenantWithAdmin(ctx context.Context, t *entity.Tenant, i *entity.Identity) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertTenant = `INSERT INTO tenants (id, name, created_at, updated_at)
		VALUES (:id, :name, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertTenant, t); err != nil {
		return err
	}

	const insertIdentity = `INSERT INTO identities (` + identityColumns + `)
		VALUES (:id, :email, :password_hash, :name, :role, :tenant_id, :locale, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertIdentity, i); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			err = ErrEmailTaken
		}
		return err
	}

	return tx.Commit()
}
