package account

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/account/entity"
	accountrepo "github.com/ovaphlow/pitchfork/service-auth-go/internal/account/repo"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/token"
	"github.com/ovaphlow/pitchfork/service-auth-go/pkg/utilities"
)

// Store is the persistence the service needs. Lookups return sql.ErrNoRows on
// a miss; CreateTenantWithAdmin returns repo.ErrEmailTaken on a duplicate email.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*entity.Identity, error)
	FindByID(ctx context.Context, id string) (*entity.IdentityWithTenant, error)
	FindTenant(ctx context.Context, id string) (*entity.Tenant, error)
	CreateTenantWithAdmin(ctx context.Context, t *entity.Tenant, i *entity.Identity) error
}

// PasswordHasher hashes and checks passwords. Verify reports false for a
// mismatch or a malformed hash; an error means the check could not run.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, encoded string) (bool, error)
}

// TokenSigner mints access tokens.
type TokenSigner interface {
	Sign(p token.Principal) (string, error)
}

type SignupInput struct {
	Email      string
	Password   string
	Name       *string
	TenantName string
	Locale     entity.Locale
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	User  entity.PublicIdentity `json:"user"`
	Token string                `json:"token"`
}

// Service orchestrates signup, login and identity lookup. Every error it
// returns is an *apperr.Error.
type Service struct {
	store  Store
	hasher PasswordHasher
	tokens TokenSigner
	logger *zap.SugaredLogger
	now    func() time.Time
	newID  func() string

	dummyOnce sync.Once
	dummyHash string
}

func NewService(store Store, hasher PasswordHasher, tokens TokenSigner, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  utilities.NewKSUID,
	}
}

// Signup creates a tenant and its first identity, always an ADMIN, in one
// transaction and returns the new identity with a token.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	const op = "account.Signup"

	_, err := s.store.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperr.ErrAccountExists
	case !errors.Is(err, sql.ErrNoRows):
		return nil, apperr.Internal(op, err)
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}

	locale := in.Locale
	if locale == "" {
		locale = entity.DefaultLocale
	}
	now := s.now()
	tenant := &entity.Tenant{
		ID:        s.newID(),
		Name:      in.TenantName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ident := &entity.Identity{
		ID:           s.newID(),
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Role:         entity.RoleAdmin,
		TenantID:     tenant.ID,
		Locale:       locale,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateTenantWithAdmin(ctx, tenant, ident); err != nil {
		// Lost a race on the unique email.
		if errors.Is(err, accountrepo.ErrEmailTaken) {
			return nil, apperr.ErrAccountExists
		}
		return nil, apperr.Internal(op, err)
	}

	tok, err := s.sign(ident)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	s.logger.Infow("tenant created", "tenant_id", tenant.ID, "identity_id", ident.ID)
	return &AuthResult{User: ident.Public(tenant), Token: tok}, nil
}

// Login checks the password and returns the identity with a fresh token. An
// unknown email and a wrong password return the same error value.
func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	const op = "account.Login"

	ident, err := s.store.FindByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Internal(op, err)
		}
		// Spend the same hashing work as a real mismatch.
		if dummy := s.dummy(); dummy != "" {
			if _, err := s.hasher.Verify(ctx, in.Password, dummy); err != nil {
				return nil, apperr.Internal(op, err)
			}
		}
		return nil, apperr.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(ctx, in.Password, ident.PasswordHash)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	if !ok {
		return nil, apperr.ErrInvalidCredentials
	}

	tok, err := s.sign(ident)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	return &AuthResult{User: ident.Public(nil), Token: tok}, nil
}

// GetByID returns the identity with its tenant, or apperr.ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (*entity.PublicIdentity, error) {
	row, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Internal("account.GetByID", err)
	}
	pub := row.Identity.Public(&row.Tenant)
	return &pub, nil
}

// GetTenant returns a tenant by id, or apperr.ErrNotFound.
func (s *Service) GetTenant(ctx context.Context, id string) (*entity.Tenant, error) {
	t, err := s.store.FindTenant(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Internal("account.GetTenant", err)
	}
	return t, nil
}

func (s *Service) sign(i *entity.Identity) (string, error) {
	return s.tokens.Sign(token.Principal{
		UserID:         i.ID,
		OrganizationID: i.TenantID,
		Role:           i.Role,
		Email:          i.Email,
	})
}

// dummy returns a real encoded hash of a throwaway password, computed once.
// It is empty if that computation failed.
func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(context.Background(), "timing-equalisation-only")
		if err != nil {
			s.logger.Warnw("dummy hash unavailable", "err", err)
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
