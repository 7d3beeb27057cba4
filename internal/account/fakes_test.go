package account

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/account/entity"
	accountrepo "github.com/ovaphlow/pitchfork/service-auth-go/internal/account/repo"
)

// memStore is an in-memory Store with the same miss and conflict errors as
// the Postgres repo.
type memStore struct {
	mu         sync.Mutex
	tenants    map[string]entity.Tenant
	identities map[string]entity.Identity
	err        error // returned by every call when set
}

func newMemStore() *memStore {
	return &memStore{tenants: map[string]entity.Tenant{}, identities: map[string]entity.Identity{}}
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*entity.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, i := range s.identities {
		if i.Email == email {
			return &i, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memStore) FindByID(_ context.Context, id string) (*entity.IdentityWithTenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	i, ok := s.identities[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &entity.IdentityWithTenant{Identity: i, Tenant: s.tenants[i.TenantID]}, nil
}

func (s *memStore) FindTenant(_ context.Context, id string) (*entity.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	t, ok := s.tenants[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (s *memStore) CreateTenantWithAdmin(_ context.Context, t *entity.Tenant, i *entity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, existing := range s.identities {
		if existing.Email == i.Email {
			return accountrepo.ErrEmailTaken
		}
	}
	s.tenants[t.ID] = *t
	s.identities[i.ID] = *i
	return nil
}

func (s *memStore) counts() (tenants, identities int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tenants), len(s.identities)
}

// plainHasher stands in for Argon2id in tests that do not exercise hashing.
type plainHasher struct {
	mu     sync.Mutex
	hashes int
	checks int
	err    error
}

func (h *plainHasher) Hash(_ context.Context, pw string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hashes++
	if h.err != nil {
		return "", h.err
	}
	return "plain$" + pw, nil
}

func (h *plainHasher) Verify(_ context.Context, pw, encoded string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks++
	if h.err != nil {
		return false, h.err
	}
	stored, ok := strings.CutPrefix(encoded, "plain$")
	return ok && stored == pw, nil
}
