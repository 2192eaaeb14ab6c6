package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/khoahotran/devprofiles/internal/domain/account"
	"github.com/khoahotran/devprofiles/internal/domain/profile"
	"github.com/khoahotran/devprofiles/pkg/apperror"
)

// InMemoryStore keeps both collections in process. It enforces the same
// unique owner and unique email rules as the real stores.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]profile.Profile
	accounts map[uuid.UUID]account.Account
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		profiles: make(map[uuid.UUID]profile.Profile),
		accounts: make(map[uuid.UUID]account.Account),
	}
}

func (s *InMemoryStore) Profiles() profile.Repository { return (*inMemoryProfileRepo)(s) }
func (s *InMemoryStore) Accounts() account.Repository { return (*inMemoryAccountRepo)(s) }

func cloneProfile(p profile.Profile) *profile.Profile {
	if p.Skills != nil {
		p.Skills = append([]string(nil), p.Skills...)
	}
	p.Owner = nil
	return &p
}

type inMemoryProfileRepo InMemoryStore

func (r *inMemoryProfileRepo) joined(p profile.Profile) *profile.Profile {
	c := cloneProfile(p)
	c.Owner = &profile.Owner{ID: p.OwnerID}
	if a, ok := r.accounts[p.OwnerID]; ok {
		c.Owner.Name = a.Name
		c.Owner.Avatar = a.Avatar
	}
	return c
}

func (r *inMemoryProfileRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[ownerID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (r *inMemoryProfileRepo) FindByOwnerWithAccount(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[ownerID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return r.joined(p), nil
}

func (r *inMemoryProfileRepo) FindAllWithAccount(ctx context.Context) ([]*profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*profile.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, r.joined(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *inMemoryProfileRepo) Insert(ctx context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.OwnerID]; ok {
		return apperror.NewInternal("profile insert violated unique owner", profile.ErrDuplicateOwner)
	}
	r.profiles[p.OwnerID] = *cloneProfile(*p)
	return nil
}

func (r *inMemoryProfileRepo) Replace(ctx context.Context, p *profile.Profile) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.OwnerID]; !ok {
		return nil, profile.ErrProfileNotFound
	}
	r.profiles[p.OwnerID] = *cloneProfile(*p)
	return cloneProfile(*p), nil
}

func (r *inMemoryProfileRepo) RemoveByOwner(ctx context.Context, ownerID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.profiles[ownerID]
	delete(r.profiles, ownerID)
	return ok, nil
}

type inMemoryAccountRepo InMemoryStore

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == a.Email {
			return apperror.NewConflict("account", "email", a.Email)
		}
	}
	r.accounts[a.ID] = *a
	return nil
}

func (r *inMemoryAccountRepo) RemoveByID(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.accounts[id]
	delete(r.accounts, id)
	return ok, nil
}
