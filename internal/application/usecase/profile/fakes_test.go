package profile

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/khoahotran/devprofiles/internal/application/service"
	"github.com/khoahotran/devprofiles/internal/domain/account"
	"github.com/khoahotran/devprofiles/internal/domain/profile"
	"github.com/khoahotran/devprofiles/pkg/apperror"
)

var errStoreDown = errors.New("store unreachable")

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*profile.Profile
	accounts *fakeAccountRepo

	findBarrier *sync.WaitGroup
	failFind    error
	failWrite   error
	failRemove  error
	reads       int
	writes      int
}

func newFakeProfileRepo(accounts *fakeAccountRepo) *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles: make(map[uuid.UUID]*profile.Profile),
		accounts: accounts,
	}
}

func clone(p *profile.Profile) *profile.Profile {
	c := *p
	if p.Skills != nil {
		c.Skills = append([]string(nil), p.Skills...)
	}
	return &c
}

// FindByOwner holds every caller at findBarrier after its read, so all
// callers observe the same snapshot before any of them writes.
func (r *fakeProfileRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	p, err := r.findByOwner(ownerID)
	if r.findBarrier != nil {
		r.findBarrier.Done()
		r.findBarrier.Wait()
	}
	return p, err
}

func (r *fakeProfileRepo) findByOwner(ownerID uuid.UUID) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	if r.failFind != nil {
		return nil, apperror.NewInternal("find failed", r.failFind)
	}
	p, ok := r.profiles[ownerID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return clone(p), nil
}

func (r *fakeProfileRepo) FindByOwnerWithAccount(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	p, err := r.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	p.Owner = r.accounts.project(ownerID)
	return p, nil
}

func (r *fakeProfileRepo) FindAllWithAccount(ctx context.Context) ([]*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind != nil {
		return nil, apperror.NewInternal("find failed", r.failFind)
	}
	var out []*profile.Profile
	for id, p := range r.profiles {
		c := clone(p)
		c.Owner = r.accounts.project(id)
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeProfileRepo) Insert(ctx context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	if r.failWrite != nil {
		return apperror.NewInternal("insert failed", r.failWrite)
	}
	if _, ok := r.profiles[p.OwnerID]; ok {
		return apperror.NewInternal("insert failed", profile.ErrDuplicateOwner)
	}
	r.profiles[p.OwnerID] = clone(p)
	return nil
}

func (r *fakeProfileRepo) Replace(ctx context.Context, p *profile.Profile) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	if r.failWrite != nil {
		return nil, apperror.NewInternal("replace failed", r.failWrite)
	}
	if _, ok := r.profiles[p.OwnerID]; !ok {
		return nil, profile.ErrProfileNotFound
	}
	r.profiles[p.OwnerID] = clone(p)
	return clone(p), nil
}

func (r *fakeProfileRepo) RemoveByOwner(ctx context.Context, ownerID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRemove != nil {
		return false, apperror.NewInternal("remove failed", r.failRemove)
	}
	_, ok := r.profiles[ownerID]
	delete(r.profiles, ownerID)
	return ok, nil
}

func (r *fakeProfileRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.profiles)
}

type fakeAccountRepo struct {
	mu         sync.Mutex
	accounts   map[uuid.UUID]*account.Account
	failRemove error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*account.Account)}
}

func (r *fakeAccountRepo) Create(ctx context.Context, a *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *a
	r.accounts[a.ID] = &c
	return nil
}

func (r *fakeAccountRepo) RemoveByID(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRemove != nil {
		return false, apperror.NewInternal("remove failed", r.failRemove)
	}
	_, ok := r.accounts[id]
	delete(r.accounts, id)
	return ok, nil
}

func (r *fakeAccountRepo) exists(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.accounts[id]
	return ok
}

func (r *fakeAccountRepo) project(id uuid.UUID) *profile.Owner {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return &profile.Owner{ID: id}
	}
	return &profile.Owner{ID: a.ID, Name: a.Name, Avatar: a.Avatar}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []service.ProfileEventPayload
}

func (p *fakePublisher) PublishProfileEvent(ctx context.Context, payload service.ProfileEventPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, payload)
	return nil
}

func (p *fakePublisher) snapshot() []service.ProfileEventPayload {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]service.ProfileEventPayload(nil), p.events...)
}

type fakeCache struct {
	mu          sync.Mutex
	byOwner     map[uuid.UUID]*profile.Profile
	ownerGen    map[uuid.UUID]service.Stamp
	all         []*profile.Profile
	hasAll      bool
	listGen     service.Stamp
	invalidated []uuid.UUID
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		byOwner:  make(map[uuid.UUID]*profile.Profile),
		ownerGen: make(map[uuid.UUID]service.Stamp),
	}
}

func (c *fakeCache) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.byOwner[ownerID]
	return p, ok, nil
}

func (c *fakeCache) OwnerStamp(ctx context.Context, ownerID uuid.UUID) (service.Stamp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ownerGen[ownerID], nil
}

func (c *fakeCache) SetByOwner(ctx context.Context, p *profile.Profile, stamp service.Stamp) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ownerGen[p.OwnerID] != stamp {
		return false, nil
	}
	c.byOwner[p.OwnerID] = p
	return true, nil
}

func (c *fakeCache) cached(ownerID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.byOwner[ownerID]
	return ok
}

func (c *fakeCache) GetAll(ctx context.Context) ([]*profile.Profile, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.all, c.hasAll, nil
}

func (c *fakeCache) ListStamp(ctx context.Context) (service.Stamp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listGen, nil
}

func (c *fakeCache) SetAll(ctx context.Context, profiles []*profile.Profile, stamp service.Stamp) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listGen != stamp {
		return false, nil
	}
	c.all, c.hasAll = profiles, true
	return true, nil
}

func (c *fakeCache) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byOwner, ownerID)
	c.all, c.hasAll = nil, false
	c.ownerGen[ownerID]++
	c.listGen++
	c.invalidated = append(c.invalidated, ownerID)
	return nil
}

// interleavingProfileRepo runs afterJoinedRead once, right after a joined
// read returns and before the caller acts on it.
type interleavingProfileRepo struct {
	*fakeProfileRepo
	afterJoinedRead func()
}

func (r *interleavingProfileRepo) FindByOwnerWithAccount(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	p, err := r.fakeProfileRepo.FindByOwnerWithAccount(ctx, ownerID)
	if hook := r.afterJoinedRead; hook != nil {
		r.afterJoinedRead = nil
		hook()
	}
	return p, err
}

func (r *interleavingProfileRepo) FindAllWithAccount(ctx context.Context) ([]*profile.Profile, error) {
	ps, err := r.fakeProfileRepo.FindAllWithAccount(ctx)
	if hook := r.afterJoinedRead; hook != nil {
		r.afterJoinedRead = nil
		hook()
	}
	return ps, err
}
