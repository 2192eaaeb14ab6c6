package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/khoahotran/devprofiles/internal/domain/profile"
)

// Stamp is the cache generation observed before a store read. Invalidate
// advances the generation, and a fill carrying an older stamp is dropped, so
// a read that raced a write or delete never repopulates the cache.
type Stamp int64

// ProfileCache holds the public, joined views of profiles. A miss is
// reported as (nil, false, nil); errors are for transport failures only.
type ProfileCache interface {
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, bool, error)
	OwnerStamp(ctx context.Context, ownerID uuid.UUID) (Stamp, error)
	// SetByOwner reports whether the entry was stored.
	SetByOwner(ctx context.Context, p *profile.Profile, stamp Stamp) (bool, error)

	GetAll(ctx context.Context) ([]*profile.Profile, bool, error)
	ListStamp(ctx context.Context) (Stamp, error)
	SetAll(ctx context.Context, profiles []*profile.Profile, stamp Stamp) (bool, error)

	// Invalidate drops the owner's entry and the listing and advances both
	// generations.
	Invalidate(ctx context.Context, ownerID uuid.UUID) error
}

type nopProfileCache struct{}

// NopProfileCache never hits and never fails.
func NopProfileCache() ProfileCache { return nopProfileCache{} }

func (nopProfileCache) GetByOwner(context.Context, uuid.UUID) (*profile.Profile, bool, error) {
	return nil, false, nil
}
func (nopProfileCache) OwnerStamp(context.Context, uuid.UUID) (Stamp, error) { return 0, nil }
func (nopProfileCache) SetByOwner(context.Context, *profile.Profile, Stamp) (bool, error) {
	return false, nil
}
func (nopProfileCache) GetAll(context.Context) ([]*profile.Profile, bool, error) {
	return nil, false, nil
}
func (nopProfileCache) ListStamp(context.Context) (Stamp, error) { return 0, nil }
func (nopProfileCache) SetAll(context.Context, []*profile.Profile, Stamp) (bool, error) {
	return false, nil
}
func (nopProfileCache) Invalidate(context.Context, uuid.UUID) error { return nil }
