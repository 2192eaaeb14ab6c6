package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrInvalidIdentifier = errors.New("identifier is not a well-formed account id")
	ErrDuplicateOwner    = errors.New("a profile already exists for this owner")
)

type Social struct {
	YouTube   *string `json:"youtube,omitempty" bson:"youtube,omitempty"`
	Facebook  *string `json:"facebook,omitempty" bson:"facebook,omitempty"`
	Twitter   *string `json:"twitter,omitempty" bson:"twitter,omitempty"`
	Instagram *string `json:"instagram,omitempty" bson:"instagram,omitempty"`
	LinkedIn  *string `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
}

// Owner is the read-time projection of the owning account. Only ID is set
// when the profile was not read through a join.
type Owner struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name,omitempty"`
	Avatar string    `json:"avatar,omitempty"`
}

// Profile is keyed by OwnerID; the store keeps at most one per owner.
// Nil pointers and a nil Skills slice mean the field is absent.
type Profile struct {
	ID             uuid.UUID `json:"id"`
	OwnerID        uuid.UUID `json:"owner_id"`
	Owner          *Owner    `json:"owner,omitempty"`
	Company        *string   `json:"company,omitempty"`
	Website        *string   `json:"website,omitempty"`
	Location       *string   `json:"location,omitempty"`
	Bio            *string   `json:"bio,omitempty"`
	Status         *string   `json:"status,omitempty"`
	GitHubUsername *string   `json:"githubusername,omitempty"`
	Skills         []string  `json:"skills,omitempty"`
	Social         Social    `json:"social"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Fields is the raw, presence-filtered input of one upsert call.
type Fields struct {
	Company        Text
	Website        Text
	Location       Text
	Bio            Text
	Status         Text
	GitHubUsername Text
	Skills         Text

	YouTube   Text
	Facebook  Text
	Twitter   Text
	Instagram Text
	LinkedIn  Text
}

// Build computes the full mutable field set for ownerID. Nothing from a
// previously stored version is consulted: absent input means absent field.
func Build(ownerID uuid.UUID, f Fields) *Profile {
	p := &Profile{
		OwnerID:        ownerID,
		Company:        f.Company.Ptr(),
		Website:        f.Website.Ptr(),
		Location:       f.Location.Ptr(),
		Bio:            f.Bio.Ptr(),
		Status:         f.Status.Ptr(),
		GitHubUsername: f.GitHubUsername.Ptr(),
	}
	if raw, ok := f.Skills.Get(); ok {
		p.Skills = ParseSkills(raw)
	}
	p.Social = Social{
		YouTube:   f.YouTube.Ptr(),
		Facebook:  f.Facebook.Ptr(),
		Twitter:   f.Twitter.Ptr(),
		Instagram: f.Instagram.Ptr(),
		LinkedIn:  f.LinkedIn.Ptr(),
	}
	return p
}

// ParseSkills splits on commas and trims each segment. Empty segments are
// kept, so "js,,react" yields three entries.
func ParseSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, len(parts))
	for i, s := range parts {
		skills[i] = strings.TrimSpace(s)
	}
	return skills
}

// ParseOwnerID validates an externally supplied account id.
func ParseOwnerID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidIdentifier
	}
	return id, nil
}

type Repository interface {
	// FindByOwner returns ErrProfileNotFound when the owner has no profile.
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*Profile, error)
	// FindByOwnerWithAccount is FindByOwner with Owner populated.
	FindByOwnerWithAccount(ctx context.Context, ownerID uuid.UUID) (*Profile, error)
	FindAllWithAccount(ctx context.Context) ([]*Profile, error)
	// Insert fails with ErrDuplicateOwner if the owner already has a profile.
	Insert(ctx context.Context, p *Profile) error
	// Replace overwrites the mutable field set of the owner's profile and
	// returns the stored document.
	Replace(ctx context.Context, p *Profile) (*Profile, error)
	// RemoveByOwner reports whether a document was removed. A missing
	// profile is not an error.
	RemoveByOwner(ctx context.Context, ownerID uuid.UUID) (bool, error)
}
