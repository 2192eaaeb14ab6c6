package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/khoahotran/devprofiles/internal/domain/profile"
	"github.com/khoahotran/devprofiles/pkg/apperror"
	"github.com/khoahotran/devprofiles/pkg/logger"
)

type profileDocument struct {
	ID             string         `bson:"_id"`
	User           string         `bson:"user"`
	Company        *string        `bson:"company,omitempty"`
	Website        *string        `bson:"website,omitempty"`
	Location       *string        `bson:"location,omitempty"`
	Bio            *string        `bson:"bio,omitempty"`
	Status         *string        `bson:"status,omitempty"`
	GitHubUsername *string        `bson:"githubusername,omitempty"`
	Skills         []string       `bson:"skills,omitempty"`
	Social         profile.Social `bson:"social"`
	CreatedAt      time.Time      `bson:"created_at"`
	UpdatedAt      time.Time      `bson:"updated_at"`
}

type ownerDocument struct {
	ID     string `bson:"_id"`
	Name   string `bson:"name"`
	Avatar string `bson:"avatar"`
}

type joinedProfileDocument struct {
	profileDocument `bson:",inline"`
	Owner           *ownerDocument `bson:"owner,omitempty"`
}

type mongoProfileRepo struct {
	profiles *mongo.Collection
	logger   logger.Logger
}

func NewMongoProfileRepo(db *mongo.Database, logger logger.Logger) profile.Repository {
	return &mongoProfileRepo{profiles: db.Collection(CollectionProfiles), logger: logger}
}

func toProfileDocument(p *profile.Profile) profileDocument {
	return profileDocument{
		ID:             p.ID.String(),
		User:           p.OwnerID.String(),
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Bio:            p.Bio,
		Status:         p.Status,
		GitHubUsername: p.GitHubUsername,
		Skills:         p.Skills,
		Social:         p.Social,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (d profileDocument) toDomain() (*profile.Profile, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	owner, err := uuid.Parse(d.User)
	if err != nil {
		return nil, err
	}
	return &profile.Profile{
		ID:             id,
		OwnerID:        owner,
		Company:        d.Company,
		Website:        d.Website,
		Location:       d.Location,
		Bio:            d.Bio,
		Status:         d.Status,
		GitHubUsername: d.GitHubUsername,
		Skills:         d.Skills,
		Social:         d.Social,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}, nil
}

func (d joinedProfileDocument) toDomain() (*profile.Profile, error) {
	p, err := d.profileDocument.toDomain()
	if err != nil {
		return nil, err
	}
	p.Owner = &profile.Owner{ID: p.OwnerID}
	if d.Owner != nil {
		p.Owner.Name = d.Owner.Name
		p.Owner.Avatar = d.Owner.Avatar
	}
	return p, nil
}

// joinOwner substitutes the account's {name, avatar} for the user key.
func joinOwner(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         CollectionAccounts,
			"localField":   "user",
			"foreignField": "_id",
			"as":           "owner",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$owner", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{"owner.email": 0, "owner.password_hash": 0, "owner.created_at": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}}}},
	}
}

func (r *mongoProfileRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	var doc profileDocument
	err := r.profiles.FindOne(ctx, bson.M{"user": ownerID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, profile.ErrProfileNotFound
		}
		return nil, apperror.NewInternal("failed to query profile", err)
	}
	p, err := doc.toDomain()
	if err != nil {
		return nil, apperror.NewInternal("failed to decode profile", err)
	}
	return p, nil
}

func (r *mongoProfileRepo) FindByOwnerWithAccount(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	profiles, err := r.aggregate(ctx, bson.M{"user": ownerID.String()})
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, profile.ErrProfileNotFound
	}
	return profiles[0], nil
}

func (r *mongoProfileRepo) FindAllWithAccount(ctx context.Context) ([]*profile.Profile, error) {
	return r.aggregate(ctx, bson.M{})
}

func (r *mongoProfileRepo) aggregate(ctx context.Context, match bson.M) ([]*profile.Profile, error) {
	cur, err := r.profiles.Aggregate(ctx, joinOwner(match))
	if err != nil {
		return nil, apperror.NewInternal("failed to query profiles", err)
	}
	defer cur.Close(ctx)

	profiles := make([]*profile.Profile, 0)
	for cur.Next(ctx) {
		var doc joinedProfileDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, apperror.NewInternal("failed to decode profile", err)
		}
		p, err := doc.toDomain()
		if err != nil {
			r.logger.Warn("Skipping profile with malformed ids", zap.String("profile_id", doc.ID), zap.Error(err))
			continue
		}
		profiles = append(profiles, p)
	}
	if err := cur.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating profiles", err)
	}
	return profiles, nil
}

func (r *mongoProfileRepo) Insert(ctx context.Context, p *profile.Profile) error {
	_, err := r.profiles.InsertOne(ctx, toProfileDocument(p))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.NewInternal("profile insert violated unique owner", profile.ErrDuplicateOwner)
		}
		return apperror.NewInternal("failed to insert profile", err)
	}
	return nil
}

func (r *mongoProfileRepo) Replace(ctx context.Context, p *profile.Profile) (*profile.Profile, error) {
	var doc profileDocument
	err := r.profiles.FindOneAndReplace(ctx,
		bson.M{"user": p.OwnerID.String()},
		toProfileDocument(p),
		options.FindOneAndReplace().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, profile.ErrProfileNotFound
		}
		return nil, apperror.NewInternal("failed to replace profile", err)
	}
	stored, err := doc.toDomain()
	if err != nil {
		return nil, apperror.NewInternal("failed to decode profile", err)
	}
	return stored, nil
}

func (r *mongoProfileRepo) RemoveByOwner(ctx context.Context, ownerID uuid.UUID) (bool, error) {
	err := r.profiles.FindOneAndDelete(ctx, bson.M{"user": ownerID.String()}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, apperror.NewInternal("failed to remove profile", err)
	}
	return true, nil
}
