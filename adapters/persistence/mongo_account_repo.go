package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/khoahotran/devprofiles/internal/domain/account"
	"github.com/khoahotran/devprofiles/pkg/apperror"
)

type accountDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	Avatar       string    `bson:"avatar"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

type mongoAccountRepo struct {
	accounts *mongo.Collection
}

func NewMongoAccountRepo(db *mongo.Database) account.Repository {
	return &mongoAccountRepo{accounts: db.Collection(CollectionAccounts)}
}

func (r *mongoAccountRepo) Create(ctx context.Context, a *account.Account) error {
	_, err := r.accounts.InsertOne(ctx, accountDocument{
		ID:           a.ID.String(),
		Name:         a.Name,
		Email:        a.Email,
		Avatar:       a.Avatar,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.NewConflict("account", "email", a.Email)
		}
		return apperror.NewInternal("failed to insert account", err)
	}
	return nil
}

func (r *mongoAccountRepo) RemoveByID(ctx context.Context, id uuid.UUID) (bool, error) {
	err := r.accounts.FindOneAndDelete(ctx, bson.M{"_id": id.String()}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, apperror.NewInternal("failed to remove account", err)
	}
	return true, nil
}
