package persistence

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khoahotran/devprofiles/internal/config"
	"github.com/khoahotran/devprofiles/pkg/logger"
)

const (
	CollectionProfiles = "profiles"
	CollectionAccounts = "accounts"
)

func NewMongoDatabase(cfg config.Config, log logger.Logger) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("do not create mongo client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo failed: %w", err)
	}

	db := client.Database(cfg.Mongo.Database)
	if err := EnsureMongoIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	log.Info("Connect MongoDB successfully.")
	return client, db, nil
}

// EnsureMongoIndexes creates the unique indexes the repositories rely on:
// one profile per owner and one account per email.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionProfiles).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_profile_user"),
	})
	if err != nil {
		return fmt.Errorf("create profiles.user index: %w", err)
	}

	_, err = db.Collection(CollectionAccounts).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_account_email"),
	})
	if err != nil {
		return fmt.Errorf("create accounts.email index: %w", err)
	}
	return nil
}
