package main

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/devprofiles/adapters/persistence"
	"github.com/khoahotran/devprofiles/internal/config"
	"github.com/khoahotran/devprofiles/internal/domain/account"
	"github.com/khoahotran/devprofiles/pkg/auth"
	"github.com/khoahotran/devprofiles/pkg/logger"
)

// gravatarURL mirrors how accounts get their default avatar at sign-up.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}

func main() {
	fmt.Println("adding account into database...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	appLogger := logger.NewZapLogger(cfg.App.Env)

	name := os.Getenv("SEED_NAME")
	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")
	if email == "" || password == "" {
		log.Fatalf("SEED_EMAIL and SEED_PASSWORD must be set")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("cannot hash password: %v", err)
	}

	_, accounts, closeStore, err := persistence.OpenStores(cfg, appLogger)
	if err != nil {
		log.Fatalf("cannot open store: %v", err)
	}
	defer closeStore()

	acc := &account.Account{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Avatar:       gravatarURL(email),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := accounts.Create(context.Background(), acc); err != nil {
		log.Fatalf("cannot add account: %v", err)
	}

	token, err := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan).GenerateToken(acc.ID)
	if err != nil {
		log.Fatalf("cannot issue token: %v", err)
	}

	fmt.Printf("added account '%s' (%s) successfully!\n", email, acc.ID)
	fmt.Printf("x-auth-token: %s\n", token)
}
