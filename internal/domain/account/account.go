package account

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Avatar       string    `json:"avatar"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, a *Account) error
	// RemoveByID reports whether a document was removed. A missing account
	// is not an error.
	RemoveByID(ctx context.Context, id uuid.UUID) (bool, error)
}
