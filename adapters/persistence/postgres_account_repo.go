package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/devprofiles/internal/domain/account"
	"github.com/khoahotran/devprofiles/pkg/apperror"
)

type postgresAccountRepo struct {
	db *pgxpool.Pool
}

func NewPostgresAccountRepo(db *pgxpool.Pool) account.Repository {
	return &postgresAccountRepo{db: db}
}

func (r *postgresAccountRepo) Create(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (id, name, email, avatar, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, a.ID, a.Name, a.Email, a.Avatar, a.PasswordHash, a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("account", "email", a.Email)
		}
		return apperror.NewInternal("failed to insert account", err)
	}
	return nil
}

func (r *postgresAccountRepo) RemoveByID(ctx context.Context, id uuid.UUID) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return false, apperror.NewInternal("failed to remove account", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}
