package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/devprofiles/internal/domain/profile"
	"github.com/khoahotran/devprofiles/pkg/apperror"
	"github.com/khoahotran/devprofiles/pkg/logger"
)

const pgUniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var profileColumns = []string{
	"p.id", "p.owner_id", "p.company", "p.website", "p.location", "p.bio",
	"p.status", "p.githubusername", "p.skills", "p.social", "p.created_at", "p.updated_at",
}

type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, logger logger.Logger) profile.Repository {
	return &postgresProfileRepo{db: db, logger: logger}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (r *postgresProfileRepo) scanProfile(row pgx.Row, joined bool) (*profile.Profile, error) {
	p := &profile.Profile{}
	var socialBytes []byte
	var ownerName, ownerAvatar *string

	dest := []any{
		&p.ID, &p.OwnerID, &p.Company, &p.Website, &p.Location, &p.Bio,
		&p.Status, &p.GitHubUsername, &p.Skills, &socialBytes, &p.CreatedAt, &p.UpdatedAt,
	}
	if joined {
		dest = append(dest, &ownerName, &ownerAvatar)
	}

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profile.ErrProfileNotFound
		}
		return nil, apperror.NewInternal("failed to scan profile row", err)
	}

	if len(socialBytes) > 0 {
		if err := json.Unmarshal(socialBytes, &p.Social); err != nil {
			r.logger.Warn("Failed to unmarshal social", zap.String("owner_id", p.OwnerID.String()), zap.Error(err))
			p.Social = profile.Social{}
		}
	}

	if joined {
		p.Owner = &profile.Owner{ID: p.OwnerID}
		if ownerName != nil {
			p.Owner.Name = *ownerName
		}
		if ownerAvatar != nil {
			p.Owner.Avatar = *ownerAvatar
		}
	}
	return p, nil
}

func (r *postgresProfileRepo) selectJoined() sq.SelectBuilder {
	return psql.Select(append(profileColumns, "a.name", "a.avatar")...).
		From("profiles p").
		LeftJoin("accounts a ON a.id = p.owner_id")
}

func (r *postgresProfileRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	query, args, err := psql.Select(profileColumns...).
		From("profiles p").
		Where(sq.Eq{"p.owner_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build profile query", err)
	}
	return r.scanProfile(r.db.QueryRow(ctx, query, args...), false)
}

func (r *postgresProfileRepo) FindByOwnerWithAccount(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	query, args, err := r.selectJoined().Where(sq.Eq{"p.owner_id": ownerID}).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build profile query", err)
	}
	return r.scanProfile(r.db.QueryRow(ctx, query, args...), true)
}

func (r *postgresProfileRepo) FindAllWithAccount(ctx context.Context) ([]*profile.Profile, error) {
	query, args, err := r.selectJoined().OrderBy("p.created_at ASC").ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build profiles query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query profiles", err)
	}
	defer rows.Close()

	profiles := make([]*profile.Profile, 0)
	for rows.Next() {
		p, err := r.scanProfile(rows, true)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating profile rows", err)
	}
	return profiles, nil
}

func mutableColumns(p *profile.Profile) (map[string]any, error) {
	socialBytes, err := json.Marshal(p.Social)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"company":        p.Company,
		"website":        p.Website,
		"location":       p.Location,
		"bio":            p.Bio,
		"status":         p.Status,
		"githubusername": p.GitHubUsername,
		"skills":         p.Skills,
		"social":         socialBytes,
		"updated_at":     p.UpdatedAt,
	}, nil
}

func (r *postgresProfileRepo) Insert(ctx context.Context, p *profile.Profile) error {
	cols, err := mutableColumns(p)
	if err != nil {
		return apperror.NewInternal("failed to marshal social", err)
	}
	cols["id"] = p.ID
	cols["owner_id"] = p.OwnerID
	cols["created_at"] = p.CreatedAt

	query, args, err := psql.Insert("profiles").SetMap(cols).ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build profile insert", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewInternal("profile insert violated unique owner", profile.ErrDuplicateOwner)
		}
		return apperror.NewInternal("failed to insert profile", err)
	}
	return nil
}

// Replace writes every mutable column, NULLing the ones p leaves unset.
func (r *postgresProfileRepo) Replace(ctx context.Context, p *profile.Profile) (*profile.Profile, error) {
	cols, err := mutableColumns(p)
	if err != nil {
		return nil, apperror.NewInternal("failed to marshal social", err)
	}

	returning := make([]string, len(profileColumns))
	for i, c := range profileColumns {
		returning[i] = strings.TrimPrefix(c, "p.")
	}

	query, args, err := psql.Update("profiles").
		SetMap(cols).
		Where(sq.Eq{"owner_id": p.OwnerID}).
		Suffix("RETURNING " + strings.Join(returning, ", ")).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build profile update", err)
	}
	return r.scanProfile(r.db.QueryRow(ctx, query, args...), false)
}

func (r *postgresProfileRepo) RemoveByOwner(ctx context.Context, ownerID uuid.UUID) (bool, error) {
	query, args, err := psql.Delete("profiles").Where(sq.Eq{"owner_id": ownerID}).ToSql()
	if err != nil {
		return false, apperror.NewInternal("failed to build profile delete", err)
	}
	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, apperror.NewInternal("failed to remove profile", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}
