package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/devprofiles/internal/application/service"
	"github.com/khoahotran/devprofiles/internal/domain/profile"
	"github.com/khoahotran/devprofiles/pkg/apperror"
	"github.com/khoahotran/devprofiles/pkg/logger"
)

type ProfileQueryUseCase struct {
	profileRepo profile.Repository
	cache       service.ProfileCache
	logger      logger.Logger
}

func NewProfileQueryUseCase(repo profile.Repository, cache service.ProfileCache, log logger.Logger) *ProfileQueryUseCase {
	return &ProfileQueryUseCase{
		profileRepo: repo,
		cache:       cache,
		logger:      log,
	}
}

type GetOwnProfileInput struct {
	OwnerID uuid.UUID
}

type GetProfileOutput struct {
	Profile *profile.Profile
}

func (uc *ProfileQueryUseCase) ExecuteGetOwn(ctx context.Context, input GetOwnProfileInput) (*GetProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "GetOwnProfile")
	defer span.End()
	span.SetAttributes(attribute.String("owner_id", input.OwnerID.String()))

	p, err := uc.profileRepo.FindByOwnerWithAccount(ctx, input.OwnerID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			uc.logger.Info("There is no profile for this user", zap.String("owner_id", input.OwnerID.String()))
			return nil, apperror.NewNotFoundCause("profile", input.OwnerID.String(), err)
		}
		span.RecordError(err)
		return nil, err
	}
	return &GetProfileOutput{Profile: p}, nil
}

type GetProfileByAccountInput struct {
	AccountID string
}

// ExecuteGetByAccountID answers a public lookup. A malformed id is reported
// as not found with profile.ErrInvalidIdentifier as the cause.
func (uc *ProfileQueryUseCase) ExecuteGetByAccountID(ctx context.Context, input GetProfileByAccountInput) (*GetProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "GetProfileByAccountID")
	defer span.End()
	span.SetAttributes(attribute.String("account_id", input.AccountID))

	ownerID, err := profile.ParseOwnerID(input.AccountID)
	if err != nil {
		uc.logger.Info("Malformed account id in profile lookup", zap.String("account_id", input.AccountID))
		return nil, apperror.NewNotFoundCause("profile", input.AccountID, err)
	}

	if cached, ok, err := uc.cache.GetByOwner(ctx, ownerID); err != nil {
		uc.logger.Warn("Profile cache read failed", zap.String("owner_id", ownerID.String()), zap.Error(err))
	} else if ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		uc.logger.Debug("Profile served from cache", zap.String("owner_id", ownerID.String()))
		return &GetProfileOutput{Profile: cached}, nil
	}

	// The stamp is taken before the read; a write or delete that lands
	// between the read and the fill advances it and the fill is dropped.
	stamp, stampErr := uc.cache.OwnerStamp(ctx, ownerID)
	if stampErr != nil {
		uc.logger.Warn("Profile cache stamp read failed", zap.String("owner_id", ownerID.String()), zap.Error(stampErr))
	}

	p, err := uc.profileRepo.FindByOwnerWithAccount(ctx, ownerID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil, apperror.NewNotFoundCause("profile", input.AccountID, err)
		}
		span.RecordError(err)
		return nil, err
	}

	if stampErr == nil {
		stored, err := uc.cache.SetByOwner(ctx, p, stamp)
		if err != nil {
			uc.logger.Warn("Profile cache write failed", zap.String("owner_id", ownerID.String()), zap.Error(err))
		} else if !stored {
			uc.logger.Debug("Stale profile not cached", zap.String("owner_id", ownerID.String()))
		}
	}
	return &GetProfileOutput{Profile: p}, nil
}

type ListProfilesOutput struct {
	Profiles []*profile.Profile
}

// ExecuteListProfiles never returns a nil slice.
func (uc *ProfileQueryUseCase) ExecuteListProfiles(ctx context.Context) (*ListProfilesOutput, error) {
	ctx, span := tracer.Start(ctx, "ListProfiles")
	defer span.End()

	if cached, ok, err := uc.cache.GetAll(ctx); err != nil {
		uc.logger.Warn("Profile list cache read failed", zap.Error(err))
	} else if ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return &ListProfilesOutput{Profiles: nonNil(cached)}, nil
	}

	stamp, stampErr := uc.cache.ListStamp(ctx)
	if stampErr != nil {
		uc.logger.Warn("Profile list cache stamp read failed", zap.Error(stampErr))
	}

	profiles, err := uc.profileRepo.FindAllWithAccount(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	profiles = nonNil(profiles)

	if stampErr == nil {
		if _, err := uc.cache.SetAll(ctx, profiles, stamp); err != nil {
			uc.logger.Warn("Profile list cache write failed", zap.Error(err))
		}
	}
	span.SetAttributes(attribute.Int("count", len(profiles)))
	return &ListProfilesOutput{Profiles: profiles}, nil
}

func nonNil(ps []*profile.Profile) []*profile.Profile {
	if ps == nil {
		return []*profile.Profile{}
	}
	return ps
}
