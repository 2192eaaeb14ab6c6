package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/devprofiles/internal/application/service"
	"github.com/khoahotran/devprofiles/internal/domain/profile"
	"github.com/khoahotran/devprofiles/pkg/apperror"
	"github.com/khoahotran/devprofiles/pkg/logger"
)

var tracer = otel.Tracer("profile_usecase")

type UpsertProfileUseCase struct {
	profileRepo profile.Repository
	cache       service.ProfileCache
	publisher   service.EventPublisher
	logger      logger.Logger
	now         func() time.Time
}

func NewUpsertProfileUseCase(repo profile.Repository, cache service.ProfileCache, pub service.EventPublisher, log logger.Logger) *UpsertProfileUseCase {
	return &UpsertProfileUseCase{
		profileRepo: repo,
		cache:       cache,
		publisher:   pub,
		logger:      log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// UpsertProfileInput carries an already authenticated owner and fields that
// already passed the required-field rules.
type UpsertProfileInput struct {
	OwnerID uuid.UUID
	Fields  profile.Fields
}

type UpsertProfileOutput struct {
	Profile *profile.Profile
	Created bool
}

// Execute creates the owner's profile or replaces its whole mutable field
// set. Fields not sent in this call do not survive from the stored version.
//
// The existence check and the write are not serialized; a concurrent upsert
// for the same owner is stopped by the store's unique owner constraint and
// reported as an internal error.
func (uc *UpsertProfileUseCase) Execute(ctx context.Context, input UpsertProfileInput) (*UpsertProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "UpsertProfile")
	defer span.End()
	span.SetAttributes(attribute.String("owner_id", input.OwnerID.String()))

	candidate := profile.Build(input.OwnerID, input.Fields)
	now := uc.now()
	candidate.UpdatedAt = now

	existing, err := uc.profileRepo.FindByOwner(ctx, input.OwnerID)
	if err != nil && !errors.Is(err, profile.ErrProfileNotFound) {
		span.RecordError(err)
		return nil, err
	}

	out := &UpsertProfileOutput{}
	if existing != nil {
		candidate.ID = existing.ID
		candidate.CreatedAt = existing.CreatedAt

		stored, err := uc.profileRepo.Replace(ctx, candidate)
		if err != nil {
			span.RecordError(err)
			if errors.Is(err, profile.ErrProfileNotFound) {
				return nil, apperror.NewNotFoundCause("profile", input.OwnerID.String(), err)
			}
			return nil, err
		}
		out.Profile = stored
	} else {
		candidate.ID = uuid.New()
		candidate.CreatedAt = now

		if err := uc.profileRepo.Insert(ctx, candidate); err != nil {
			span.RecordError(err)
			return nil, err
		}
		out.Profile = candidate
		out.Created = true
	}
	span.SetAttributes(attribute.Bool("created", out.Created))

	if err := uc.cache.Invalidate(ctx, input.OwnerID); err != nil {
		uc.logger.Warn("Failed to invalidate profile cache", zap.String("owner_id", input.OwnerID.String()), zap.Error(err))
	}

	go func() {
		err := uc.publisher.PublishProfileEvent(context.Background(), service.ProfileEventPayload{
			EventType:  service.ProfileEventUpserted,
			OwnerID:    input.OwnerID,
			Created:    out.Created,
			OccurredAt: now,
		})
		if err != nil {
			uc.logger.Error("Failed to publish profile upserted event", err, zap.String("owner_id", input.OwnerID.String()))
		}
	}()

	return out, nil
}
