package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/devprofiles/internal/application/service"
	"github.com/khoahotran/devprofiles/internal/domain/account"
	"github.com/khoahotran/devprofiles/internal/domain/profile"
	"github.com/khoahotran/devprofiles/pkg/apperror"
	"github.com/khoahotran/devprofiles/pkg/logger"
)

// DeleteAccountUseCase removes an owner's profile and account together.
//
// The two removals run concurrently and are not transactional. Both always
// run to completion; if either fails the whole call fails, even when the
// other removal already went through, and nothing is rolled back. The
// caller sees which step succeeded in the output.
//
// Content the account owns outside the profiles and accounts collections is
// not removed here. ACCOUNT_DELETED is published so its owners can act.
type DeleteAccountUseCase struct {
	profileRepo profile.Repository
	accountRepo account.Repository
	cache       service.ProfileCache
	publisher   service.EventPublisher
	logger      logger.Logger
}

func NewDeleteAccountUseCase(pRepo profile.Repository, aRepo account.Repository, cache service.ProfileCache, pub service.EventPublisher, log logger.Logger) *DeleteAccountUseCase {
	return &DeleteAccountUseCase{
		profileRepo: pRepo,
		accountRepo: aRepo,
		cache:       cache,
		publisher:   pub,
		logger:      log,
	}
}

type DeleteAccountInput struct {
	OwnerID uuid.UUID
}

type DeleteAccountOutput struct {
	ProfileRemoved bool
	AccountRemoved bool
}

func (uc *DeleteAccountUseCase) Execute(ctx context.Context, input DeleteAccountInput) (*DeleteAccountOutput, error) {
	ctx, span := tracer.Start(ctx, "DeleteAccount")
	defer span.End()
	span.SetAttributes(attribute.String("owner_id", input.OwnerID.String()))

	out := &DeleteAccountOutput{}
	var profileErr, accountErr error

	// No shared cancellation: a failing step must not abort its sibling.
	var g errgroup.Group
	g.Go(func() error {
		out.ProfileRemoved, profileErr = uc.profileRepo.RemoveByOwner(ctx, input.OwnerID)
		return profileErr
	})
	g.Go(func() error {
		out.AccountRemoved, accountErr = uc.accountRepo.RemoveByID(ctx, input.OwnerID)
		return accountErr
	})
	waitErr := g.Wait()

	if err := uc.cache.Invalidate(ctx, input.OwnerID); err != nil {
		uc.logger.Warn("Failed to invalidate profile cache", zap.String("owner_id", input.OwnerID.String()), zap.Error(err))
	}

	span.SetAttributes(
		attribute.Bool("profile_removed", out.ProfileRemoved),
		attribute.Bool("account_removed", out.AccountRemoved),
	)

	if waitErr != nil {
		err := errors.Join(profileErr, accountErr)
		span.RecordError(err)
		uc.logger.Error("Cascading delete incomplete", err,
			zap.String("owner_id", input.OwnerID.String()),
			zap.Bool("profile_step_failed", profileErr != nil),
			zap.Bool("account_step_failed", accountErr != nil),
			zap.Bool("profile_removed", out.ProfileRemoved),
			zap.Bool("account_removed", out.AccountRemoved),
		)
		return out, apperror.NewInternal("cascading delete of profile and account did not complete", err)
	}

	go func() {
		err := uc.publisher.PublishProfileEvent(context.Background(), service.ProfileEventPayload{
			EventType:  service.ProfileEventAccountDeleted,
			OwnerID:    input.OwnerID,
			OccurredAt: time.Now().UTC(),
		})
		if err != nil {
			uc.logger.Error("Failed to publish account deleted event", err, zap.String("owner_id", input.OwnerID.String()))
		}
	}()

	return out, nil
}
