package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ProfileEventType string

const (
	ProfileEventUpserted       ProfileEventType = "PROFILE_UPSERTED"
	ProfileEventAccountDeleted ProfileEventType = "ACCOUNT_DELETED"
)

type ProfileEventPayload struct {
	EventType  ProfileEventType `json:"event_type"`
	OwnerID    uuid.UUID        `json:"owner_id"`
	Created    bool             `json:"created,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

type EventPublisher interface {
	PublishProfileEvent(ctx context.Context, payload ProfileEventPayload) error
}
