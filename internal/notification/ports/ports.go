// Package ports defines what the notification router needs from the
// roster and the task queue.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// RecipientDirectory resolves audiences over the roster.
type RecipientDirectory interface {
	// ListRecipients returns the distributors matching the tier filter
	// ("all" or a tier) and, when set, the single target.
	ListRecipients(ctx context.Context, tier string, distributorID *uuid.UUID) ([]uuid.UUID, error)
	// TierOf returns the membership tier of a distributor.
	TierOf(ctx context.Context, distributorID uuid.UUID) (string, error)
}

// DispatchScheduler hands a persisted notification to the task queue.
type DispatchScheduler interface {
	ScheduleNotificationDispatch(ctx context.Context, notificationID uuid.UUID) error
}
