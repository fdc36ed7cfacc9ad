package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateNotificationRequest is the admin payload for a new notification.
type CreateNotificationRequest struct {
	Title               string     `json:"title" validate:"required,min=1,max=200"`
	Body                string     `json:"body" validate:"required,min=1,max=2000"`
	Category            string     `json:"category" validate:"required,notification_category"`
	TargetTier          string     `json:"targetTier" validate:"omitempty,target_tier"`
	TargetDistributorID *uuid.UUID `json:"targetDistributorId,omitempty"`
}

// NotificationResponse represents a notification in API responses.
type NotificationResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Title               string     `json:"title"`
	Body                string     `json:"body"`
	Category            string     `json:"category"`
	TargetTier          string     `json:"targetTier"`
	TargetDistributorID *uuid.UUID `json:"targetDistributorId,omitempty"`
	RecipientCount      int        `json:"recipientCount"`
	DispatchedAt        *time.Time `json:"dispatchedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// ListFeedRequest pages the distributor feed.
type ListFeedRequest struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

// FeedResponse wraps a distributor feed.
type FeedResponse struct {
	Items []NotificationResponse `json:"items"`
}
