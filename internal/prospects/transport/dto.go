package transport

import "github.com/google/uuid"

// UpdateStateRequest moves a prospect through the funnel.
type UpdateStateRequest struct {
	State string `json:"state" validate:"required,prospect_state"`
}

// ProspectResponse represents a prospect in API responses.
type ProspectResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Phone             string    `json:"phone"`
	State             string    `json:"state"`
	FollowUp          string    `json:"followUp"`
	NeedsFollowUp     bool      `json:"needsFollowUp"`
	LastInteractionAt string    `json:"lastInteractionAt"`
	CreatedAt         string    `json:"createdAt"`
}

// ProspectListResponse wraps a list of prospects.
type ProspectListResponse struct {
	Items         []ProspectResponse `json:"items"`
	Total         int                `json:"total"`
	NeedsFollowUp int                `json:"needsFollowUp"`
}
