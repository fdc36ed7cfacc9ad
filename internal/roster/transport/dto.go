package transport

import "github.com/google/uuid"

// RegisterDistributorRequest activates a membership.
type RegisterDistributorRequest struct {
	Name                string  `json:"name" validate:"required,min=1,max=120"`
	Email               string  `json:"email" validate:"required,email,max=254"`
	Phone               string  `json:"phone" validate:"required,min=7,max=32"`
	Tier                string  `json:"tier" validate:"required,tier"`
	SponsorReferralCode *string `json:"sponsorReferralCode,omitempty" validate:"omitempty,min=5,max=16"`
}

// UpdateProfileRequest edits a distributor's contact details.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,min=7,max=32"`
}

// SponsorSummary is the sponsor shown alongside a distributor.
type SponsorSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ReferralCode string    `json:"referralCode"`
}

// DistributorResponse represents a distributor in API responses.
type DistributorResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Tier          string          `json:"tier"`
	ReferralCode  string          `json:"referralCode"`
	SponsorID     *uuid.UUID      `json:"sponsorId,omitempty"`
	Sponsor       *SponsorSummary `json:"sponsor,omitempty"`
	IsOrganicLead bool            `json:"isOrganicLead"`
	CreatedAt     string          `json:"createdAt"`
}

// DistributorListResponse wraps a list of distributors.
type DistributorListResponse struct {
	Items []DistributorResponse `json:"items"`
	Total int                   `json:"total"`
}

// ReferralLookupResponse is the public view of a referral code owner.
type ReferralLookupResponse struct {
	ReferralCode string `json:"referralCode"`
	Name         string `json:"name"`
	Tier         string `json:"tier"`
}
