package transport

import "github.com/google/uuid"

// ReassignSponsorRequest changes a distributor's sponsor. A null sponsor
// turns the distributor into a root.
type ReassignSponsorRequest struct {
	SponsorID *uuid.UUID `json:"sponsorId"`
	Reason    string     `json:"reason" validate:"required,min=1,max=500"`
}

// NodeResponse is a distributor in a lineage view.
type NodeResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Tier          string     `json:"tier"`
	ReferralCode  string     `json:"referralCode"`
	SponsorID     *uuid.UUID `json:"sponsorId,omitempty"`
	IsOrganicLead bool       `json:"isOrganicLead"`
}

// DescendantResponse is a downline member with its depth below the root.
type DescendantResponse struct {
	NodeResponse
	Depth int `json:"depth"`
}

// LineageResponse is the administrative lineage view.
type LineageResponse struct {
	Distributor NodeResponse         `json:"distributor"`
	Sponsor     *NodeResponse        `json:"sponsor,omitempty"`
	Descendants []DescendantResponse `json:"descendants"`
}

// LineageQuery bounds the descendants listing.
type LineageQuery struct {
	MaxDepth int `form:"maxDepth" validate:"omitempty,min=1,max=50"`
}

// AuditEntryResponse is an audit log entry in API responses.
type AuditEntryResponse struct {
	ID                uuid.UUID  `json:"id"`
	Actor             string     `json:"actor"`
	DistributorID     uuid.UUID  `json:"distributorId"`
	PreviousSponsorID *uuid.UUID `json:"previousSponsorId"`
	NewSponsorID      *uuid.UUID `json:"newSponsorId"`
	Reason            string     `json:"reason"`
	CreatedAt         string     `json:"createdAt"`
}

// ListAuditRequest filters the audit log.
type ListAuditRequest struct {
	DistributorID string `form:"distributorId" validate:"omitempty,uuid"`
	Page          int    `form:"page" validate:"omitempty,min=1"`
	PageSize      int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// AuditListResponse wraps a page of audit entries.
type AuditListResponse struct {
	Items      []AuditEntryResponse `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
}
