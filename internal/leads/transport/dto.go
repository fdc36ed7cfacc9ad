package transport

import "github.com/google/uuid"

// LineItemRequest is one product line of a quote.
type LineItemRequest struct {
	ProductName string `json:"productName" validate:"required,min=1,max=200"`
	Quantity    int    `json:"quantity" validate:"omitempty,min=0,max=10000"`
}

// ShareQuoteRequest records a quote shared with a customer.
type ShareQuoteRequest struct {
	CustomerName string            `json:"customerName" validate:"required,min=1,max=120"`
	Phone        string            `json:"phone" validate:"required,min=7,max=32"`
	LineItems    []LineItemRequest `json:"lineItems" validate:"required,min=1,max=100,dive"`
	AmountCents  int64             `json:"amountCents" validate:"min=0"`
}

// LineItemResponse is one product line in API responses.
type LineItemResponse struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

// LeadResponse represents a lead in API responses.
type LeadResponse struct {
	ID          uuid.UUID          `json:"id"`
	ProspectID  uuid.UUID          `json:"prospectId"`
	LineItems   []LineItemResponse `json:"lineItems"`
	AmountCents int64              `json:"amountCents"`
	CreatedAt   string             `json:"createdAt"`
}

// ShareQuoteResponse is the outcome of sharing a quote.
type ShareQuoteResponse struct {
	Lead            LeadResponse `json:"lead"`
	ProspectID      uuid.UUID    `json:"prospectId"`
	ProspectState   string       `json:"prospectState"`
	ProspectCreated bool         `json:"prospectCreated"`
}

// ListLeadsRequest pages the lead history.
type ListLeadsRequest struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// LeadListResponse wraps a page of leads.
type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}
