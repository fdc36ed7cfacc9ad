// Package domain holds lead history rules.
package domain

import (
	"errors"
	"strings"

	"koppara_backend/platform/apperr"
)

// ErrForeignKeyViolation is wrapped when a lead references a prospect that
// the distributor does not own.
var ErrForeignKeyViolation = errors.New("prospect does not belong to distributor")

// ForeignKeyViolation reports a lead for a prospect outside the distributor's ledger.
func ForeignKeyViolation() *apperr.Error {
	return apperr.Wrap(apperr.KindValidation, ErrForeignKeyViolation.Error(), ErrForeignKeyViolation).
		WithCode(apperr.CodeForeignKeyViolation)
}

// LineItem is one product line of a shared quote.
type LineItem struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

// NormalizeLineItems trims product names and counts a missing or
// non-positive quantity as 1. Order is preserved.
func NormalizeLineItems(items []LineItem) ([]LineItem, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("at least one line item is required")
	}
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.ProductName)
		if name == "" {
			return nil, apperr.Validation("line item product name is required")
		}
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		out = append(out, LineItem{ProductName: name, Quantity: qty})
	}
	return out, nil
}
