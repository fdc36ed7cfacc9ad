// Package domain contains the sponsor graph rules: the bounded ancestor walk
// that guards acyclicity and the whole-graph integrity scan.
package domain

import (
	"errors"
	"fmt"

	"koppara_backend/platform/apperr"
)

// Sentinel errors for sponsor graph rejections. They stay reachable through
// errors.Is after being wrapped in an *apperr.Error.
var (
	ErrSelfSponsorship    = errors.New("distributor cannot sponsor itself")
	ErrCycleDetected      = errors.New("sponsor assignment would create a cycle")
	ErrInvariantViolation = errors.New("sponsor graph is corrupted")
)

// SelfSponsorship reports an attempt to make a distributor its own sponsor.
func SelfSponsorship() *apperr.Error {
	return apperr.Wrap(apperr.KindValidation, ErrSelfSponsorship.Error(), ErrSelfSponsorship).
		WithCode(apperr.CodeSelfSponsorship)
}

// CycleDetected reports that the distributor is an ancestor of the proposed sponsor.
func CycleDetected() *apperr.Error {
	return apperr.Wrap(apperr.KindConflict, ErrCycleDetected.Error(), ErrCycleDetected).
		WithCode(apperr.CodeCycleDetected)
}

// InvariantViolation reports pre-existing corruption met during a walk.
func InvariantViolation(reason string) *apperr.Error {
	return apperr.Wrap(apperr.KindInternal, ErrInvariantViolation.Error(), fmt.Errorf("%w: %s", ErrInvariantViolation, reason)).
		WithCode(apperr.CodeInvariantViolation)
}
