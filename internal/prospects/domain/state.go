// Package domain holds the prospect funnel rules: states, the transition
// policy and the follow-up windows measured from the last interaction.
package domain

import (
	"errors"
	"fmt"
	"time"

	"koppara_backend/platform/apperr"
)

// State is a prospect's position in the sales funnel.
type State string

const (
	StateInterested State = "interested"
	StateInProgress State = "in_progress"
	StateClosed     State = "closed"
)

// States lists the funnel states in order.
var States = []State{StateInterested, StateInProgress, StateClosed}

// ErrInvalidTransition is wrapped by errors for rejected backward moves.
var ErrInvalidTransition = errors.New("invalid prospect state transition")

// ParseState validates a state value.
func ParseState(value string) (State, error) {
	s := State(value)
	if s.rank() < 0 {
		return "", apperr.Validation(fmt.Sprintf("unknown prospect state %q", value))
	}
	return s, nil
}

// StateValues returns the canonical state strings.
func StateValues() []string {
	values := make([]string, len(States))
	for i, s := range States {
		values[i] = string(s)
	}
	return values
}

func (s State) rank() int {
	switch s {
	case StateInterested:
		return 0
	case StateInProgress:
		return 1
	case StateClosed:
		return 2
	}
	return -1
}

// TransitionPolicy decides which state changes are accepted. Strict mode
// only moves forward through the funnel; skipping a state is allowed.
type TransitionPolicy struct {
	Strict bool
}

// Check returns nil when from -> to is accepted. Same-state is always accepted.
func (p TransitionPolicy) Check(from, to State) error {
	if !p.Strict || to.rank() >= from.rank() {
		return nil
	}
	return apperr.Wrap(apperr.KindValidation, fmt.Sprintf("cannot move prospect from %s back to %s", from, to), ErrInvalidTransition).
		WithCode(apperr.CodeInvalidTransition)
}

// Follow-up windows measured from the last interaction.
const (
	SLAWindow     = 48 * time.Hour
	OverdueWindow = 72 * time.Hour
)

// FollowUp classifies a prospect by the age of its last interaction.
type FollowUp string

const (
	FollowUpWithinSLA FollowUp = "within_sla"
	FollowUpNeeded    FollowUp = "needs_follow_up"
	FollowUpOverdue   FollowUp = "overdue"
)

// ClassifyFollowUp places an interaction age in its window: below 48h is
// within SLA, [48h, 72h) needs follow-up, 72h and above is overdue.
func ClassifyFollowUp(age time.Duration) FollowUp {
	switch {
	case age < SLAWindow:
		return FollowUpWithinSLA
	case age < OverdueWindow:
		return FollowUpNeeded
	default:
		return FollowUpOverdue
	}
}

// OnTime reports whether a prospect counts toward the SLA index.
func OnTime(state State, lastInteractionAt, now time.Time) bool {
	return state == StateClosed || now.Sub(lastInteractionAt) < SLAWindow
}
