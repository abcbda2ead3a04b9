package user

import "fmt"

// Status is the closed set of account states. Writes go through Transition so
// arbitrary strings never reach the status column.
type Status string

const (
	StatusCreated         Status = "created"
	StatusPhoneVerified   Status = "phone_verified"
	StatusAwaitingVouches Status = "awaiting_vouches"
	StatusVerified        Status = "verified"
	StatusRestricted      Status = "restricted"
	StatusBanned          Status = "banned"
)

// transitions is the allowed forward edge for each state. Restricted and
// banned are administrative side states reachable from anywhere.
var transitions = map[Status][]Status{
	StatusCreated:         {StatusPhoneVerified},
	StatusPhoneVerified:   {StatusAwaitingVouches},
	StatusAwaitingVouches: {StatusVerified},
	StatusVerified:        {},
	StatusRestricted:      {},
	StatusBanned:          {},
}

// IsValid reports whether s is a recognized status value.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	if !s.IsValid() || !target.IsValid() {
		return false
	}
	// Administrative side states are reachable from any state.
	if target == StatusRestricted || target == StatusBanned {
		return true
	}
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Transition validates the move from s to target and returns target.
func (s Status) Transition(target Status) (Status, error) {
	if !s.CanTransitionTo(target) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, target)
	}
	return target, nil
}
