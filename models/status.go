package models

import "fmt"

// Mortgage lifecycle statuses.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusActive    = "active"
	StatusDefaulted = "defaulted"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
)

// validTransitions is the lifecycle transition table. A defaulted mortgage can
// be reinstated to active; completed and rejected have no outgoing transitions.
var validTransitions = map[string][]string{
	StatusPending:   {StatusApproved, StatusRejected},
	StatusApproved:  {StatusActive, StatusRejected},
	StatusActive:    {StatusDefaulted, StatusCompleted},
	StatusDefaulted: {StatusActive},
	StatusCompleted: {},
	StatusRejected:  {},
}

// IsMortgageStatus reports whether s is a known lifecycle status.
func IsMortgageStatus(s string) bool {
	_, ok := validTransitions[s]
	return ok
}

// ValidateTransition returns ErrInvalidTransition when from -> to is not in the
// transition table. It never mutates anything; callers apply the new status only
// on a nil return.
func ValidateTransition(from, to string) error {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
