// Package status implements the shared order lifecycle state machine.
// Orders and shop orders use the same status vocabulary and the same
// transition table, but progress independently.
package status

import "errors"

// Status is a closed enumeration of order lifecycle states.
type Status string

const (
	New        Status = "new"
	InProgress Status = "in_progress"
	Shipped    Status = "shipped"
	Completed  Status = "completed"
	Cancelled  Status = "cancelled"
)

var (
	// ErrIllegalTransition is returned when a requested status change
	// is not in the transition table for the current state.
	ErrIllegalTransition = errors.New("status change not permitted from current state")

	// ErrUnknownStatus is returned when parsing a value outside the
	// status vocabulary.
	ErrUnknownStatus = errors.New("unknown status")
)

// transitions is the full table of legal moves. Completed and
// cancelled are terminal.
var transitions = map[Status][]Status{
	New:        {InProgress, Cancelled},
	InProgress: {Shipped, Cancelled},
	Shipped:    {Completed, Cancelled},
	Completed:  {},
	Cancelled:  {},
}

// Parse validates a raw status string.
func Parse(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := transitions[s]; !ok {
		return "", ErrUnknownStatus
	}
	return s, nil
}

// Terminal reports whether s has no outgoing transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition checks the table and returns the new status, or
// ErrIllegalTransition when the move is not permitted. It never
// mutates anything beyond the status itself.
func Transition(current, next Status) (Status, error) {
	if !current.CanTransitionTo(next) {
		return current, ErrIllegalTransition
	}
	return next, nil
}

func (s Status) String() string {
	return string(s)
}
