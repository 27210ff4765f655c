package workflow

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusDeclined  Status = "Declined"
	StatusCompleted Status = "Completed"

	StatusPaid     Status = "Paid"
	StatusFailed   Status = "Failed"
	StatusRefunded Status = "Refunded"
)

// ErrInvalidTransition is matched with errors.Is; the concrete error is *TransitionError.
var ErrInvalidTransition = errors.New("invalid state transition")

type TransitionError struct {
	Entity string
	From   Status
	To     Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Machine is a closed transition table for one entity's status field.
// Statuses without outgoing edges are terminal.
type Machine struct {
	Entity  string
	allowed map[Status]map[Status]bool
}

var (
	Hotel = Machine{Entity: "hotel", allowed: map[Status]map[Status]bool{
		StatusPending:  {StatusApproved: true, StatusRejected: true},
		StatusApproved: {},
		StatusRejected: {},
	}}

	Event = Machine{Entity: "event", allowed: map[Status]map[Status]bool{
		StatusPending:  {StatusApproved: true, StatusDeclined: true},
		StatusApproved: {},
		StatusDeclined: {},
	}}

	// Completed is a legacy alias for Pending on availability requests.
	AvailabilityRequest = Machine{Entity: "availability_request", allowed: map[Status]map[Status]bool{
		StatusPending:   {StatusApproved: true, StatusRejected: true},
		StatusCompleted: {StatusApproved: true, StatusRejected: true},
		StatusApproved:  {},
		StatusRejected:  {},
	}}

	Payment = Machine{Entity: "payment", allowed: map[Status]map[Status]bool{
		StatusPending:  {StatusPaid: true, StatusFailed: true},
		StatusPaid:     {StatusRefunded: true},
		StatusFailed:   {},
		StatusRefunded: {},
	}}
)

func (m Machine) Known(s Status) bool {
	_, ok := m.allowed[s]
	return ok
}

// Parse validates s against this machine's status set. Used for query filters.
func (m Machine) Parse(s string) (Status, error) {
	if m.Known(Status(s)) {
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown %s status: %s", m.Entity, s)
}

func (m Machine) CanTransition(from, to Status) bool {
	next, ok := m.allowed[from]
	if !ok {
		return false
	}
	return next[to]
}

func (m Machine) Check(from, to Status) error {
	if m.CanTransition(from, to) {
		return nil
	}
	return &TransitionError{Entity: m.Entity, From: from, To: to}
}
