package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// TransitionError represents a workflow move the state machine forbids.
type TransitionError struct {
	From Status
	To   Status
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// Is enables errors.Is matching on TransitionError.
func (e TransitionError) Is(target error) bool {
	_, ok := target.(TransitionError)
	if ok {
		return true
	}
	_, ok = target.(*TransitionError)
	return ok
}

// ErrNotApproved is returned when a card export is requested for a record
// that does not hold approved status. Badge number and accreditation id
// are only meaningful after approval.
var ErrNotApproved = fmt.Errorf("record is not approved")
