package services

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// ErrEmptyRoster is returned when there is no active follow-up worker to rotate to.
// Callers treat it as a skipped assignment, not as a failure of the mutation.
var ErrEmptyRoster = errors.New("follow-up roster is empty")

// FollowupRotation is a domain service handing confirmed orders to follow-up
// workers in round-robin order.
//
// Business rules:
//   - the roster is ordered; the worker after the last assigned one is next
//   - the rotation wraps at the end of the roster
//   - a last worker missing from the roster (deactivated, or no pointer yet)
//     restarts the rotation at the first worker
//
// FollowupRotation does not lock anything. Callers hold the rotation pointer
// lock from reading last until the new pointer is saved.
//
// Example usage:
//
//	rotation := NewFollowupRotation()
//	worker, err := rotation.Assign(o, roster, last, now)
//	if errors.Is(err, ErrEmptyRoster) {
//	    // leave the order unassigned
//	}
type FollowupRotation struct{}

func NewFollowupRotation() FollowupRotation {
	return FollowupRotation{}
}

// Next returns the worker following last in roster.
func (FollowupRotation) Next(roster []kernel.UUID, last *kernel.UUID) (kernel.UUID, error) {
	if len(roster) == 0 {
		return kernel.UUID{}, ErrEmptyRoster
	}
	if last == nil {
		return roster[0], nil
	}
	for i, worker := range roster {
		if worker.IsEqual(*last) {
			return roster[(i+1)%len(roster)], nil
		}
	}
	return roster[0], nil
}

// Assign picks the next worker and assigns it to o.
func (r FollowupRotation) Assign(
	o *order.Order,
	roster []kernel.UUID,
	last *kernel.UUID,
	now time.Time,
) (kernel.UUID, error) {
	if err := o.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	worker, err := r.Next(roster, last)
	if err != nil {
		return kernel.UUID{}, err
	}

	if err = o.AssignFollowup(worker, now); err != nil {
		return kernel.UUID{}, err
	}
	return worker, nil
}
