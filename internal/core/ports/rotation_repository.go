package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
)

// RotationRepository stores the follow-up rotation pointer: the last worker
// that received an order.
type RotationRepository interface {
	// LockPointer locks the pointer until the end of the transaction and
	// returns its value. A nil worker means the rotation has not started or was
	// reset. Returns errs.ErrConcurrencyConflict when the lock cannot be taken
	// in time.
	LockPointer(ctx context.Context) (*kernel.UUID, error)

	// SavePointer stores worker as the last assigned one. Callers hold the lock
	// taken by LockPointer.
	SavePointer(ctx context.Context, worker kernel.UUID) error

	// Reset clears the pointer so the next assignment starts at the first
	// worker of the roster.
	Reset(ctx context.Context) error
}
