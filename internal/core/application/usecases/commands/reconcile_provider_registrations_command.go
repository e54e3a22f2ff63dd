package commands

import (
	"errors"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

const maxReconcileBatch = 500

var ErrReconcileProviderRegistrationsCommandIsNotConstructed = errors.New(
	"ReconcileProviderRegistrationsCommand must be created via NewReconcileProviderRegistrationsCommand constructor",
)

// ReconcileProviderRegistrationsCommand retries the registration of orders that
// are assigned to the integrated provider but carry no provider order code.
type ReconcileProviderRegistrationsCommand struct { //nolint:recvcheck //using for validation
	batchSize int

	guard guard.ConstructorGuard
}

func NewReconcileProviderRegistrationsCommand(batchSize int) (ReconcileProviderRegistrationsCommand, error) {
	if batchSize < 1 || batchSize > maxReconcileBatch {
		return ReconcileProviderRegistrationsCommand{},
			errs.NewValueIsOutOfRangeError("batch size", batchSize, 1, maxReconcileBatch)
	}
	return ReconcileProviderRegistrationsCommand{
		batchSize: batchSize,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c ReconcileProviderRegistrationsCommand) Validate() error {
	return c.guard.Validate(ErrReconcileProviderRegistrationsCommandIsNotConstructed)
}

func (c ReconcileProviderRegistrationsCommand) BatchSize() int {
	return c.batchSize
}
