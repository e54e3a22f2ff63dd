package commands

import (
	"errors"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

const maxRelayBatch = 1000

var ErrRelayOutboxEventsCommandIsNotConstructed = errors.New(
	"RelayOutboxEventsCommand must be created via NewRelayOutboxEventsCommand constructor",
)

// RelayOutboxEventsCommand publishes up to batchSize pending outbox events.
type RelayOutboxEventsCommand struct { //nolint:recvcheck //using for validation
	batchSize int

	guard guard.ConstructorGuard
}

func NewRelayOutboxEventsCommand(batchSize int) (RelayOutboxEventsCommand, error) {
	if batchSize < 1 || batchSize > maxRelayBatch {
		return RelayOutboxEventsCommand{}, errs.NewValueIsOutOfRangeError("batch size", batchSize, 1, maxRelayBatch)
	}
	return RelayOutboxEventsCommand{
		batchSize: batchSize,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c RelayOutboxEventsCommand) Validate() error {
	return c.guard.Validate(ErrRelayOutboxEventsCommandIsNotConstructed)
}

func (c RelayOutboxEventsCommand) BatchSize() int {
	return c.batchSize
}
