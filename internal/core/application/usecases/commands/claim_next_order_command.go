package commands

import (
	"errors"
	"fmt"
	"slices"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

// Capabilities carried by a caller's token.
const (
	CapabilityCreateOrders = "orders:create"
	CapabilityUpdateOrders = "orders:update"
)

var ErrClaimNextOrderCommandIsNotConstructed = errors.New(
	"ClaimNextOrderCommand must be created via NewClaimNextOrderCommand constructor",
)

// ClaimNextOrderCommand asks for the next order of the agent queue.
// Only agents holding the orders:update capability may claim.
type ClaimNextOrderCommand struct { //nolint:recvcheck //using for validation
	agentID kernel.UUID

	guard guard.ConstructorGuard
}

func NewClaimNextOrderCommand(agentID kernel.UUID, role order.Role, capabilities []string) (ClaimNextOrderCommand, error) {
	if role != order.RoleAgent {
		return ClaimNextOrderCommand{}, fmt.Errorf("%w: role %s cannot claim orders", errs.ErrUnauthorized, role)
	}
	if !slices.Contains(capabilities, CapabilityUpdateOrders) {
		return ClaimNextOrderCommand{}, fmt.Errorf("%w: missing capability %s", errs.ErrUnauthorized, CapabilityUpdateOrders)
	}
	if err := agentID.Validate(); err != nil {
		return ClaimNextOrderCommand{}, err
	}

	return ClaimNextOrderCommand{
		agentID: agentID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c ClaimNextOrderCommand) Validate() error {
	return c.guard.Validate(ErrClaimNextOrderCommandIsNotConstructed)
}

func (c ClaimNextOrderCommand) AgentID() kernel.UUID {
	return c.agentID
}
