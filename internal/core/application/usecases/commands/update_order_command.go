package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrUpdateOrderCommandIsNotConstructed = errors.New(
	"UpdateOrderCommand must be created via NewUpdateOrderCommand constructor",
)

// UpdateOrderCommand is a partial update of one order on behalf of a user.
// Only the fields declared in the patch are applied, and the role decides which
// fields may be declared.
type UpdateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID int64
	actor   kernel.UUID
	role    order.Role
	patch   order.Patch

	guard guard.ConstructorGuard
}

func NewUpdateOrderCommand(orderID int64, actor kernel.UUID, role order.Role, patch order.Patch) (UpdateOrderCommand, error) {
	cmd := UpdateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActor(actor),
		cmd.setPatch(role, patch),
	); err != nil {
		return UpdateOrderCommand{}, err
	}

	return cmd, nil
}

func (c UpdateOrderCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderCommandIsNotConstructed)
}

func (c UpdateOrderCommand) OrderID() int64     { return c.orderID }
func (c UpdateOrderCommand) Actor() kernel.UUID { return c.actor }
func (c UpdateOrderCommand) Role() order.Role   { return c.role }
func (c UpdateOrderCommand) Patch() order.Patch { return c.patch }

func (c *UpdateOrderCommand) setOrderID(id int64) error {
	if id <= 0 {
		return errs.NewValueIsInvalidError("order id")
	}
	c.orderID = id
	return nil
}

func (c *UpdateOrderCommand) setActor(actor kernel.UUID) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	c.actor = actor
	return nil
}

func (c *UpdateOrderCommand) setPatch(role order.Role, patch order.Patch) error {
	if err := patch.Validate(role); err != nil {
		return err
	}
	c.role = role
	c.patch = patch
	return nil
}
