package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a request to register a new order.
// Unit prices are not part of the request; they are captured from the catalog.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(&actor, order.Draft{
//	    Customer: order.Customer{Name: "Amina", Phone: "0550000000"},
//	    Items:    []order.ItemDraft{{ProductID: 12, Quantity: 2}},
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	result, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	actor *kernel.UUID
	draft order.Draft

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command on behalf of actor. A nil actor
// marks an order created by the system.
func NewCreateOrderCommand(actor *kernel.UUID, draft order.Draft) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setActor(actor),
		cmd.setDraft(draft),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Actor() *kernel.UUID {
	return c.actor
}

// Draft returns the order values. CreatedBy is the actor.
func (c CreateOrderCommand) Draft() order.Draft {
	d := c.draft
	d.CreatedBy = c.actor
	d.Items = append([]order.ItemDraft(nil), c.draft.Items...)
	return d
}

func (c *CreateOrderCommand) setActor(actor *kernel.UUID) error {
	if actor == nil {
		return nil
	}
	if err := actor.Validate(); err != nil {
		return err
	}
	a := *actor
	c.actor = &a
	return nil
}

func (c *CreateOrderCommand) setDraft(d order.Draft) error {
	if len(d.Items) == 0 {
		return errs.NewValueIsRequiredError(string(order.FieldItems))
	}
	for _, it := range d.Items {
		if it.ID != nil {
			return errs.NewValueIsInvalidError("items.id")
		}
	}
	c.draft = d
	return nil
}
