package commands

import (
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrLogContactAttemptCommandIsNotConstructed = errors.New(
	"LogContactAttemptCommand must be created via NewLogContactAttemptCommand constructor",
)

// LogContactAttemptCommand records one call to the customer. Agents count on
// calls, follow-up workers on followup_calls.
type LogContactAttemptCommand struct { //nolint:recvcheck //using for validation
	orderID int64
	actor   kernel.UUID
	role    order.Role

	guard guard.ConstructorGuard
}

func NewLogContactAttemptCommand(orderID int64, actor kernel.UUID, role order.Role) (LogContactAttemptCommand, error) {
	var errList []error
	if orderID <= 0 {
		errList = append(errList, errs.NewValueIsInvalidError("order id"))
	}
	errList = append(errList, actor.Validate())
	if role != order.RoleAgent && role != order.RoleFollowup {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("role",
			fmt.Errorf("role %s does not log contact attempts", role)))
	}
	if err := errors.Join(errList...); err != nil {
		return LogContactAttemptCommand{}, err
	}

	return LogContactAttemptCommand{
		orderID: orderID,
		actor:   actor,
		role:    role,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c LogContactAttemptCommand) Validate() error {
	return c.guard.Validate(ErrLogContactAttemptCommandIsNotConstructed)
}

func (c LogContactAttemptCommand) OrderID() int64     { return c.orderID }
func (c LogContactAttemptCommand) Actor() kernel.UUID { return c.actor }
func (c LogContactAttemptCommand) Role() order.Role   { return c.role }
