package commands

import (
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrResetFollowupRotationCommandIsNotConstructed = errors.New(
	"ResetFollowupRotationCommand must be created via NewResetFollowupRotationCommand constructor",
)

// ResetFollowupRotationCommand clears the rotation pointer so the next
// qualifying order goes to the first worker of the roster. Staff only.
type ResetFollowupRotationCommand struct { //nolint:recvcheck //using for validation
	guard guard.ConstructorGuard
}

func NewResetFollowupRotationCommand(role order.Role) (ResetFollowupRotationCommand, error) {
	if role != order.RoleStaff {
		return ResetFollowupRotationCommand{}, fmt.Errorf("%w: role %s cannot reset the rotation", errs.ErrForbidden, role)
	}
	return ResetFollowupRotationCommand{guard: guard.NewConstructorGuard()}, nil
}

func (c ResetFollowupRotationCommand) Validate() error {
	return c.guard.Validate(ErrResetFollowupRotationCommandIsNotConstructed)
}
