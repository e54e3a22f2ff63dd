package commands

import (
	"errors"
	"strings"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrApplyDeliveryStatusCommandIsNotConstructed = errors.New(
	"ApplyDeliveryStatusCommand must be created via NewApplyDeliveryStatusCommand constructor",
)

// ApplyDeliveryStatusCommand carries one status notification pushed by the
// delivery provider.
type ApplyDeliveryStatusCommand struct { //nolint:recvcheck //using for validation
	orderCode    string
	statusCode   int
	returnReason *string

	guard guard.ConstructorGuard
}

// NewApplyDeliveryStatusCommand creates the command. A nil returnReason leaves
// the stored return reason untouched.
func NewApplyDeliveryStatusCommand(orderCode string, statusCode int, returnReason *string) (ApplyDeliveryStatusCommand, error) {
	orderCode = strings.TrimSpace(orderCode)
	if orderCode == "" {
		return ApplyDeliveryStatusCommand{}, errs.NewValueIsRequiredError("order_code")
	}

	cmd := ApplyDeliveryStatusCommand{
		orderCode:  orderCode,
		statusCode: statusCode,
		guard:      guard.NewConstructorGuard(),
	}
	if returnReason != nil {
		r := strings.TrimSpace(*returnReason)
		cmd.returnReason = &r
	}
	return cmd, nil
}

func (c ApplyDeliveryStatusCommand) Validate() error {
	return c.guard.Validate(ErrApplyDeliveryStatusCommandIsNotConstructed)
}

func (c ApplyDeliveryStatusCommand) OrderCode() string     { return c.orderCode }
func (c ApplyDeliveryStatusCommand) StatusCode() int       { return c.statusCode }
func (c ApplyDeliveryStatusCommand) ReturnReason() *string { return c.returnReason }
