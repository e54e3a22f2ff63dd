package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// ConfirmationStatus is the agent owned axis: whether the customer order was
// verified, accepted or dropped. Persisted as agent_status.
type ConfirmationStatus int

const (
	AgentUnknown ConfirmationStatus = iota
	AgentNew
	AgentConfirmed
	AgentCanceled
	AgentDuplicate
	AgentNoAnswer
	AgentChange
	AgentRefund
	AgentWrongNumber
	AgentReported
)

func getConfirmationCodes() map[ConfirmationStatus]string {
	//nolint:exhaustive // AgentUnknown has no code
	return map[ConfirmationStatus]string{
		AgentNew:         "new",
		AgentConfirmed:   "confirmed",
		AgentCanceled:    "canceled",
		AgentDuplicate:   "duplicate",
		AgentNoAnswer:    "no_answer",
		AgentChange:      "change",
		AgentRefund:      "refund",
		AgentWrongNumber: "wrong_number",
		AgentReported:    "reported",
	}
}

func (s ConfirmationStatus) String() string {
	if code, ok := getConfirmationCodes()[s]; ok {
		return code
	}
	return "unknown"
}

func (s ConfirmationStatus) Validate() error {
	if _, ok := getConfirmationCodes()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(string(FieldAgentStatus), fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func ParseConfirmationStatus(code string) (ConfirmationStatus, error) {
	for s, c := range getConfirmationCodes() {
		if c == code {
			return s, nil
		}
	}
	return AgentUnknown, errs.NewValueIsInvalidErrorWithCause(
		string(FieldAgentStatus), fmt.Errorf("%q is not a valid status", code))
}

// AllowsDelivery reports whether an order in this status may be handed to a
// delivery provider and must carry a resolvable city and area.
func (s ConfirmationStatus) AllowsDelivery() bool {
	switch s {
	case AgentConfirmed, AgentChange, AgentRefund:
		return true
	case AgentUnknown, AgentNew, AgentCanceled, AgentDuplicate, AgentNoAnswer, AgentWrongNumber, AgentReported:
		return false
	}
	return false
}

// Claimable reports whether an order in this status still waits for an agent.
func (s ConfirmationStatus) Claimable() bool {
	switch s {
	case AgentNew:
		return true
	case AgentUnknown, AgentConfirmed, AgentCanceled, AgentDuplicate, AgentNoAnswer,
		AgentChange, AgentRefund, AgentWrongNumber, AgentReported:
		return false
	}
	return false
}
