package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// FollowupStatus is owned by the follow-up worker contacting the customer after
// confirmation.
type FollowupStatus int

const (
	FollowupUnknown FollowupStatus = iota
	FollowupNew
	FollowupWrongNumber
	FollowupNoAnswer
	FollowupReported
	FollowupCanceled
	FollowupReconfirmed
	FollowupChange
	FollowupRefund
)

func getFollowupCodes() map[FollowupStatus]string {
	//nolint:exhaustive // FollowupUnknown has no code
	return map[FollowupStatus]string{
		FollowupNew:         "new",
		FollowupWrongNumber: "wrong_number",
		FollowupNoAnswer:    "no_answer",
		FollowupReported:    "reported",
		FollowupCanceled:    "canceled",
		FollowupReconfirmed: "reconfirmed",
		FollowupChange:      "change",
		FollowupRefund:      "refund",
	}
}

func (s FollowupStatus) String() string {
	if code, ok := getFollowupCodes()[s]; ok {
		return code
	}
	return "unknown"
}

func (s FollowupStatus) Validate() error {
	if _, ok := getFollowupCodes()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(string(FieldFollowupStatus), fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func ParseFollowupStatus(code string) (FollowupStatus, error) {
	for s, c := range getFollowupCodes() {
		if c == code {
			return s, nil
		}
	}
	return FollowupUnknown, errs.NewValueIsInvalidErrorWithCause(
		string(FieldFollowupStatus), fmt.Errorf("%q is not a valid status", code))
}

// Reconfirms reports whether reaching this status stamps reconfirmed_at.
func (s FollowupStatus) Reconfirms() bool {
	switch s {
	case FollowupReconfirmed:
		return true
	case FollowupUnknown, FollowupNew, FollowupWrongNumber, FollowupNoAnswer, FollowupReported,
		FollowupCanceled, FollowupChange, FollowupRefund:
		return false
	}
	return false
}
