package order

import (
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// Patch is a partial update. Only the fields listed in Fields are applied;
// the remaining values are ignored.
type Patch struct {
	Fields []Field

	Customer           Customer
	Notes              string
	AgentStatus        ConfirmationStatus
	FollowupStatus     FollowupStatus
	DeliveryStatus     DeliveryStatus
	AgentID            *kernel.UUID
	FollowupID         *kernel.UUID
	DeliveryProviderID *int64
	CancellationReason CancellationReason
	CancellationNotes  string
	ReturnReason       string
	Items              []ItemDraft
}

// Declares reports whether f is part of the patch.
func (p Patch) Declares(f Field) bool {
	for _, d := range p.Fields {
		if d == f {
			return true
		}
	}
	return false
}

// Validate checks that every declared field is patchable, declared once and
// writable by role.
func (p Patch) Validate(role Role) error {
	if len(p.Fields) == 0 {
		return errs.NewValueIsRequiredErrorWithCause("fields", errors.New("patch declares no field"))
	}

	seen := make(map[Field]struct{}, len(p.Fields))
	var errList []error
	for _, f := range p.Fields {
		if _, err := ParseField(string(f)); err != nil {
			errList = append(errList, err)
			continue
		}
		if _, dup := seen[f]; dup {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(string(f),
				errors.New("field is declared twice")))
			continue
		}
		seen[f] = struct{}{}
		if !role.CanWrite(f) {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(string(f),
				fmt.Errorf("role %s cannot write %s", role, f)))
		}
	}
	return errors.Join(errList...)
}
