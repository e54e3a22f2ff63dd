package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// CancellationReason explains an agent cancellation. CancelNone is the valid
// "not canceled" value and persists as an empty code.
type CancellationReason int

const (
	CancelNone CancellationReason = iota
	CancelChangedMind
	CancelPriceTooHigh
	CancelOrderedElsewhere
	CancelWrongProduct
	CancelDeliveryDelay
	CancelUnreachable
	CancelOther
)

func getCancellationCodes() map[CancellationReason]string {
	return map[CancellationReason]string{
		CancelNone:             "",
		CancelChangedMind:      "changed_mind",
		CancelPriceTooHigh:     "price_too_high",
		CancelOrderedElsewhere: "ordered_elsewhere",
		CancelWrongProduct:     "wrong_product",
		CancelDeliveryDelay:    "delivery_delay",
		CancelUnreachable:      "unreachable",
		CancelOther:            "other",
	}
}

func (r CancellationReason) String() string {
	if code, ok := getCancellationCodes()[r]; ok {
		return code
	}
	return "unknown"
}

func (r CancellationReason) Validate() error {
	if _, ok := getCancellationCodes()[r]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			string(FieldCancellationReason), fmt.Errorf("%d is not a valid reason", r))
	}
	return nil
}

func ParseCancellationReason(code string) (CancellationReason, error) {
	for r, c := range getCancellationCodes() {
		if c == code {
			return r, nil
		}
	}
	return CancelNone, errs.NewValueIsInvalidErrorWithCause(
		string(FieldCancellationReason), fmt.Errorf("%q is not a valid reason", code))
}

// RequiresNotes reports whether free-text notes must accompany the reason.
func (r CancellationReason) RequiresNotes() bool {
	switch r {
	case CancelOther:
		return true
	case CancelNone, CancelChangedMind, CancelPriceTooHigh, CancelOrderedElsewhere,
		CancelWrongProduct, CancelDeliveryDelay, CancelUnreachable:
		return false
	}
	return false
}
