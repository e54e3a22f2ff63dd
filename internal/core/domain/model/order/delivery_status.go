package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// DeliveryStatus reflects physical fulfilment. It is written by the delivery
// provider through the webhook or by internal staff.
type DeliveryStatus int

const (
	DeliveryUnknown DeliveryStatus = iota
	DeliveryNew
	DeliveryDispatched
	DeliveryPickedUp
	DeliveryInTransit
	DeliveryOutForDelivery
	DeliveryPostponed
	DeliveryNoAnswer
	DeliveryWrongAddress
	DeliveryRefused
	DeliveryReturning
	DeliveryReturned
	DeliveryReturnedToWarehouse
	DeliveryDelivered
	DeliverySettled
	DeliveryPartiallyDelivered
	DeliveryExchanged
	DeliveryLost
	DeliveryDestroyed
	DeliveryDamaged
	DeliveryCanceled
	DeliveryDeleted
)

func getDeliveryCodes() map[DeliveryStatus]string {
	//nolint:exhaustive // DeliveryUnknown has no code
	return map[DeliveryStatus]string{
		DeliveryNew:                 "new",
		DeliveryDispatched:          "dispatched",
		DeliveryPickedUp:            "picked_up",
		DeliveryInTransit:           "in_transit",
		DeliveryOutForDelivery:      "out_for_delivery",
		DeliveryPostponed:           "postponed",
		DeliveryNoAnswer:            "no_answer",
		DeliveryWrongAddress:        "wrong_address",
		DeliveryRefused:             "refused",
		DeliveryReturning:           "returning",
		DeliveryReturned:            "returned",
		DeliveryReturnedToWarehouse: "returned_to_warehouse",
		DeliveryDelivered:           "delivered",
		DeliverySettled:             "settled",
		DeliveryPartiallyDelivered:  "partially_delivered",
		DeliveryExchanged:           "exchanged",
		DeliveryLost:                "lost",
		DeliveryDestroyed:           "destroyed",
		DeliveryDamaged:             "damaged",
		DeliveryCanceled:            "canceled",
		DeliveryDeleted:             "deleted",
	}
}

func (s DeliveryStatus) String() string {
	if code, ok := getDeliveryCodes()[s]; ok {
		return code
	}
	return "unknown"
}

func (s DeliveryStatus) Validate() error {
	if _, ok := getDeliveryCodes()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(string(FieldDeliveryStatus), fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func ParseDeliveryStatus(code string) (DeliveryStatus, error) {
	for s, c := range getDeliveryCodes() {
		if c == code {
			return s, nil
		}
	}
	return DeliveryUnknown, errs.NewValueIsInvalidErrorWithCause(
		string(FieldDeliveryStatus), fmt.Errorf("%q is not a valid status", code))
}

// Milestone is a fulfilment point that stamps an order timestamp.
type Milestone int

const (
	MilestoneNone Milestone = iota
	MilestoneSent
	MilestoneDelivered
)

// Milestone maps every delivery status to the timestamp it stamps, if any.
func (s DeliveryStatus) Milestone() Milestone {
	switch s {
	case DeliveryDispatched:
		return MilestoneSent
	case DeliveryDelivered:
		return MilestoneDelivered
	case DeliveryUnknown, DeliveryNew, DeliveryPickedUp, DeliveryInTransit, DeliveryOutForDelivery,
		DeliveryPostponed, DeliveryNoAnswer, DeliveryWrongAddress, DeliveryRefused, DeliveryReturning,
		DeliveryReturned, DeliveryReturnedToWarehouse, DeliverySettled, DeliveryPartiallyDelivered,
		DeliveryExchanged, DeliveryLost, DeliveryDestroyed, DeliveryDamaged, DeliveryCanceled, DeliveryDeleted:
		return MilestoneNone
	}
	return MilestoneNone
}
