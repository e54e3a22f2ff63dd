package history

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// Event is the lifecycle event that produced an entry.
type Event int

const (
	EventUnknown Event = iota
	EventCreated
	EventUpdated
	EventDeleted
	EventRestored
)

func getEventCodes() map[Event]string {
	return map[Event]string{
		EventCreated:  "created",
		EventUpdated:  "updated",
		EventDeleted:  "deleted",
		EventRestored: "restored",
	}
}

func (e Event) String() string {
	if code, ok := getEventCodes()[e]; ok {
		return code
	}
	return "unknown"
}

func (e Event) Validate() error {
	if _, ok := getEventCodes()[e]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("event", fmt.Errorf("%d is not a valid event", e))
	}
	return nil
}

func ParseEvent(code string) (Event, error) {
	for e, c := range getEventCodes() {
		if c == code {
			return e, nil
		}
	}
	return EventUnknown, errs.NewValueIsInvalidErrorWithCause("event", fmt.Errorf("%q is not a valid event", code))
}

// TargetType names the kind of entity an entry belongs to.
type TargetType string

const (
	TargetOrder     TargetType = "order"
	TargetOrderItem TargetType = "order_item"
)

func (t TargetType) Validate() error {
	switch t {
	case TargetOrder, TargetOrderItem:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("target_type", fmt.Errorf("%q is not a valid target type", string(t)))
}
