package commands

import (
	"fmt"
	"strconv"
	"strings"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// ProviderStatusMap translates the provider's numeric status codes into
// delivery statuses.
type ProviderStatusMap map[int]order.DeliveryStatus

// ParseProviderStatusMap reads comma separated code:status pairs, for example
// "1:dispatched,2:in_transit,5:delivered".
func ParseProviderStatusMap(raw string) (ProviderStatusMap, error) {
	m := make(ProviderStatusMap)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		codeText, statusText, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, errs.NewValueIsInvalidErrorWithCause("provider status map",
				fmt.Errorf("pair %q is not code:status", pair))
		}
		code, err := strconv.Atoi(strings.TrimSpace(codeText))
		if err != nil {
			return nil, errs.NewValueIsInvalidErrorWithCause("provider status map", err)
		}
		status, err := order.ParseDeliveryStatus(strings.TrimSpace(statusText))
		if err != nil {
			return nil, err
		}
		if _, dup := m[code]; dup {
			return nil, errs.NewValueIsInvalidErrorWithCause("provider status map",
				fmt.Errorf("code %d is mapped twice", code))
		}
		m[code] = status
	}
	if len(m) == 0 {
		return nil, errs.NewValueIsRequiredError("provider status map")
	}
	return m, nil
}

// Resolve returns the delivery status of code.
func (m ProviderStatusMap) Resolve(code int) (order.DeliveryStatus, error) {
	status, ok := m[code]
	if !ok {
		return order.DeliveryUnknown, errs.NewInvalidStatusCodeError(code)
	}
	return status, nil
}
