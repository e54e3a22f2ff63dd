package ports

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// RegisterResult is the business outcome of a registration. A failed
// registration carries the provider message verbatim.
type RegisterResult struct {
	Success      bool
	OrderCode    string
	ErrorMessage string
}

// DeregisterResult is the business outcome of a deregistration. NotFound means
// the provider does not know the code, which callers treat as success.
type DeregisterResult struct {
	Success      bool
	NotFound     bool
	ErrorMessage string
}

// DeliveryProvider is the integrated third-party delivery service. A returned
// error means the provider could not be reached or answered garbage; business
// refusals come back as results.
type DeliveryProvider interface {
	ID() int64
	Register(ctx context.Context, o *order.Order) (RegisterResult, error)
	Deregister(ctx context.Context, orderCode string) (DeregisterResult, error)
}
