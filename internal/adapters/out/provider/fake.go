package provider

import (
	"context"
	"fmt"
	"sync"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// Fake keeps registrations in memory. Codes are FK-000001, FK-000002 and so on.
type Fake struct {
	id int64

	mu         sync.Mutex
	seq        int
	registered map[string]int64
	rejectWith string
	failWith   error
}

var _ ports.DeliveryProvider = (*Fake)(nil)

func NewFake(id int64) *Fake {
	return &Fake{id: id, registered: make(map[string]int64)}
}

func (f *Fake) ID() int64 {
	return f.id
}

// RejectWith makes later calls fail as business refusals; an empty message
// turns refusals off.
func (f *Fake) RejectWith(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectWith = message
}

// FailWith makes later calls return err; nil restores normal operation.
func (f *Fake) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = err
}

func (f *Fake) Register(ctx context.Context, o *order.Order) (ports.RegisterResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.RegisterResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return ports.RegisterResult{}, f.failWith
	}
	if f.rejectWith != "" {
		return ports.RegisterResult{ErrorMessage: f.rejectWith}, nil
	}

	f.seq++
	code := fmt.Sprintf("FK-%06d", f.seq)
	f.registered[code] = o.ID()
	return ports.RegisterResult{Success: true, OrderCode: code}, nil
}

func (f *Fake) Deregister(ctx context.Context, orderCode string) (ports.DeregisterResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.DeregisterResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return ports.DeregisterResult{}, f.failWith
	}
	if _, ok := f.registered[orderCode]; !ok {
		return ports.DeregisterResult{NotFound: true, ErrorMessage: "unknown order code"}, nil
	}
	if f.rejectWith != "" {
		return ports.DeregisterResult{ErrorMessage: f.rejectWith}, nil
	}

	delete(f.registered, orderCode)
	return ports.DeregisterResult{Success: true}, nil
}

// Registered reports the order behind code, if the code is live.
func (f *Fake) Registered(code string) (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.registered[code]
	return id, ok
}
