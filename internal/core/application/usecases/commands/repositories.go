// Package commands contains business operations that modify order state.
// Every mutating command runs one transaction through the mutation pipeline:
// load, apply, validate, persist, record history, rotate, sync with the
// delivery provider, enqueue events and commit.
package commands

import (
	"context"

	"orderflow/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// Repositories obtained from a unit of work after Begin share its transaction.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// HistoryRepoFactory provides access to the audit trail within a transaction.
	HistoryRepoFactory interface {
		HistoryRepository() ports.HistoryRepository
	}

	// RotationRepoFactory provides access to the follow-up rotation pointer.
	RotationRepoFactory interface {
		RotationRepository() ports.RotationRepository
	}

	// OutboxRepoFactory provides access to the event outbox within a transaction.
	OutboxRepoFactory interface {
		OutboxRepository() ports.OutboxRepository
	}

	// UoW manages one order mutation: the order row, its history, the rotation
	// pointer and the outbox events commit or roll back together.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   before, err := uow.OrderRepository().GetForUpdate(ctx, id)
	//   // ... run the mutation pipeline
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		HistoryRepoFactory
		RotationRepoFactory
		OutboxRepoFactory
	}

	// UoWFactory creates new unit of work instances.
	UoWFactory interface {
		Create() UoW
	}

	// RotationUoW manages transactions touching only the rotation pointer.
	RotationUoW interface {
		TxManager
		RotationRepoFactory
	}

	// RotationUoWFactory creates new rotation unit of work instances.
	RotationUoWFactory interface {
		Create() RotationUoW
	}

	// OutboxUoW manages the relay transaction holding the fetched events locked.
	OutboxUoW interface {
		TxManager
		OutboxRepoFactory
	}

	// OutboxUoWFactory creates new outbox unit of work instances.
	OutboxUoWFactory interface {
		Create() OutboxUoW
	}
)
