// Package postgres provides the GORM implementation of the Unit of Work used by
// every order mutation.
//
// One unit of work wraps one database transaction. Repositories obtained from
// it after Begin share that transaction, so the order row, its items, the
// history entries, the rotation pointer and the outbox events of a mutation
// commit or roll back together.
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.OrderRepository().Update(ctx, o); err != nil {
//	    return err
//	}
//	if err := uow.HistoryRepository().Append(ctx, entries); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Concurrency considerations:
//   - each UnitOfWork instance owns its transaction; goroutines use separate instances
//   - row locks (claim queue, rotation pointer, order rows) live until Commit or Rollback
package postgres

import (
	"context"
	"time"

	"orderflow/internal/adapters/out/postgres/historyrepo"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/adapters/out/postgres/outboxrepo"
	"orderflow/internal/adapters/out/postgres/pgerrs"
	"orderflow/internal/adapters/out/postgres/rotationrepo"
	"orderflow/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection pool.
type GormUnitOfWorkFactory struct {
	db                  *gorm.DB
	rotationLockTimeout time.Duration
}

// NewGormUnitOfWorkFactory creates a factory. rotationLockTimeout bounds the
// wait for the follow-up rotation pointer; zero waits forever.
func NewGormUnitOfWorkFactory(db *gorm.DB, rotationLockTimeout time.Duration) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db, rotationLockTimeout: rotationLockTimeout}
}

// Create produces a new UnitOfWork instance with its own transaction state.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                  f.db,
		rotationLockTimeout: f.rotationLockTimeout,
	}
}

// GormUnitOfWork coordinates one database transaction across the repositories
// of a mutation.
type GormUnitOfWork struct {
	db                  *gorm.DB
	tx                  *gorm.DB
	rotationLockTimeout time.Duration
}

// Begin initiates a new database transaction for the unit of work.
// Multiple calls to Begin on the same instance are safe and will not create nested transactions.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	uow.tx = tx
	return nil
}

// Commit finalizes the transaction. Serialization failures and deadlocks
// surface as concurrency conflicts.
// Returns gorm.ErrInvalidTransaction when no transaction is active.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return pgerrs.Translate("transaction", err)
}

// Rollback discards the transaction.
// Returns gorm.ErrInvalidTransaction when no transaction is active, which makes
// a deferred Rollback after Commit harmless.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn())
}

func (uow *GormUnitOfWork) HistoryRepository() ports.HistoryRepository {
	return historyrepo.NewGormHistoryRepository(uow.conn())
}

func (uow *GormUnitOfWork) RotationRepository() ports.RotationRepository {
	return rotationrepo.NewGormRotationRepository(uow.conn(), uow.rotationLockTimeout)
}

func (uow *GormUnitOfWork) OutboxRepository() ports.OutboxRepository {
	return outboxrepo.NewGormOutboxRepository(uow.conn())
}

// conn returns the active transaction, or the pool outside of one.
func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
