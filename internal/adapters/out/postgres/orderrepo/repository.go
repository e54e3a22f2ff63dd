package orderrepo

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"orderflow/internal/adapters/out/postgres/pgerrs"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	providerCodeIndex = "orders_provider_code_idx"
	agentQueueLockKey = "orders.agent_queue:"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add saves a new order and its items and assigns the generated ids.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Omit("ID").Create(&dto).Error; err != nil {
		return r.translate(err)
	}
	if err := aggregate.AssignIdentity(dto.ID); err != nil {
		return err
	}

	for _, it := range aggregate.Items() {
		if err := r.insertItem(ctx, dto.ID, it); err != nil {
			return err
		}
	}
	return nil
}

// Update saves every column of the order row and reconciles its items.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{ID: dto.ID}).
		Select("*").
		Omit("ID", "CreatedAt").
		Updates(&dto)
	if result.Error != nil {
		return r.translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", strconv.FormatInt(dto.ID, 10))
	}

	return r.syncItems(ctx, aggregate)
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	return r.load(ctx, r.db.WithContext(ctx).Where("id = ?", id), strconv.FormatInt(id, 10))
}

// GetForUpdate retrieves an order by ID and locks its row.
func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id int64) (*order.Order, error) {
	q := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", id)
	return r.load(ctx, q, strconv.FormatInt(id, 10))
}

// FindActiveForAgent returns the oldest order the agent holds in status new.
// It first takes a transaction-scoped advisory lock keyed by the agent, so a
// concurrent claim by the same agent waits until this transaction ends and then
// sees the order claimed here.
func (r *GormOrderRepository) FindActiveForAgent(ctx context.Context, agentID kernel.UUID) (*order.Order, error) {
	if err := agentID.Validate(); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Exec(`SELECT pg_advisory_xact_lock(hashtextextended(?, 0))`, agentQueueLockKey+agentID.String()).
		Error; err != nil {
		return nil, r.translate(err)
	}

	q := r.db.WithContext(ctx).
		Where("agent_id = ? AND agent_status = ?", agentID.Google(), order.AgentNew.String()).
		Order("id")
	return r.load(ctx, q, "active for agent "+agentID.String())
}

// ClaimNextUnassigned hands the oldest unowned order in agent status new to the
// agent in one statement. Only new orders are queued: an order the agent has
// moved on (no_answer, reported and the like) stays with that agent and is not
// offered to others. Rows locked by concurrent claims are skipped, so two agents never
// receive the same order.
func (r *GormOrderRepository) ClaimNextUnassigned(ctx context.Context, agentID kernel.UUID) (*order.Order, error) {
	if err := agentID.Validate(); err != nil {
		return nil, err
	}

	var id int64
	err := r.db.WithContext(ctx).Raw(`
		UPDATE orders SET agent_id = ?
		WHERE id = (
			SELECT id FROM orders
			WHERE agent_id IS NULL AND agent_status = ?
			ORDER BY id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id
	`, agentID.Google(), order.AgentNew.String()).Row().Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewObjectNotFoundError("order", "unassigned")
	}
	if err != nil {
		return nil, r.translate(err)
	}

	return r.Get(ctx, id)
}

// FindByProviderCode locks and returns the order registered under code.
func (r *GormOrderRepository) FindByProviderCode(ctx context.Context, providerID int64, code string) (*order.Order, error) {
	q := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("delivery_provider_id = ? AND provider_order_code = ?", providerID, code)
	return r.load(ctx, q, code)
}

// ListAwaitingRegistration returns ids of orders assigned to the provider
// without a provider order code.
func (r *GormOrderRepository) ListAwaitingRegistration(ctx context.Context, providerID int64, limit int) ([]int64, error) {
	if limit <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("limit", limit, 1, nil)
	}

	ids := make([]int64, 0, limit)
	err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("delivery_provider_id = ? AND provider_order_code IS NULL", providerID).
		Order("id").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormOrderRepository) load(ctx context.Context, q *gorm.DB, ref string) (*order.Order, error) {
	var dto OrderDTO
	if err := q.First(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", ref)
		}
		return nil, r.translate(err)
	}

	var items []ItemDTO
	if err := r.db.WithContext(ctx).Where("order_id = ?", dto.ID).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}

	return toDomain(dto, items)
}

func (r *GormOrderRepository) insertItem(ctx context.Context, orderID int64, it *order.Item) error {
	dto := itemFromDomain(orderID, it)
	if err := r.db.WithContext(ctx).Omit("ID").Create(&dto).Error; err != nil {
		return err
	}
	return it.AssignIdentity(dto.ID)
}

func (r *GormOrderRepository) syncItems(ctx context.Context, aggregate *order.Order) error {
	items := aggregate.Items()

	kept := make([]int64, 0, len(items))
	for _, it := range items {
		if it.ID() != 0 {
			kept = append(kept, it.ID())
		}
	}

	del := r.db.WithContext(ctx).Where("order_id = ?", aggregate.ID())
	if len(kept) > 0 {
		del = del.Where("id NOT IN ?", kept)
	}
	if err := del.Delete(&ItemDTO{}).Error; err != nil {
		return err
	}

	for _, it := range items {
		if it.ID() == 0 {
			if err := r.insertItem(ctx, aggregate.ID(), it); err != nil {
				return err
			}
			continue
		}

		err := r.db.WithContext(ctx).
			Model(&ItemDTO{}).
			Where("id = ? AND order_id = ?", it.ID(), aggregate.ID()).
			Updates(map[string]any{
				"variant_id": it.VariantID(),
				"quantity":   it.Quantity(),
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *GormOrderRepository) translate(err error) error {
	if pgerrs.IsUniqueViolation(err, providerCodeIndex) {
		return errs.NewValueIsInvalidErrorWithCause(string(order.FieldProviderOrderCode), err)
	}
	return pgerrs.Translate("orders", err)
}
