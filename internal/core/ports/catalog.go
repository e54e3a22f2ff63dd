package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// Product is the slice of catalog data the engine needs to price and validate
// a line item.
type Product struct {
	ID       int64
	Price    decimal.Decimal
	Variants []Variant
}

type Variant struct {
	ID    int64
	Price *decimal.Decimal
}

// HasVariants reports whether a line of this product must name a variant.
func (p Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// Variant returns the variant with id when it belongs to the product.
func (p Product) Variant(id int64) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// Catalog resolves products and delivery locations owned by other subsystems.
type Catalog interface {
	// Product returns errs.ErrObjectNotFound for unknown products.
	Product(ctx context.Context, id int64) (Product, error)

	// LocationExists reports whether city and area form a known delivery
	// location.
	LocationExists(ctx context.Context, city, area string) (bool, error)
}

// Directory resolves users and roles owned by the identity subsystem.
type Directory interface {
	// ActiveFollowupWorkers returns the active follow-up workers ordered by id.
	ActiveFollowupWorkers(ctx context.Context) ([]kernel.UUID, error)
}
