// Package catalogrepo reads products, variants and delivery locations owned
// by the catalog subsystem.
package catalogrepo

import (
	"context"
	"strconv"

	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCatalog implements ports.Catalog with raw queries.
type GormCatalog struct {
	db *gorm.DB
}

func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

func (c *GormCatalog) Product(ctx context.Context, id int64) (ports.Product, error) {
	rows, err := c.db.WithContext(ctx).Raw(`
		SELECT p.id, p.price, v.id, v.price
		FROM products p
		LEFT JOIN product_variants v ON v.product_id = p.id
		WHERE p.id = ?
		ORDER BY v.id
	`, id).Rows()
	if err != nil {
		return ports.Product{}, err
	}
	defer rows.Close()

	var (
		product ports.Product
		found   bool
	)
	for rows.Next() {
		var (
			productID    int64
			price        decimal.Decimal
			variantID    *int64
			variantPrice decimal.NullDecimal
		)
		if err = rows.Scan(&productID, &price, &variantID, &variantPrice); err != nil {
			return ports.Product{}, err
		}

		if !found {
			product = ports.Product{ID: productID, Price: price}
			found = true
		}
		if variantID == nil {
			continue
		}

		variant := ports.Variant{ID: *variantID}
		if variantPrice.Valid {
			vp := variantPrice.Decimal
			variant.Price = &vp
		}
		product.Variants = append(product.Variants, variant)
	}
	if err = rows.Err(); err != nil {
		return ports.Product{}, err
	}

	if !found {
		return ports.Product{}, errs.NewObjectNotFoundError("product", strconv.FormatInt(id, 10))
	}
	return product, nil
}

func (c *GormCatalog) LocationExists(ctx context.Context, city, area string) (bool, error) {
	var exists bool
	err := c.db.WithContext(ctx).
		Raw(`SELECT EXISTS (SELECT 1 FROM delivery_locations WHERE city = ? AND area = ?)`, city, area).
		Row().
		Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
