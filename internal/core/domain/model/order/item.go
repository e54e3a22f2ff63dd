package order

import (
	"errors"
	"fmt"
	"strconv"

	"orderflow/internal/core/domain/model/history"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ItemDraft describes a line item in a create or update request. ID is set for
// lines that already exist on the order. UnitPrice is resolved from the catalog
// for new lines and ignored for existing ones.
type ItemDraft struct {
	ID        *int64
	ProductID int64
	VariantID *int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Item is a line item owned by exactly one order.
type Item struct {
	id        int64
	productID int64
	variantID *int64
	unitPrice decimal.Decimal
	quantity  int
}

func newItem(d ItemDraft) (*Item, error) {
	it := &Item{unitPrice: d.UnitPrice}
	if err := errors.Join(
		it.setProduct(d.ProductID),
		it.setQuantity(d.Quantity),
		it.setUnitPrice(d.UnitPrice),
	); err != nil {
		return nil, err
	}
	it.variantID = cloneInt64(d.VariantID)
	return it, nil
}

// RestoreItem rebuilds an item read from storage.
func RestoreItem(id, productID int64, variantID *int64, unitPrice decimal.Decimal, quantity int) *Item {
	return &Item{
		id:        id,
		productID: productID,
		variantID: cloneInt64(variantID),
		unitPrice: unitPrice,
		quantity:  quantity,
	}
}

func (it *Item) ID() int64                  { return it.id }
func (it *Item) ProductID() int64           { return it.productID }
func (it *Item) VariantID() *int64          { return cloneInt64(it.variantID) }
func (it *Item) UnitPrice() decimal.Decimal { return it.unitPrice }
func (it *Item) Quantity() int              { return it.quantity }

// Total is unit price times quantity.
func (it *Item) Total() decimal.Decimal {
	return it.unitPrice.Mul(decimal.NewFromInt(int64(it.quantity)))
}

// AssignIdentity stores the id issued by the database for a new line.
func (it *Item) AssignIdentity(id int64) error {
	if it.id != 0 {
		return errs.NewValueIsInvalidErrorWithCause("item id", fmt.Errorf("item already has id %d", it.id))
	}
	if id <= 0 {
		return errs.NewValueIsInvalidError("item id")
	}
	it.id = id
	return nil
}

// Attributes renders the tracked values of the item.
func (it *Item) Attributes() []history.Attribute {
	return []history.Attribute{
		{Name: string(FieldProductID), Value: strconv.FormatInt(it.productID, 10)},
		{Name: string(FieldVariantID), Value: formatInt64(it.variantID)},
		{Name: string(FieldQuantity), Value: strconv.Itoa(it.quantity)},
		{Name: string(FieldUnitPrice), Value: it.unitPrice.String()},
	}
}

func (it *Item) clone() *Item {
	c := *it
	c.variantID = cloneInt64(it.variantID)
	return &c
}

// change applies a draft to an existing line. The product and the captured unit
// price never change; a different product is a new line.
func (it *Item) change(d ItemDraft) error {
	if d.ProductID != it.productID {
		return errs.NewValueIsInvalidErrorWithCause(string(FieldProductID),
			fmt.Errorf("item %d product cannot change from %d to %d", it.id, it.productID, d.ProductID))
	}
	if err := it.setQuantity(d.Quantity); err != nil {
		return err
	}
	it.variantID = cloneInt64(d.VariantID)
	return nil
}

func (it *Item) setProduct(productID int64) error {
	if productID <= 0 {
		return errs.NewValueIsRequiredError(string(FieldProductID))
	}
	it.productID = productID
	return nil
}

func (it *Item) setQuantity(quantity int) error {
	if quantity < 1 {
		return errs.NewValueIsInvalidErrorWithCause(string(FieldQuantity),
			fmt.Errorf("quantity must be at least 1, got %d", quantity))
	}
	it.quantity = quantity
	return nil
}

func (it *Item) setUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause(string(FieldUnitPrice), fmt.Errorf("%s is negative", price))
	}
	it.unitPrice = price
	return nil
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func sameInt64(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func formatInt64(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
