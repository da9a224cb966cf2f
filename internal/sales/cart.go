// Package sales turns carts into committed, invoiced sales.
package sales

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledger-service/internal/models"
	"ledger-service/internal/repository"
)

type CartState string

const (
	CartEmpty     CartState = "empty"
	CartPopulated CartState = "populated"
)

// Cart is the uncommitted set of lines for the sale being built. It belongs
// to one session and is not safe for concurrent use.
type Cart struct {
	lines []models.CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

func (c *Cart) State() CartState {
	if len(c.lines) == 0 {
		return CartEmpty
	}
	return CartPopulated
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	return slices.IndexFunc(c.lines, func(l models.CartLine) bool { return l.ProductID == productID })
}

// AddLine puts qty units of the product in the cart. An existing line keeps
// the unit price it was first added with.
func (c *Cart) AddLine(product models.Product, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive", repository.ErrInvalidAmount)
	}

	i := c.indexOf(product.ProductID)
	inCart := 0
	if i >= 0 {
		inCart = c.lines[i].Quantity
	}
	if inCart+qty > product.Quantity {
		return fmt.Errorf("%w: %s has %d available, cart wants %d",
			repository.ErrInsufficientStock, product.SKU, product.Quantity, inCart+qty)
	}

	if i >= 0 {
		c.lines[i].Quantity += qty
		c.lines[i].LineTotal = lineTotal(c.lines[i].UnitPrice, c.lines[i].Quantity)
		return nil
	}

	c.lines = append(c.lines, models.CartLine{
		ProductID: product.ProductID,
		Name:      product.Name,
		SKU:       product.SKU,
		Quantity:  qty,
		UnitPrice: product.SalePrice,
		CostPrice: product.PurchasePrice,
		LineTotal: lineTotal(product.SalePrice, qty),
	})
	return nil
}

// UpdateLine replaces the quantity of a line. A quantity of zero or less
// removes it.
func (c *Cart) UpdateLine(product models.Product, qty int) error {
	if qty <= 0 {
		c.RemoveLine(product.ProductID)
		return nil
	}

	i := c.indexOf(product.ProductID)
	if i < 0 {
		return fmt.Errorf("%w: product %s is not in the cart", repository.ErrNotFound, product.ProductID)
	}
	if qty > product.Quantity {
		return fmt.Errorf("%w: %s has %d available, cart wants %d",
			repository.ErrInsufficientStock, product.SKU, product.Quantity, qty)
	}

	c.lines[i].Quantity = qty
	c.lines[i].LineTotal = lineTotal(c.lines[i].UnitPrice, qty)
	return nil
}

func (c *Cart) RemoveLine(productID uuid.UUID) {
	if i := c.indexOf(productID); i >= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the lines in the order they were added.
func (c *Cart) Lines() []models.CartLine {
	return slices.Clone(c.lines)
}

func (c *Cart) Totals(vatRatePercent decimal.Decimal) Totals {
	return ComputeTotals(c.lines, vatRatePercent)
}

func lineTotal(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}
