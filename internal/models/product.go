package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ProductID     uuid.UUID       `json:"product_id"`
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	SKU           string          `json:"sku" validate:"required,max=64"`
	CategoryID    *uuid.UUID      `json:"category_id,omitempty"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Quantity      int             `json:"quantity" validate:"gte=0"`
	MinQuantity   int             `json:"min_quantity" validate:"gte=0"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsOutOfStock reports whether nothing is left on hand.
func (p Product) IsOutOfStock() bool {
	return p.Quantity == 0
}

// IsLowStock reports a positive quantity at or below the minimum threshold.
func (p Product) IsLowStock() bool {
	return p.Quantity > 0 && p.Quantity <= p.MinQuantity
}

type Category struct {
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name" validate:"required,max=100"`
	Description string    `json:"description"`
}

type Customer struct {
	CustomerID  uuid.UUID `json:"customer_id"`
	Name        string    `json:"name" validate:"required,min=2,max=150"`
	PhoneNumber string    `json:"phone_number" validate:"omitempty,e164"`
	Email       string    `json:"email" validate:"omitempty,email"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
}

type Supplier struct {
	SupplierID  uuid.UUID `json:"supplier_id"`
	Name        string    `json:"name" validate:"required,min=2,max=150"`
	PhoneNumber string    `json:"phone_number" validate:"omitempty,e164"`
	Email       string    `json:"email" validate:"omitempty,email"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
}
