package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	// PaymentMixed is the deferred variant: the unpaid part becomes a debt.
	PaymentMixed PaymentMethod = "mixed"
)

// Valid reports whether m is one of the known payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentMixed:
		return true
	}
	return false
}

type CartLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	CostPrice decimal.Decimal `json:"cost_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type SaleItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	CostPrice decimal.Decimal `json:"cost_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Sale struct {
	SaleID        uuid.UUID       `json:"sale_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Sequence      int             `json:"sequence"`
	CustomerID    *uuid.UUID      `json:"customer_id,omitempty"`
	Items         []SaleItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	VATRate       decimal.Decimal `json:"vat_rate"`
	VATAmount     decimal.Decimal `json:"vat_amount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	ChangeDue     decimal.Decimal `json:"change_due"`
	SellerID      uuid.UUID       `json:"seller_id"`
	Status        SaleStatus      `json:"status"`
	DebtID        *uuid.UUID      `json:"debt_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
}

// Cost is the purchase value of the goods sold.
func (s Sale) Cost() decimal.Decimal {
	cost := decimal.Zero
	for _, item := range s.Items {
		cost = cost.Add(item.CostPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return cost
}
