package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DebtStatus string

const (
	DebtStatusPending DebtStatus = "pending"
	DebtStatusPartial DebtStatus = "partial"
	DebtStatusPaid    DebtStatus = "paid"
)

// DebtStatusFor derives the status from the amount paid so far.
func DebtStatusFor(paid, amount decimal.Decimal) DebtStatus {
	switch {
	case !paid.IsPositive():
		return DebtStatusPending
	case paid.LessThan(amount):
		return DebtStatusPartial
	default:
		return DebtStatusPaid
	}
}

type Payment struct {
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Note      string          `json:"note,omitempty"`
	PaidAt    time.Time       `json:"paid_at"`
}

type Debt struct {
	DebtID     uuid.UUID       `json:"debt_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	SaleID     *uuid.UUID      `json:"sale_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Paid       decimal.Decimal `json:"paid"`
	Remaining  decimal.Decimal `json:"remaining"`
	DueDate    *time.Time      `json:"due_date,omitempty"`
	Status     DebtStatus      `json:"status"`
	Payments   []Payment       `json:"payments"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// IsOverdue reports an unpaid debt whose due date lies before now.
func (d Debt) IsOverdue(now time.Time) bool {
	return d.DueDate != nil && d.DueDate.Before(now) && d.Status != DebtStatusPaid
}
