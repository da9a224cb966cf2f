// Package debts tracks outstanding customer balances and the payments made
// against them.
package debts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ledger-service/internal/ids"
	"ledger-service/internal/logger"
	"ledger-service/internal/models"
	"ledger-service/internal/repository"
)

// CustomerLookup resolves customer ids. It is optional.
type CustomerLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

// SaleLookup resolves sale ids. It is optional.
type SaleLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
}

// View is the read-only surface of the debt ledger.
type View interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Debt, error)
	All(ctx context.Context) ([]models.Debt, error)
	Overdue(ctx context.Context) ([]models.Debt, error)
	ForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Debt, error)
	Outstanding(ctx context.Context) (decimal.Decimal, error)
}

// OpenRequest describes a new debt.
type OpenRequest struct {
	CustomerID uuid.UUID
	Amount     decimal.Decimal
	SaleID     *uuid.UUID
	DueDate    *time.Time
}

// Ledger opens debts and records payments. Payments are serialised so that
// the remaining balance is checked and updated as one step.
type Ledger struct {
	mu sync.Mutex

	repo      repository.DebtRepository
	customers CustomerLookup
	sales     SaleLookup
	ids       ids.Generator
	now       func() time.Time
	log       zerolog.Logger
}

func NewLedger(repo repository.DebtRepository, customers CustomerLookup, sales SaleLookup, gen ids.Generator, now func() time.Time) *Ledger {
	if gen == nil {
		gen = ids.Random{}
	}
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		repo:      repo,
		customers: customers,
		sales:     sales,
		ids:       gen,
		now:       now,
		log:       logger.WithComponent("debts"),
	}
}

var _ View = (*Ledger)(nil)

// Check validates a request without recording anything. A sale id, when
// given, must name a stored sale.
func (l *Ledger) Check(ctx context.Context, req OpenRequest) error {
	if req.CustomerID == uuid.Nil {
		return fmt.Errorf("%w: customer is required", repository.ErrInvalidInput)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: debt amount must be positive", repository.ErrInvalidAmount)
	}
	if l.customers != nil {
		if _, err := l.customers.GetByID(ctx, req.CustomerID); err != nil {
			return err
		}
	}
	if req.SaleID != nil && l.sales != nil {
		if _, err := l.sales.GetByID(ctx, *req.SaleID); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) Open(ctx context.Context, req OpenRequest) (*models.Debt, error) {
	if err := l.Check(ctx, req); err != nil {
		return nil, err
	}

	now := l.now()
	debt := &models.Debt{
		DebtID:     l.ids.New(),
		CustomerID: req.CustomerID,
		SaleID:     req.SaleID,
		Amount:     req.Amount,
		Paid:       decimal.Zero,
		Remaining:  req.Amount,
		DueDate:    req.DueDate,
		Status:     models.DebtStatusPending,
		Payments:   []models.Payment{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := l.repo.Create(ctx, debt); err != nil {
		return nil, err
	}

	l.log.Info().
		Str("debt_id", debt.DebtID.String()).
		Str("customer_id", debt.CustomerID.String()).
		Str("amount", debt.Amount.StringFixed(2)).
		Msg("debt opened")

	return debt, nil
}

// RecordPayment applies a payment. Paying more than what remains is rejected.
func (l *Ledger) RecordPayment(ctx context.Context, debtID uuid.UUID, amount decimal.Decimal, method models.PaymentMethod, note string) (*models.Debt, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment must be positive", repository.ErrInvalidAmount)
	}
	if method == "" {
		method = models.PaymentCash
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", repository.ErrInvalidInput, method)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	debt, err := l.repo.GetByID(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if debt.Status == models.DebtStatusPaid {
		return nil, fmt.Errorf("%w: debt %s is already paid", repository.ErrInvalidState, debtID)
	}
	if amount.GreaterThan(debt.Remaining) {
		return nil, fmt.Errorf("%w: payment %s exceeds remaining %s",
			repository.ErrInvalidAmount, amount.StringFixed(2), debt.Remaining.StringFixed(2))
	}

	now := l.now()
	debt.Payments = append(debt.Payments, models.Payment{
		PaymentID: l.ids.New(),
		Amount:    amount,
		Method:    method,
		Note:      note,
		PaidAt:    now,
	})
	debt.Paid = debt.Paid.Add(amount)
	debt.Remaining = debt.Amount.Sub(debt.Paid)
	debt.Status = models.DebtStatusFor(debt.Paid, debt.Amount)
	debt.UpdatedAt = now

	if err := l.repo.Update(ctx, debt); err != nil {
		return nil, err
	}

	l.log.Info().
		Str("debt_id", debtID.String()).
		Str("amount", amount.StringFixed(2)).
		Str("status", string(debt.Status)).
		Msg("payment recorded")

	return debt, nil
}

func (l *Ledger) Get(ctx context.Context, id uuid.UUID) (*models.Debt, error) {
	return l.repo.GetByID(ctx, id)
}

func (l *Ledger) All(ctx context.Context) ([]models.Debt, error) {
	return l.repo.GetAll(ctx)
}

// Overdue lists unpaid debts whose due date has passed.
func (l *Ledger) Overdue(ctx context.Context) ([]models.Debt, error) {
	all, err := l.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	now := l.now()
	out := make([]models.Debt, 0)
	for _, d := range all {
		if d.IsOverdue(now) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (l *Ledger) ForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Debt, error) {
	return l.repo.GetByCustomerID(ctx, customerID)
}

// Outstanding sums what is still owed across all debts.
func (l *Ledger) Outstanding(ctx context.Context) (decimal.Decimal, error) {
	all, err := l.repo.GetAll(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, d := range all {
		if d.Status != models.DebtStatusPaid {
			total = total.Add(d.Remaining)
		}
	}
	return total, nil
}
