package repository

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"ledger-service/internal/models"
)

type saleRepo struct {
	*collection[models.Sale]
}

func cloneSale(s models.Sale) models.Sale {
	s.Items = slices.Clone(s.Items)
	return s
}

func NewSaleRepository(ctx context.Context, deps Deps) (SaleRepository, error) {
	c, err := loadCollection(ctx, deps, KeySales,
		func(s models.Sale) uuid.UUID { return s.SaleID }, cloneSale)
	if err != nil {
		return nil, err
	}
	return &saleRepo{collection: c}, nil
}

func (r *saleRepo) Create(ctx context.Context, s *models.Sale) error {
	if s == nil {
		return fmt.Errorf("%w: sale cannot be nil", ErrInvalidInput)
	}
	if s.SaleID == uuid.Nil {
		return fmt.Errorf("%w: sale ID cannot be empty", ErrInvalidInput)
	}
	if len(s.Items) == 0 {
		return fmt.Errorf("%w: sale has no items", ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[s.SaleID]; exists {
		return fmt.Errorf("%w: sale %s", ErrDuplicate, s.SaleID)
	}

	r.insert(*s)
	r.persist(ctx)
	return nil
}

func (r *saleRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Sale, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: sale ID cannot be empty", ErrInvalidInput)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: sale %s", ErrNotFound, id)
	}
	return &s, nil
}

func (r *saleRepo) GetAll(_ context.Context) ([]models.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(nil), nil
}

func (r *saleRepo) GetByCustomerID(_ context.Context, customerID uuid.UUID) ([]models.Sale, error) {
	if customerID == uuid.Nil {
		return nil, fmt.Errorf("%w: customer ID cannot be empty", ErrInvalidInput)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(func(s models.Sale) bool {
		return s.CustomerID != nil && *s.CustomerID == customerID
	}), nil
}

func (r *saleRepo) GetByRange(_ context.Context, from, to time.Time) ([]models.Sale, error) {
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return nil, fmt.Errorf("%w: range start must be before its end", ErrInvalidInput)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(func(s models.Sale) bool {
		if !from.IsZero() && s.CreatedAt.Before(from) {
			return false
		}
		if !to.IsZero() && !s.CreatedAt.Before(to) {
			return false
		}
		return true
	}), nil
}

var validSaleStatuses = map[models.SaleStatus]bool{
	models.SaleStatusPending:   true,
	models.SaleStatusCompleted: true,
	models.SaleStatusCancelled: true,
}

func (r *saleRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.SaleStatus, at time.Time) error {
	if !validSaleStatuses[status] {
		return fmt.Errorf("%w: invalid status '%s'", ErrInvalidInput, status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.get(id)
	if !ok {
		return fmt.Errorf("%w: sale %s", ErrNotFound, id)
	}

	s.Status = status
	if status == models.SaleStatusCancelled {
		s.CancelledAt = &at
	}

	r.replace(s)
	r.persist(ctx)
	return nil
}

func (r *saleRepo) LinkDebt(ctx context.Context, id, debtID uuid.UUID) error {
	if debtID == uuid.Nil {
		return fmt.Errorf("%w: debt ID cannot be empty", ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.get(id)
	if !ok {
		return fmt.Errorf("%w: sale %s", ErrNotFound, id)
	}
	if s.DebtID != nil && *s.DebtID != debtID {
		return fmt.Errorf("%w: sale %s already has debt %s", ErrInvalidState, s.InvoiceNumber, *s.DebtID)
	}

	s.DebtID = &debtID
	r.replace(s)
	r.persist(ctx)
	return nil
}
