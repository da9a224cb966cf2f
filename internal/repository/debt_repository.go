package repository

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"ledger-service/internal/models"
)

type debtRepo struct {
	*collection[models.Debt]
}

func cloneDebt(d models.Debt) models.Debt {
	d.Payments = slices.Clone(d.Payments)
	return d
}

func NewDebtRepository(ctx context.Context, deps Deps) (DebtRepository, error) {
	c, err := loadCollection(ctx, deps, KeyDebts,
		func(d models.Debt) uuid.UUID { return d.DebtID }, cloneDebt)
	if err != nil {
		return nil, err
	}
	return &debtRepo{collection: c}, nil
}

func (r *debtRepo) Create(ctx context.Context, d *models.Debt) error {
	if d == nil {
		return fmt.Errorf("%w: debt cannot be nil", ErrInvalidInput)
	}
	if d.DebtID == uuid.Nil || d.CustomerID == uuid.Nil {
		return fmt.Errorf("%w: debt and customer IDs are required", ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[d.DebtID]; exists {
		return fmt.Errorf("%w: debt %s", ErrDuplicate, d.DebtID)
	}

	r.insert(*d)
	r.persist(ctx)
	return nil
}

func (r *debtRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Debt, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: debt ID cannot be empty", ErrInvalidInput)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: debt %s", ErrNotFound, id)
	}
	return &d, nil
}

func (r *debtRepo) GetAll(_ context.Context) ([]models.Debt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(nil), nil
}

func (r *debtRepo) GetByCustomerID(_ context.Context, customerID uuid.UUID) ([]models.Debt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(func(d models.Debt) bool { return d.CustomerID == customerID }), nil
}

func (r *debtRepo) Update(ctx context.Context, d *models.Debt) error {
	if d == nil {
		return fmt.Errorf("%w: debt cannot be nil", ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.replace(*d) {
		return fmt.Errorf("%w: debt %s", ErrNotFound, d.DebtID)
	}
	r.persist(ctx)
	return nil
}
