package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ledger-service/internal/models"
)

type movementRepo struct {
	*collection[models.StockMovement]
}

func NewMovementRepository(ctx context.Context, deps Deps) (MovementRepository, error) {
	c, err := loadCollection(ctx, deps, KeyMovements,
		func(m models.StockMovement) uuid.UUID { return m.MovementID }, nil)
	if err != nil {
		return nil, err
	}
	return &movementRepo{collection: c}, nil
}

var validDirections = map[models.Direction]bool{
	models.DirectionIn:  true,
	models.DirectionOut: true,
}

func (r *movementRepo) Append(ctx context.Context, movements ...models.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	for _, m := range movements {
		if m.MovementID == uuid.Nil || m.ProductID == uuid.Nil {
			return fmt.Errorf("%w: movement and product IDs are required", ErrInvalidInput)
		}
		if m.Quantity <= 0 {
			return fmt.Errorf("%w: movement quantity must be positive", ErrInvalidInput)
		}
		if !validDirections[m.Direction] {
			return fmt.Errorf("%w: invalid direction '%s'", ErrInvalidInput, m.Direction)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range movements {
		if _, exists := r.index[m.MovementID]; exists {
			return fmt.Errorf("%w: movement %s", ErrDuplicate, m.MovementID)
		}
	}
	for _, m := range movements {
		r.insert(m)
	}
	r.persist(ctx)
	return nil
}

func (r *movementRepo) GetAll(_ context.Context) ([]models.StockMovement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(nil), nil
}

func (r *movementRepo) GetByProductID(_ context.Context, productID uuid.UUID) ([]models.StockMovement, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("%w: ID must be set", ErrInvalidInput)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(func(m models.StockMovement) bool { return m.ProductID == productID }), nil
}

func (r *movementRepo) GetBySaleID(_ context.Context, saleID uuid.UUID) ([]models.StockMovement, error) {
	if saleID == uuid.Nil {
		return nil, fmt.Errorf("%w: ID must be set", ErrInvalidInput)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(func(m models.StockMovement) bool {
		return m.SaleID != nil && *m.SaleID == saleID
	}), nil
}
