// Package inventory owns quantity-on-hand. Every quantity change goes through
// the Ledger and leaves a stock movement behind.
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ledger-service/internal/ids"
	"ledger-service/internal/logger"
	"ledger-service/internal/models"
	"ledger-service/internal/repository"
)

// View is the read-only surface of the inventory.
type View interface {
	LowStock(ctx context.Context) ([]models.Product, error)
	OutOfStock(ctx context.Context) ([]models.Product, error)
	Movements(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error)
	Value(ctx context.Context) (decimal.Decimal, error)
}

// Line is one product quantity in a multi-line stock operation.
type Line struct {
	ProductID uuid.UUID
	Quantity  int
}

type Ledger struct {
	products  repository.ProductRepository
	movements repository.MovementRepository
	ids       ids.Generator
	now       func() time.Time
	log       zerolog.Logger
}

func NewLedger(products repository.ProductRepository, movements repository.MovementRepository, gen ids.Generator, now func() time.Time) *Ledger {
	if gen == nil {
		gen = ids.Random{}
	}
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		products:  products,
		movements: movements,
		ids:       gen,
		now:       now,
		log:       logger.WithComponent("inventory"),
	}
}

var _ View = (*Ledger)(nil)

// Adjust applies a signed delta to one product and records the movement.
func (l *Ledger) Adjust(ctx context.Context, productID uuid.UUID, delta int, reason string, actorID uuid.UUID) (*models.StockMovement, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: adjustment quantity cannot be zero", repository.ErrInvalidAmount)
	}

	direction := models.DirectionIn
	qty := delta
	if delta < 0 {
		direction = models.DirectionOut
		qty = -delta
	}

	movements, err := l.apply(ctx, []Line{{ProductID: productID, Quantity: qty}}, direction, reason, actorID, nil)
	if err != nil {
		return nil, err
	}

	l.log.Info().
		Str("product_id", productID.String()).
		Int("delta", delta).
		Str("reason", reason).
		Msg("stock adjusted")

	return &movements[0], nil
}

// Debit removes stock for every line or for none of them.
func (l *Ledger) Debit(ctx context.Context, lines []Line, reason string, actorID uuid.UUID, saleID *uuid.UUID) ([]models.StockMovement, error) {
	return l.apply(ctx, lines, models.DirectionOut, reason, actorID, saleID)
}

// Credit returns stock for every line or for none of them.
func (l *Ledger) Credit(ctx context.Context, lines []Line, reason string, actorID uuid.UUID, saleID *uuid.UUID) ([]models.StockMovement, error) {
	return l.apply(ctx, lines, models.DirectionIn, reason, actorID, saleID)
}

func (l *Ledger) apply(ctx context.Context, lines []Line, direction models.Direction, reason string, actorID uuid.UUID, saleID *uuid.UUID) ([]models.StockMovement, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no lines", repository.ErrInvalidInput)
	}

	sign := 1
	if direction == models.DirectionOut {
		sign = -1
	}

	changes := make([]repository.StockChange, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", repository.ErrInvalidAmount)
		}
		changes = append(changes, repository.StockChange{ProductID: line.ProductID, Delta: sign * line.Quantity})
	}

	if _, err := l.products.ApplyStock(ctx, changes); err != nil {
		return nil, err
	}

	now := l.now()
	movements := make([]models.StockMovement, 0, len(lines))
	for _, line := range lines {
		movements = append(movements, models.StockMovement{
			MovementID: l.ids.New(),
			ProductID:  line.ProductID,
			Direction:  direction,
			Quantity:   line.Quantity,
			Reason:     reason,
			ActorID:    actorID,
			SaleID:     saleID,
			CreatedAt:  now,
		})
	}

	if err := l.movements.Append(ctx, movements...); err != nil {
		return nil, fmt.Errorf("failed to record stock movements: %w", err)
	}
	return movements, nil
}

// LowStock lists products at or below their minimum that are not yet empty.
func (l *Ledger) LowStock(ctx context.Context) ([]models.Product, error) {
	return l.filterProducts(ctx, models.Product.IsLowStock)
}

// OutOfStock lists products with nothing on hand.
func (l *Ledger) OutOfStock(ctx context.Context) ([]models.Product, error) {
	return l.filterProducts(ctx, models.Product.IsOutOfStock)
}

func (l *Ledger) filterProducts(ctx context.Context, keep func(models.Product) bool) ([]models.Product, error) {
	all, err := l.products.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Product, 0)
	for _, p := range all {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (l *Ledger) Movements(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error) {
	if _, err := l.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return l.movements.GetByProductID(ctx, productID)
}

// Value is the stock on hand priced at purchase cost.
func (l *Ledger) Value(ctx context.Context) (decimal.Decimal, error) {
	all, err := l.products.GetAll(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, p := range all {
		total = total.Add(p.PurchasePrice.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return total, nil
}
