package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-service/internal/ids"
	"ledger-service/internal/models"
	"ledger-service/internal/repository"
	"ledger-service/internal/storage"
)

type fixture struct {
	ledger   *Ledger
	products repository.ProductRepository
	actor    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	now := func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	deps := repository.Deps{Store: storage.NewMemory(), IDs: ids.NewSequence(), Now: now}

	products, err := repository.NewProductRepository(ctx, deps)
	require.NoError(t, err)
	movements, err := repository.NewMovementRepository(ctx, deps)
	require.NoError(t, err)

	return &fixture{
		ledger:   NewLedger(products, movements, deps.IDs, now),
		products: products,
		actor:    uuid.New(),
	}
}

func (f *fixture) add(t *testing.T, sku string, qty, minQty int) models.Product {
	t.Helper()
	p := &models.Product{
		Name:          "Product " + sku,
		SKU:           sku,
		PurchasePrice: decimal.NewFromInt(4),
		SalePrice:     decimal.NewFromInt(7),
		Quantity:      qty,
		MinQuantity:   minQty,
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return *p
}

func TestAdjust(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.add(t, "A", 3, 1)

	m, err := f.ledger.Adjust(ctx, p.ProductID, 5, "delivery", f.actor)
	require.NoError(t, err)
	assert.Equal(t, models.DirectionIn, m.Direction)
	assert.Equal(t, 5, m.Quantity)
	assert.Equal(t, f.actor, m.ActorID)

	m, err = f.ledger.Adjust(ctx, p.ProductID, -8, "breakage", f.actor)
	require.NoError(t, err)
	assert.Equal(t, models.DirectionOut, m.Direction)
	assert.Equal(t, 8, m.Quantity)

	got, err := f.products.GetByID(ctx, p.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	history, err := f.ledger.Movements(ctx, p.ProductID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "delivery", history[0].Reason)
	assert.Equal(t, "breakage", history[1].Reason)
}

func TestAdjustRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.add(t, "A", 2, 1)

	tests := []struct {
		name      string
		productID uuid.UUID
		delta     int
		want      error
	}{
		{"zero delta", p.ProductID, 0, repository.ErrInvalidAmount},
		{"below zero", p.ProductID, -3, repository.ErrInsufficientStock},
		{"unknown product", uuid.New(), 1, repository.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.Adjust(ctx, tt.productID, tt.delta, "test", f.actor)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	got, _ := f.products.GetByID(ctx, p.ProductID)
	assert.Equal(t, 2, got.Quantity)
	history, err := f.ledger.Movements(ctx, p.ProductID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestQuantityNeverNegative(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.add(t, "A", 4, 1)

	deltas := []int{-1, -5, 3, -6, -6, 2, -1, -10, 7}
	for _, d := range deltas {
		_, _ = f.ledger.Adjust(ctx, p.ProductID, d, "fuzz", f.actor)
		got, err := f.products.GetByID(ctx, p.ProductID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.Quantity, 0)
	}
}

func TestDebitIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.add(t, "A", 2, 0)
	b := f.add(t, "B", 1, 0)
	saleID := uuid.New()

	_, err := f.ledger.Debit(ctx, []Line{{a.ProductID, 2}, {b.ProductID, 2}}, "sale", f.actor, &saleID)
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)

	gotA, _ := f.products.GetByID(ctx, a.ProductID)
	assert.Equal(t, 2, gotA.Quantity)

	movements, err := f.ledger.Debit(ctx, []Line{{a.ProductID, 2}, {b.ProductID, 1}}, "sale", f.actor, &saleID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, saleID, *movements[0].SaleID)

	credited, err := f.ledger.Credit(ctx, []Line{{a.ProductID, 2}}, "return", f.actor, &saleID)
	require.NoError(t, err)
	assert.Equal(t, models.DirectionIn, credited[0].Direction)
	gotA, _ = f.products.GetByID(ctx, a.ProductID)
	assert.Equal(t, 2, gotA.Quantity)
}

func TestLowAndOutOfStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	empty := f.add(t, "EMPTY", 0, 5)
	low := f.add(t, "LOW", 3, 5)
	f.add(t, "OK", 10, 5)
	edge := f.add(t, "EDGE", 5, 5)

	lowStock, err := f.ledger.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, lowStock, 2)
	assert.Equal(t, low.ProductID, lowStock[0].ProductID)
	assert.Equal(t, edge.ProductID, lowStock[1].ProductID)

	out, err := f.ledger.OutOfStock(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, empty.ProductID, out[0].ProductID)

	// The queries do not mutate anything.
	again, _ := f.ledger.LowStock(ctx)
	assert.Equal(t, lowStock, again)
}

func TestValue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, "A", 3, 0)
	f.add(t, "B", 2, 0)

	v, err := f.ledger.Value(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20).Equal(v), v.String())
}
