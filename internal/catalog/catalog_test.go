package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-service/internal/ids"
	"ledger-service/internal/inventory"
	"ledger-service/internal/models"
	"ledger-service/internal/repository"
	"ledger-service/internal/storage"
)

const sample = `
categories:
  - name: Beverages
    description: Hot and cold drinks
suppliers:
  - name: Leaf Traders
    email: orders@leaf.example
products:
  - name: Green Tea
    sku: TEA-01
    category: Beverages
    supplier: Leaf Traders
    purchase_price: 2.40
    sale_price: "4.90"
    quantity: 12
    min_quantity: 3
  - name: Ground Coffee
    sku: COF-01
    category: Pantry
    purchase_price: 5
    sale_price: 9.5
`

type fixture struct {
	importer   *Importer
	products   repository.ProductRepository
	categories repository.CategoryRepository
	movements  repository.MovementRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	now := func() time.Time { return time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC) }
	deps := repository.Deps{Store: storage.NewMemory(), IDs: ids.NewSequence(), Now: now}

	products, err := repository.NewProductRepository(ctx, deps)
	require.NoError(t, err)
	categories, err := repository.NewCategoryRepository(ctx, deps)
	require.NoError(t, err)
	suppliers, err := repository.NewSupplierRepository(ctx, deps)
	require.NoError(t, err)
	movements, err := repository.NewMovementRepository(ctx, deps)
	require.NoError(t, err)

	stock := inventory.NewLedger(products, movements, deps.IDs, now)
	return &fixture{
		importer:   NewImporter(categories, suppliers, products, stock),
		products:   products,
		categories: categories,
		movements:  movements,
	}
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, c.Products, 2)
	assert.Equal(t, "2.4", c.Products[0].PurchasePrice.String())
	assert.Equal(t, "4.9", c.Products[0].SalePrice.String())
	assert.Equal(t, "9.5", c.Products[1].SalePrice.String())
}

func TestParseRejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":     "products:\n  - name: A\n    sku: A\n    colour: red\n",
		"bad price":       "products:\n  - name: A\n    sku: A\n    sale_price: cheap\n",
		"duplicate sku":   "products:\n  - {name: A, sku: A}\n  - {name: B, sku: A}\n",
		"missing sku":     "products:\n  - name: A\n",
		"negative stock":  "products:\n  - {name: A, sku: A, quantity: -1}\n",
		"price as a list": "products:\n  - name: A\n    sku: A\n    sale_price: [1]\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseEmptyDocument(t *testing.T) {
	c, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, c.Products)
}

func TestImportCreatesCatalogWithOpeningStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c, err := Parse([]byte(sample))
	require.NoError(t, err)
	actor := uuid.New()

	res, err := f.importer.Import(ctx, c, actor)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Categories)
	assert.Equal(t, 1, res.Suppliers)
	assert.Equal(t, 2, res.Products)
	assert.Empty(t, res.Skipped)

	tea, err := f.products.GetBySKU(ctx, "TEA-01")
	require.NoError(t, err)
	assert.Equal(t, 12, tea.Quantity)
	require.NotNil(t, tea.CategoryID)
	require.NotNil(t, tea.SupplierID)

	moves, err := f.movements.GetByProductID(ctx, tea.ProductID)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, models.DirectionIn, moves[0].Direction)
	assert.Equal(t, "initial stock", moves[0].Reason)
	assert.Equal(t, actor, moves[0].ActorID)

	coffee, err := f.products.GetBySKU(ctx, "COF-01")
	require.NoError(t, err)
	assert.Equal(t, 0, coffee.Quantity)
	pantry, err := f.categories.GetByName(ctx, "pantry")
	require.NoError(t, err)
	assert.Equal(t, pantry.CategoryID, *coffee.CategoryID)

	// Importing again changes nothing.
	res, err = f.importer.Import(ctx, c, actor)
	require.NoError(t, err)
	assert.Zero(t, res.Products)
	assert.Zero(t, res.Categories)
	assert.Equal(t, []string{"TEA-01", "COF-01"}, res.Skipped)

	all, err := f.movements.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestImportUnknownSupplier(t *testing.T) {
	f := newFixture(t)
	c, err := Parse([]byte("products:\n  - {name: A, sku: A, supplier: Nobody}\n"))
	require.NoError(t, err)

	_, err = f.importer.Import(context.Background(), c, uuid.New())
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, c.Categories, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
