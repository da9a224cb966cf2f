package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-service/internal/config"
	"ledger-service/internal/debts"
	"ledger-service/internal/ids"
	"ledger-service/internal/models"
	"ledger-service/internal/sales"
	"ledger-service/internal/storage"
)

var clock = func() time.Time { return time.Date(2026, 9, 1, 11, 30, 0, 0, time.UTC) }

func params(store storage.Store) Params {
	return Params{
		Store:    store,
		Settings: models.Settings{StoreName: "Corner Shop", Currency: "EUR", VATRate: decimal.NewFromInt(20), InvoicePrefix: "INV"},
		IDs:      ids.NewSequence(),
		Now:      clock,
	}
}

// populate runs a small day of trading through the services.
func populate(t *testing.T, l *Ledger) {
	t.Helper()
	ctx := context.Background()
	seller := uuid.New()

	cat := &models.Category{Name: "Snacks"}
	require.NoError(t, l.Repos.Categories.Create(ctx, cat))
	sup := &models.Supplier{Name: "Crunch Ltd"}
	require.NoError(t, l.Repos.Suppliers.Create(ctx, sup))
	cust := &models.Customer{Name: "Margaret Hamilton", Email: "mh@example.com"}
	require.NoError(t, l.Repos.Customers.Create(ctx, cust))

	chips := &models.Product{
		Name: "Chips", SKU: "CH-1", CategoryID: &cat.CategoryID, SupplierID: &sup.SupplierID,
		PurchasePrice: decimal.RequireFromString("0.80"), SalePrice: decimal.RequireFromString("1.99"), MinQuantity: 2,
	}
	require.NoError(t, l.Repos.Products.Create(ctx, chips))
	_, err := l.Inventory.Adjust(ctx, chips.ProductID, 10, "delivery", seller)
	require.NoError(t, err)

	cart := sales.NewCart()
	require.NoError(t, l.Sales.AddToCart(ctx, cart, chips.ProductID, 3))
	sale, err := l.Sales.Commit(ctx, sales.CommitRequest{
		Lines:         cart.Lines(),
		CustomerID:    &cust.CustomerID,
		PaymentMethod: models.PaymentMixed,
		AmountPaid:    decimal.NewFromInt(2),
		SellerID:      seller,
		VATRate:       decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	require.NotNil(t, sale.DebtID)

	_, err = l.Debts.RecordPayment(ctx, *sale.DebtID, decimal.NewFromInt(1), models.PaymentCash, "first")
	require.NoError(t, err)

	_, err = l.Debts.Open(ctx, debts.OpenRequest{CustomerID: cust.CustomerID, Amount: decimal.NewFromInt(5)})
	require.NoError(t, err)
}

func TestRoundTripReproducesSnapshot(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	first, err := New(ctx, params(store))
	require.NoError(t, err)
	populate(t, first)
	require.Empty(t, first.Warnings())

	want, err := first.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, want.Sales, 1)
	require.Len(t, want.Debts, 2)
	require.Len(t, want.Movements, 2)

	second, err := New(ctx, params(store))
	require.NoError(t, err)
	got, err := second.Snapshot(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snapshot mismatch after reload (-want +got):\n%s", diff)
	}
}

func TestSettingsOverrideDefaultsAfterSave(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	l, err := New(ctx, params(store))
	require.NoError(t, err)
	s, err := l.Repos.Settings.Get(ctx)
	require.NoError(t, err)
	s.StoreName = "Renamed"
	require.NoError(t, l.Repos.Settings.Update(ctx, s))

	reopened, err := New(ctx, params(store))
	require.NoError(t, err)
	got, err := reopened.Repos.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.StoreName)
}

type flakyStore struct {
	storage.Store
	fail bool
}

func (f *flakyStore) Put(ctx context.Context, key string, data []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Store.Put(ctx, key, data)
}

func TestPersistFailuresSurfaceAsWarnings(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: storage.NewMemory(), fail: true}

	l, err := New(ctx, params(store))
	require.NoError(t, err)

	p := &models.Product{Name: "Gum", SKU: "G-1", PurchasePrice: decimal.NewFromInt(1), SalePrice: decimal.NewFromInt(2), Quantity: 1}
	require.NoError(t, l.Repos.Products.Create(ctx, p))

	warnings := l.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Error(), "products")

	store.fail = false
	require.NoError(t, l.Flush(ctx))
	assert.Empty(t, l.Warnings())
}

func TestCorruptBlobFailsConstruction(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Put(ctx, "sales", []byte("{not json")))

	_, err := New(ctx, params(store))
	assert.Error(t, err)
}

func TestOpenStoreDrivers(t *testing.T) {
	ctx := context.Background()

	for _, driver := range []string{config.DriverMemory, config.DriverFile, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			path := t.TempDir()
			if driver == config.DriverSQLite {
				path += "/ledger.db"
			}
			cfg := &config.Config{StoreDriver: driver, StorePath: path}

			store, err := OpenStore(ctx, cfg)
			require.NoError(t, err)
			defer store.Close()

			require.NoError(t, store.Put(ctx, "products", []byte("[]")))
			data, err := store.Get(ctx, "products")
			require.NoError(t, err)
			assert.Equal(t, "[]", string(data))
		})
	}

	_, err := OpenStore(ctx, &config.Config{StoreDriver: "mongo"})
	assert.Error(t, err)
}
