package repository

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

	"ledger-service/internal/ids"
	"ledger-service/internal/models"
	"ledger-service/internal/storage"
)

var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func testDeps(store storage.Store) Deps {
	return Deps{
		Store: store,
		IDs:   ids.NewSequence(),
		Now:   func() time.Time { return fixedNow },
	}
}

func newProduct(name, sku string, qty int) *models.Product {
	return &models.Product{
		Name:          name,
		SKU:           sku,
		PurchasePrice: decimal.NewFromInt(6),
		SalePrice:     decimal.NewFromInt(10),
		Quantity:      qty,
		MinQuantity:   2,
	}
}

// failingStore accepts reads but rejects every write.
type failingStore struct {
	storage.Store
}

func (failingStore) Put(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

func TestProductCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo, err := NewProductRepository(ctx, testDeps(storage.NewMemory()))
	require.NoError(t, err)

	p := newProduct("Green Tea", "TEA-01", 5)
	require.NoError(t, repo.Create(ctx, p))
	assert.NotEqual(t, uuid.Nil, p.ProductID)
	assert.Equal(t, fixedNow, p.CreatedAt)

	got, err := repo.GetByID(ctx, p.ProductID)
	require.NoError(t, err)
	assert.Equal(t, "Green Tea", got.Name)

	got, err = repo.GetBySKU(ctx, "tea-01")
	require.NoError(t, err)
	assert.Equal(t, p.ProductID, got.ProductID)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductCreateValidation(t *testing.T) {
	ctx := context.Background()
	repo, err := NewProductRepository(ctx, testDeps(storage.NewMemory()))
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, newProduct("Tea", "TEA-01", 1)))

	tests := []struct {
		name    string
		product *models.Product
		want    error
	}{
		{"missing name", newProduct("", "X-1", 1), ErrInvalidInput},
		{"negative quantity", newProduct("Coffee", "X-2", -1), ErrInvalidInput},
		{"duplicate sku", newProduct("Other Tea", "TEA-01", 1), ErrDuplicate},
		{"nil", nil, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, repo.Create(ctx, tt.product), tt.want)
		})
	}

	neg := newProduct("Cheap", "X-3", 1)
	neg.SalePrice = decimal.NewFromInt(-1)
	assert.ErrorIs(t, repo.Create(ctx, neg), ErrInvalidInput)
}

func TestProductUpdateKeepsQuantity(t *testing.T) {
	ctx := context.Background()
	repo, err := NewProductRepository(ctx, testDeps(storage.NewMemory()))
	require.NoError(t, err)

	p := newProduct("Tea", "TEA-01", 5)
	require.NoError(t, repo.Create(ctx, p))

	edit := *p
	edit.Name = "Black Tea"
	edit.Quantity = 500
	require.NoError(t, repo.Update(ctx, &edit))
	assert.Equal(t, 5, edit.Quantity)

	got, err := repo.GetByID(ctx, p.ProductID)
	require.NoError(t, err)
	assert.Equal(t, "Black Tea", got.Name)
	assert.Equal(t, 5, got.Quantity)
}

func TestApplyStockIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo, err := NewProductRepository(ctx, testDeps(storage.NewMemory()))
	require.NoError(t, err)

	a := newProduct("A", "A-1", 2)
	b := newProduct("B", "B-1", 1)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	_, err = repo.ApplyStock(ctx, []StockChange{
		{ProductID: a.ProductID, Delta: -2},
		{ProductID: b.ProductID, Delta: -3},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	got, _ := repo.GetByID(ctx, a.ProductID)
	assert.Equal(t, 2, got.Quantity, "first line must not be applied")

	_, err = repo.ApplyStock(ctx, []StockChange{
		{ProductID: a.ProductID, Delta: -1},
		{ProductID: uuid.New(), Delta: -1},
	})
	assert.ErrorIs(t, err, ErrNotFound)
	got, _ = repo.GetByID(ctx, a.ProductID)
	assert.Equal(t, 2, got.Quantity)

	// Two changes for the same product are netted before validation.
	_, err = repo.ApplyStock(ctx, []StockChange{
		{ProductID: a.ProductID, Delta: -2},
		{ProductID: a.ProductID, Delta: -1},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	updated, err := repo.ApplyStock(ctx, []StockChange{
		{ProductID: a.ProductID, Delta: -2},
		{ProductID: b.ProductID, Delta: 4},
	})
	require.NoError(t, err)
	require.Len(t, updated, 2)
	assert.Equal(t, 0, updated[0].Quantity)
	assert.Equal(t, 5, updated[1].Quantity)
}

func TestGetAllKeepsInsertionOrderAndCopies(t *testing.T) {
	ctx := context.Background()
	repo, err := NewProductRepository(ctx, testDeps(storage.NewMemory()))
	require.NoError(t, err)

	for _, sku := range []string{"C", "A", "B"} {
		require.NoError(t, repo.Create(ctx, newProduct("P"+sku, sku, 1)))
	}

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"C", "A", "B"}, []string{all[0].SKU, all[1].SKU, all[2].SKU})

	all[0].Quantity = 99
	again, _ := repo.GetAll(ctx)
	assert.Equal(t, 1, again[0].Quantity)

	require.NoError(t, repo.Delete(ctx, all[1].ProductID))
	again, _ = repo.GetAll(ctx)
	require.Len(t, again, 2)
	assert.Equal(t, "B", again[1].SKU)
	got, err := repo.GetByID(ctx, again[1].ProductID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.SKU)
}

func TestRepositoriesRoundTripThroughStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	deps := testDeps(store)

	products, err := NewProductRepository(ctx, deps)
	require.NoError(t, err)
	sales, err := NewSaleRepository(ctx, deps)
	require.NoError(t, err)
	debts, err := NewDebtRepository(ctx, deps)
	require.NoError(t, err)

	p := newProduct("Tea", "TEA-01", 5)
	require.NoError(t, products.Create(ctx, p))

	customerID := deps.IDs.New()
	due := fixedNow.Add(48 * time.Hour)
	sale := models.Sale{
		SaleID:        deps.IDs.New(),
		InvoiceNumber: "INV-202603-0001",
		Sequence:      1,
		CustomerID:    &customerID,
		Items: []models.SaleItem{{
			ProductID: p.ProductID, Name: p.Name, SKU: p.SKU, Quantity: 2,
			UnitPrice: decimal.NewFromInt(10), CostPrice: decimal.NewFromInt(6), LineTotal: decimal.NewFromInt(20),
		}},
		Subtotal:      decimal.NewFromInt(20),
		VATRate:       decimal.NewFromInt(20),
		VATAmount:     decimal.NewFromInt(4),
		Total:         decimal.NewFromInt(24),
		PaymentMethod: models.PaymentCash,
		AmountPaid:    decimal.NewFromInt(30),
		ChangeDue:     decimal.NewFromInt(6),
		SellerID:      deps.IDs.New(),
		Status:        models.SaleStatusCompleted,
		CreatedAt:     fixedNow,
	}
	require.NoError(t, sales.Create(ctx, &sale))

	debt := models.Debt{
		DebtID:     deps.IDs.New(),
		CustomerID: customerID,
		Amount:     decimal.RequireFromString("12.50"),
		Paid:       decimal.NewFromInt(5),
		Remaining:  decimal.RequireFromString("7.50"),
		DueDate:    &due,
		Status:     models.DebtStatusPartial,
		Payments: []models.Payment{{
			PaymentID: deps.IDs.New(), Amount: decimal.NewFromInt(5), Method: models.PaymentCash, PaidAt: fixedNow,
		}},
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
	require.NoError(t, debts.Create(ctx, &debt))

	reProducts, err := NewProductRepository(ctx, deps)
	require.NoError(t, err)
	reSales, err := NewSaleRepository(ctx, deps)
	require.NoError(t, err)
	reDebts, err := NewDebtRepository(ctx, deps)
	require.NoError(t, err)

	wantProducts, _ := products.GetAll(ctx)
	gotProducts, _ := reProducts.GetAll(ctx)
	assert.Empty(t, cmp.Diff(wantProducts, gotProducts))

	wantSales, _ := sales.GetAll(ctx)
	gotSales, _ := reSales.GetAll(ctx)
	assert.Empty(t, cmp.Diff(wantSales, gotSales))

	wantDebts, _ := debts.GetAll(ctx)
	gotDebts, _ := reDebts.GetAll(ctx)
	assert.Empty(t, cmp.Diff(wantDebts, gotDebts))
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	repo, err := NewProductRepository(ctx, testDeps(failingStore{Store: storage.NewMemory()}))
	require.NoError(t, err)

	p := newProduct("Tea", "TEA-01", 5)
	require.NoError(t, repo.Create(ctx, p), "write failures are not operation failures")
	assert.Error(t, repo.PersistError())
	assert.Error(t, repo.Flush(ctx))

	got, err := repo.GetByID(ctx, p.ProductID)
	require.NoError(t, err)
	assert.Equal(t, "Tea", got.Name)
}

func TestCorruptBlobFailsLoad(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Put(ctx, KeyProducts, []byte("{not json")))

	_, err := NewProductRepository(ctx, testDeps(store))
	assert.Error(t, err)
}

func TestMovementsAreAppendOnly(t *testing.T) {
	ctx := context.Background()
	deps := testDeps(storage.NewMemory())
	repo, err := NewMovementRepository(ctx, deps)
	require.NoError(t, err)

	productID := deps.IDs.New()
	saleID := deps.IDs.New()
	m1 := models.StockMovement{MovementID: deps.IDs.New(), ProductID: productID, Direction: models.DirectionIn, Quantity: 5, Reason: "delivery", CreatedAt: fixedNow}
	m2 := models.StockMovement{MovementID: deps.IDs.New(), ProductID: productID, Direction: models.DirectionOut, Quantity: 2, Reason: "sale", SaleID: &saleID, CreatedAt: fixedNow}
	require.NoError(t, repo.Append(ctx, m1, m2))

	assert.ErrorIs(t, repo.Append(ctx, m1), ErrDuplicate)
	bad := m1
	bad.MovementID = deps.IDs.New()
	bad.Quantity = 0
	assert.ErrorIs(t, repo.Append(ctx, bad), ErrInvalidInput)

	byProduct, err := repo.GetByProductID(ctx, productID)
	require.NoError(t, err)
	assert.Len(t, byProduct, 2)
	assert.Equal(t, -2, byProduct[1].Delta())

	bySale, err := repo.GetBySaleID(ctx, saleID)
	require.NoError(t, err)
	require.Len(t, bySale, 1)
	assert.Equal(t, m2.MovementID, bySale[0].MovementID)
}

func TestSaleStatusAndRange(t *testing.T) {
	ctx := context.Background()
	deps := testDeps(storage.NewMemory())
	repo, err := NewSaleRepository(ctx, deps)
	require.NoError(t, err)

	item := []models.SaleItem{{ProductID: deps.IDs.New(), Quantity: 1}}
	early := models.Sale{SaleID: deps.IDs.New(), Items: item, Status: models.SaleStatusCompleted, CreatedAt: fixedNow.Add(-time.Hour)}
	late := models.Sale{SaleID: deps.IDs.New(), Items: item, Status: models.SaleStatusCompleted, CreatedAt: fixedNow}
	require.NoError(t, repo.Create(ctx, &early))
	require.NoError(t, repo.Create(ctx, &late))
	assert.ErrorIs(t, repo.Create(ctx, &late), ErrDuplicate)

	inRange, err := repo.GetByRange(ctx, fixedNow.Add(-30*time.Minute), fixedNow.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, inRange, 1)
	assert.Equal(t, late.SaleID, inRange[0].SaleID)

	_, err = repo.GetByRange(ctx, fixedNow, fixedNow)
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, repo.UpdateStatus(ctx, early.SaleID, models.SaleStatusCancelled, fixedNow))
	got, err := repo.GetByID(ctx, early.SaleID)
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusCancelled, got.Status)
	require.NotNil(t, got.CancelledAt)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, early.SaleID, "shipped", fixedNow), ErrInvalidInput)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), models.SaleStatusCancelled, fixedNow), ErrNotFound)
}

func TestSaleLinkDebt(t *testing.T) {
	ctx := context.Background()
	deps := testDeps(storage.NewMemory())
	repo, err := NewSaleRepository(ctx, deps)
	require.NoError(t, err)

	sale := models.Sale{SaleID: deps.IDs.New(), Items: []models.SaleItem{{ProductID: deps.IDs.New(), Quantity: 1}}}
	require.NoError(t, repo.Create(ctx, &sale))

	debtID := deps.IDs.New()
	require.NoError(t, repo.LinkDebt(ctx, sale.SaleID, debtID))
	require.NoError(t, repo.LinkDebt(ctx, sale.SaleID, debtID))

	got, err := repo.GetByID(ctx, sale.SaleID)
	require.NoError(t, err)
	require.NotNil(t, got.DebtID)
	assert.Equal(t, debtID, *got.DebtID)

	assert.ErrorIs(t, repo.LinkDebt(ctx, sale.SaleID, deps.IDs.New()), ErrInvalidState)
	assert.ErrorIs(t, repo.LinkDebt(ctx, uuid.New(), debtID), ErrNotFound)
	assert.ErrorIs(t, repo.LinkDebt(ctx, sale.SaleID, uuid.Nil), ErrInvalidInput)
}

func TestCustomerUniqueness(t *testing.T) {
	ctx := context.Background()
	repo, err := NewCustomerRepository(ctx, testDeps(storage.NewMemory()))
	require.NoError(t, err)

	c := &models.Customer{Name: "Ada Lovelace", Email: "ada@example.com", PhoneNumber: "+441234567890"}
	require.NoError(t, repo.Create(ctx, c))

	assert.ErrorIs(t, repo.Create(ctx, &models.Customer{Name: "Other", Email: "ADA@example.com"}), ErrDuplicate)
	assert.ErrorIs(t, repo.Create(ctx, &models.Customer{Name: "Other", PhoneNumber: "+441234567890"}), ErrDuplicate)
	assert.ErrorIs(t, repo.Create(ctx, &models.Customer{Name: "Bad", Email: "not-an-email"}), ErrInvalidInput)
	assert.ErrorIs(t, repo.Create(ctx, &models.Customer{Name: "Bad", PhoneNumber: "12345"}), ErrInvalidInput)

	got, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, c.CustomerID, got.CustomerID)

	got, err = repo.GetByPhoneNumber(ctx, "+441234567890")
	require.NoError(t, err)
	assert.Equal(t, c.CustomerID, got.CustomerID)
}

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	defaults := models.Settings{StoreName: "Shop", Currency: "EUR", VATRate: decimal.NewFromInt(20), InvoicePrefix: "INV"}

	repo, err := NewSettingsRepository(ctx, testDeps(store), defaults)
	require.NoError(t, err)

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Shop", got.StoreName)

	updated := got
	updated.VATRate = decimal.NewFromInt(7)
	require.NoError(t, repo.Update(ctx, updated))

	reopened, err := NewSettingsRepository(ctx, testDeps(store), defaults)
	require.NoError(t, err)
	got, err = reopened.Get(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(7).Equal(got.VATRate))

	bad := got
	bad.StoreName = " "
	assert.ErrorIs(t, repo.Update(ctx, bad), ErrInvalidInput)
}

func TestCategoryAndSupplierLookups(t *testing.T) {
	ctx := context.Background()
	deps := testDeps(storage.NewMemory())
	categories, err := NewCategoryRepository(ctx, deps)
	require.NoError(t, err)
	suppliers, err := NewSupplierRepository(ctx, deps)
	require.NoError(t, err)

	drinks := &models.Category{Name: "Drinks"}
	require.NoError(t, categories.Create(ctx, drinks))
	assert.ErrorIs(t, categories.Create(ctx, &models.Category{Name: "drinks"}), ErrDuplicate)

	got, err := categories.GetByName(ctx, "DRINKS")
	require.NoError(t, err)
	assert.Equal(t, drinks.CategoryID, got.CategoryID)

	acme := &models.Supplier{Name: "Acme Wholesale"}
	require.NoError(t, suppliers.Create(ctx, acme))
	s, err := suppliers.GetByName(ctx, "acme wholesale")
	require.NoError(t, err)
	assert.Equal(t, acme.SupplierID, s.SupplierID)

	products, err := NewProductRepository(ctx, deps)
	require.NoError(t, err)
	tea := newProduct("Tea", "TEA-01", 1)
	tea.CategoryID = &drinks.CategoryID
	require.NoError(t, products.Create(ctx, tea))
	require.NoError(t, products.Create(ctx, newProduct("Soap", "SOAP-01", 1)))

	inDrinks, err := products.GetByCategory(ctx, drinks.CategoryID)
	require.NoError(t, err)
	require.Len(t, inDrinks, 1)
	assert.Equal(t, "Tea", inDrinks[0].Name)
}
