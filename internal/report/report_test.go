package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-service/internal/models"
	"ledger-service/internal/repository"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(n int) time.Time { return time.Date(2026, 4, n, 10, 0, 0, 0, time.UTC) }

var (
	tea    = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	coffee = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

func sale(at time.Time, status models.SaleStatus, method models.PaymentMethod, paid string, items ...models.SaleItem) models.Sale {
	s := models.Sale{
		SaleID:        uuid.New(),
		Items:         items,
		Status:        status,
		PaymentMethod: method,
		AmountPaid:    d(paid),
		VATRate:       d("20"),
		CreatedAt:     at,
	}
	s.Subtotal = decimal.Zero
	for _, it := range items {
		s.Subtotal = s.Subtotal.Add(it.LineTotal)
	}
	s.VATAmount = s.Subtotal.Mul(d("0.2"))
	s.Total = s.Subtotal.Add(s.VATAmount)
	return s
}

func item(id uuid.UUID, sku string, qty int, price, cost string) models.SaleItem {
	return models.SaleItem{
		ProductID: id,
		Name:      sku,
		SKU:       sku,
		Quantity:  qty,
		UnitPrice: d(price),
		CostPrice: d(cost),
		LineTotal: d(price).Mul(decimal.NewFromInt(int64(qty))),
	}
}

func fixtureSales() []models.Sale {
	return []models.Sale{
		sale(day(1), models.SaleStatusCompleted, models.PaymentCash, "30", item(tea, "TEA", 2, "10", "4"), item(coffee, "COF", 1, "5", "2")),
		sale(day(2), models.SaleStatusCompleted, models.PaymentMixed, "10", item(coffee, "COF", 4, "5", "2")),
		sale(day(2), models.SaleStatusCancelled, models.PaymentCard, "12", item(tea, "TEA", 1, "10", "4")),
		sale(day(9), models.SaleStatusCompleted, models.PaymentCard, "12", item(tea, "TEA", 1, "10", "4")),
	}
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("2026-04-01", "2026-04-02", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC), r.To)
	assert.True(t, r.Contains(day(2)))
	assert.False(t, r.Contains(day(3)))

	open, err := ParseRange("", "", nil)
	require.NoError(t, err)
	assert.True(t, open.Contains(day(30)))

	_, err = ParseRange("04/01/2026", "", nil)
	assert.Error(t, err)
	_, err = ParseRange("2026-04-05", "2026-04-01", nil)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	r, err := ParseRange("2026-04-01", "2026-04-02", nil)
	require.NoError(t, err)

	s := Summarize(fixtureSales(), r)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, 1, s.Cancelled)
	assert.Equal(t, "45.00", s.Net.StringFixed(2))
	assert.Equal(t, "9.00", s.VAT.StringFixed(2))
	assert.Equal(t, "54.00", s.Revenue.StringFixed(2))
	assert.Equal(t, "18.00", s.Cost.StringFixed(2))
	assert.Equal(t, "27.00", s.GrossProfit.StringFixed(2))
	assert.Equal(t, "14.00", s.Deferred.StringFixed(2))

	require.Len(t, s.ByPayment, 2)
	assert.Equal(t, models.PaymentCash, s.ByPayment[0].Method)
	assert.Equal(t, models.PaymentMixed, s.ByPayment[1].Method)
	assert.Equal(t, "24.00", s.ByPayment[1].Total.StringFixed(2))
}

func TestTopProducts(t *testing.T) {
	top := TopProducts(fixtureSales(), Range{}, 0)
	require.Len(t, top, 2)
	assert.Equal(t, "COF", top[0].SKU)
	assert.Equal(t, 5, top[0].Quantity)
	assert.Equal(t, "TEA", top[1].SKU)
	assert.Equal(t, 3, top[1].Quantity)

	assert.Len(t, TopProducts(fixtureSales(), Range{}, 1), 1)
	assert.Empty(t, TopProducts(nil, Range{}, 3))
}

func TestInvoiceDocumentIsSnapshot(t *testing.T) {
	s := fixtureSales()[1]
	s.InvoiceNumber = "INV-202604-0002"
	customer := &models.Customer{CustomerID: uuid.New(), Name: "Alan Turing"}
	settings := models.Settings{StoreName: "Corner Shop", Currency: "EUR"}

	doc := NewInvoiceDocument(settings, s, customer)
	assert.Equal(t, "Corner Shop", doc.StoreName)
	assert.Equal(t, "INV-202604-0002", doc.InvoiceNumber)
	assert.Equal(t, "14.00", doc.Balance.StringFixed(2))

	s.Items[0].Quantity = 99
	customer.Name = "changed"
	assert.Equal(t, 4, doc.Lines[0].Quantity)
	assert.Equal(t, "Alan Turing", doc.Customer.Name)
}

type fakeSales []models.Sale

func (f fakeSales) GetByID(_ context.Context, id uuid.UUID) (*models.Sale, error) {
	for _, s := range f {
		if s.SaleID == id {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeSales) GetAll(context.Context) ([]models.Sale, error) { return f, nil }

type fakeSettings struct{}

func (fakeSettings) Get(context.Context) (models.Settings, error) {
	return models.Settings{StoreName: "Corner Shop"}, nil
}

type noCustomers struct{}

func (noCustomers) GetByID(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	return nil, repository.ErrNotFound
}

func TestServiceInvoiceToleratesMissingCustomer(t *testing.T) {
	ctx := context.Background()
	sales := fakeSales(fixtureSales())
	id := uuid.New()
	sales[0].CustomerID = &id

	svc := NewService(sales, noCustomers{}, fakeSettings{}, nil, nil)

	doc, err := svc.Invoice(ctx, sales[0].SaleID)
	require.NoError(t, err)
	assert.Nil(t, doc.Customer)
	assert.Equal(t, "Corner Shop", doc.StoreName)

	_, err = svc.Invoice(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	summary, err := svc.Summary(ctx, Range{})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Count)
}
