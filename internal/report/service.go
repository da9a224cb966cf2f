package report

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledger-service/internal/debts"
	"ledger-service/internal/inventory"
	"ledger-service/internal/models"
	"ledger-service/internal/repository"
)

type SaleReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	GetAll(ctx context.Context) ([]models.Sale, error)
}

type SettingsReader interface {
	Get(ctx context.Context) (models.Settings, error)
}

type CustomerReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

// Service answers reporting queries. It only reads.
type Service struct {
	sales     SaleReader
	customers CustomerReader
	settings  SettingsReader
	inventory inventory.View
	debts     debts.View
}

func NewService(sales SaleReader, customers CustomerReader, settings SettingsReader, inv inventory.View, d debts.View) *Service {
	return &Service{sales: sales, customers: customers, settings: settings, inventory: inv, debts: d}
}

func (s *Service) Summary(ctx context.Context, r Range) (SalesSummary, error) {
	all, err := s.sales.GetAll(ctx)
	if err != nil {
		return SalesSummary{}, err
	}
	return Summarize(all, r), nil
}

func (s *Service) TopProducts(ctx context.Context, r Range, n int) ([]ProductTotal, error) {
	all, err := s.sales.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return TopProducts(all, r, n), nil
}

// Invoice builds the document for one sale. A customer deleted since the
// sale is left out rather than failing the document.
func (s *Service) Invoice(ctx context.Context, saleID uuid.UUID) (InvoiceDocument, error) {
	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return InvoiceDocument{}, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return InvoiceDocument{}, err
	}

	var customer *models.Customer
	if sale.CustomerID != nil && s.customers != nil {
		customer, err = s.customers.GetByID(ctx, *sale.CustomerID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return InvoiceDocument{}, err
		}
	}

	return NewInvoiceDocument(settings, *sale, customer), nil
}

// Overview is the at-a-glance state of the store.
type Overview struct {
	StockValue      decimal.Decimal `json:"stock_value"`
	LowStock        int             `json:"low_stock"`
	OutOfStock      int             `json:"out_of_stock"`
	OutstandingDebt decimal.Decimal `json:"outstanding_debt"`
	OverdueDebts    int             `json:"overdue_debts"`
}

func (s *Service) Overview(ctx context.Context) (Overview, error) {
	value, err := s.inventory.Value(ctx)
	if err != nil {
		return Overview{}, err
	}
	low, err := s.inventory.LowStock(ctx)
	if err != nil {
		return Overview{}, err
	}
	out, err := s.inventory.OutOfStock(ctx)
	if err != nil {
		return Overview{}, err
	}
	owed, err := s.debts.Outstanding(ctx)
	if err != nil {
		return Overview{}, err
	}
	overdue, err := s.debts.Overdue(ctx)
	if err != nil {
		return Overview{}, err
	}

	return Overview{
		StockValue:      value,
		LowStock:        len(low),
		OutOfStock:      len(out),
		OutstandingDebt: owed,
		OverdueDebts:    len(overdue),
	}, nil
}
