package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ledger-service/internal/models"
)

// Persistent is implemented by every blob-backed repository.
type Persistent interface {
	// Flush rewrites the whole blob and reports the write error, if any.
	Flush(ctx context.Context) error
	// PersistError returns the last write failure swallowed after a mutation.
	PersistError() error
}

// ProductReader is the query-only view of the product catalog.
type ProductReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Product, error)
}

// StockChange is a signed quantity delta for one product.
type StockChange struct {
	ProductID uuid.UUID
	Delta     int
}

type ProductRepository interface {
	ProductReader
	Persistent

	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ApplyStock applies every change or none of them.
	ApplyStock(ctx context.Context, changes []StockChange) ([]models.Product, error)
}

type CategoryRepository interface {
	Persistent

	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	GetAll(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CustomerRepository interface {
	Persistent

	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	GetAll(ctx context.Context) ([]models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	GetByPhoneNumber(ctx context.Context, phoneNumber string) (*models.Customer, error)
}

type SupplierRepository interface {
	Persistent

	Create(ctx context.Context, supplier *models.Supplier) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	GetByName(ctx context.Context, name string) (*models.Supplier, error)
	GetAll(ctx context.Context) ([]models.Supplier, error)
	Update(ctx context.Context, supplier *models.Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SaleRepository interface {
	Persistent

	Create(ctx context.Context, sale *models.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	GetAll(ctx context.Context) ([]models.Sale, error)
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]models.Sale, error)
	// GetByRange returns sales created in [from, to).
	GetByRange(ctx context.Context, from, to time.Time) ([]models.Sale, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.SaleStatus, at time.Time) error
	// LinkDebt records the debt opened for the unpaid part of a sale.
	LinkDebt(ctx context.Context, id, debtID uuid.UUID) error
}

type DebtRepository interface {
	Persistent

	Create(ctx context.Context, debt *models.Debt) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Debt, error)
	GetAll(ctx context.Context) ([]models.Debt, error)
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]models.Debt, error)
	Update(ctx context.Context, debt *models.Debt) error
}

// MovementRepository is append-only.
type MovementRepository interface {
	Persistent

	Append(ctx context.Context, movements ...models.StockMovement) error
	GetAll(ctx context.Context) ([]models.StockMovement, error)
	GetByProductID(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error)
	GetBySaleID(ctx context.Context, saleID uuid.UUID) ([]models.StockMovement, error)
}

type SettingsRepository interface {
	Persistent

	Get(ctx context.Context) (models.Settings, error)
	Update(ctx context.Context, settings models.Settings) error
}
