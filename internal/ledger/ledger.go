// Package ledger wires the store, the repositories and the services of the
// commerce ledger together.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ledger-service/internal/cache"
	"ledger-service/internal/catalog"
	"ledger-service/internal/config"
	"ledger-service/internal/debts"
	"ledger-service/internal/ids"
	"ledger-service/internal/inventory"
	"ledger-service/internal/logger"
	"ledger-service/internal/models"
	"ledger-service/internal/report"
	"ledger-service/internal/repository"
	"ledger-service/internal/sales"
	"ledger-service/internal/storage"
)

type Repositories struct {
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	Customers  repository.CustomerRepository
	Suppliers  repository.SupplierRepository
	Sales      repository.SaleRepository
	Debts      repository.DebtRepository
	Movements  repository.MovementRepository
	Settings   repository.SettingsRepository
}

func (r Repositories) all() map[string]repository.Persistent {
	return map[string]repository.Persistent{
		repository.KeyProducts:   r.Products,
		repository.KeyCategories: r.Categories,
		repository.KeyCustomers:  r.Customers,
		repository.KeySuppliers:  r.Suppliers,
		repository.KeySales:      r.Sales,
		repository.KeyDebts:      r.Debts,
		repository.KeyMovements:  r.Movements,
		repository.KeySettings:   r.Settings,
	}
}

// Ledger is built once at startup and handed to whatever needs it.
type Ledger struct {
	Repos     Repositories
	Inventory *inventory.Ledger
	Sales     *sales.Engine
	Debts     *debts.Ledger
	Reports   *report.Service
	Catalog   *catalog.Importer
	IDs       ids.Generator

	store storage.Store
	now   func() time.Time
	log   zerolog.Logger
}

type Params struct {
	Store           storage.Store
	Settings        models.Settings
	InvoiceSequence sales.SequenceMode
	IDs             ids.Generator
	Now             func() time.Time
}

// New loads every repository from the store. A blob that cannot be decoded
// fails construction.
func New(ctx context.Context, p Params) (*Ledger, error) {
	if p.Store == nil {
		return nil, errors.New("a store is required")
	}
	if p.IDs == nil {
		p.IDs = ids.Random{}
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	deps := repository.Deps{Store: p.Store, IDs: p.IDs, Now: p.Now}

	var (
		repos Repositories
		err   error
	)
	if repos.Products, err = repository.NewProductRepository(ctx, deps); err != nil {
		return nil, err
	}
	if repos.Categories, err = repository.NewCategoryRepository(ctx, deps); err != nil {
		return nil, err
	}
	if repos.Customers, err = repository.NewCustomerRepository(ctx, deps); err != nil {
		return nil, err
	}
	if repos.Suppliers, err = repository.NewSupplierRepository(ctx, deps); err != nil {
		return nil, err
	}
	if repos.Sales, err = repository.NewSaleRepository(ctx, deps); err != nil {
		return nil, err
	}
	if repos.Debts, err = repository.NewDebtRepository(ctx, deps); err != nil {
		return nil, err
	}
	if repos.Movements, err = repository.NewMovementRepository(ctx, deps); err != nil {
		return nil, err
	}
	if repos.Settings, err = repository.NewSettingsRepository(ctx, deps, p.Settings); err != nil {
		return nil, err
	}

	settings, err := repos.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	numberer, err := sales.NewNumberer(p.InvoiceSequence, settings.InvoicePrefix)
	if err != nil {
		return nil, err
	}

	inv := inventory.NewLedger(repos.Products, repos.Movements, p.IDs, p.Now)
	debtLedger := debts.NewLedger(repos.Debts, repos.Customers, repos.Sales, p.IDs, p.Now)
	engine := sales.NewEngine(sales.Deps{
		Products:  repos.Products,
		Sales:     repos.Sales,
		Stock:     inv,
		Debts:     debtLedger,
		Customers: repos.Customers,
		Numberer:  numberer,
		IDs:       p.IDs,
		Now:       p.Now,
	})

	return &Ledger{
		Repos:     repos,
		Inventory: inv,
		Sales:     engine,
		Debts:     debtLedger,
		Reports:   report.NewService(repos.Sales, repos.Customers, repos.Settings, inv, debtLedger),
		Catalog:   catalog.NewImporter(repos.Categories, repos.Suppliers, repos.Products, inv),
		IDs:       p.IDs,
		store:     p.Store,
		now:       p.Now,
		log:       logger.WithComponent("ledger"),
	}, nil
}

// Open builds the store named by the configuration and the ledger on top.
func Open(ctx context.Context, cfg *config.Config) (*Ledger, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	l, err := New(ctx, Params{
		Store: store,
		Settings: models.Settings{
			StoreName:     cfg.StoreName,
			Currency:      cfg.Currency,
			VATRate:       cfg.VATRate,
			InvoicePrefix: sales.DefaultInvoicePrefix,
		},
		InvoiceSequence: sales.SequenceMode(cfg.InvoiceSequence),
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	return l, nil
}

// OpenStore opens the configured blob store, behind a redis cache when one
// is configured and reachable.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	log := logger.WithComponent("ledger")

	var (
		store storage.Store
		err   error
	)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		store = storage.NewMemory()
	case config.DriverFile:
		store, err = storage.NewFile(cfg.StorePath)
	case config.DriverSQLite:
		store, err = storage.NewSQLite(ctx, cfg.StorePath)
	case config.DriverPostgres:
		store, err = storage.NewPostgres(ctx, cfg.Database, logger.WithComponent("database"))
	default:
		err = fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}
	log.Info().Str("driver", cfg.StoreDriver).Str("path", cfg.StorePath).Msg("store opened")

	if cfg.RedisURL == "" {
		return store, nil
	}

	rdb, err := cache.ConnectRedis(ctx, cache.Config{
		URL:      cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.RedisTTL,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without cache")
		return store, nil
	}
	log.Info().Str("addr", cfg.RedisURL).Msg("redis cache enabled")
	return cache.NewCachedStore(store, rdb, cfg.RedisTTL), nil
}

// Now is the ledger clock.
func (l *Ledger) Now() time.Time {
	return l.now()
}

// Warnings lists the last persistence failure of each repository.
func (l *Ledger) Warnings() []error {
	var out []error
	for key, r := range l.Repos.all() {
		if err := r.PersistError(); err != nil {
			out = append(out, fmt.Errorf("%s: %w", key, err))
		}
	}
	return out
}

// Flush rewrites every blob.
func (l *Ledger) Flush(ctx context.Context) error {
	var errs []error
	for key, r := range l.Repos.all() {
		if err := r.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (l *Ledger) Close(ctx context.Context) error {
	flushErr := l.Flush(ctx)
	if flushErr != nil {
		l.log.Warn().Err(flushErr).Msg("final flush failed")
	}
	return errors.Join(flushErr, l.store.Close())
}

// Snapshot is the full in-memory state.
type Snapshot struct {
	Products   []models.Product       `json:"products"`
	Categories []models.Category      `json:"categories"`
	Customers  []models.Customer      `json:"customers"`
	Suppliers  []models.Supplier      `json:"suppliers"`
	Sales      []models.Sale          `json:"sales"`
	Debts      []models.Debt          `json:"debts"`
	Movements  []models.StockMovement `json:"movements"`
	Settings   models.Settings        `json:"settings"`
}

func (l *Ledger) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		s   Snapshot
		err error
	)
	if s.Products, err = l.Repos.Products.GetAll(ctx); err != nil {
		return s, err
	}
	if s.Categories, err = l.Repos.Categories.GetAll(ctx); err != nil {
		return s, err
	}
	if s.Customers, err = l.Repos.Customers.GetAll(ctx); err != nil {
		return s, err
	}
	if s.Suppliers, err = l.Repos.Suppliers.GetAll(ctx); err != nil {
		return s, err
	}
	if s.Sales, err = l.Repos.Sales.GetAll(ctx); err != nil {
		return s, err
	}
	if s.Debts, err = l.Repos.Debts.GetAll(ctx); err != nil {
		return s, err
	}
	if s.Movements, err = l.Repos.Movements.GetAll(ctx); err != nil {
		return s, err
	}
	if s.Settings, err = l.Repos.Settings.Get(ctx); err != nil {
		return s, err
	}
	return s, nil
}
