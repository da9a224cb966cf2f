package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ledger-service/internal/logger"
	"ledger-service/internal/models"
	"ledger-service/internal/repository"
)

// StockAdjuster records the opening quantity of imported products.
type StockAdjuster interface {
	Adjust(ctx context.Context, productID uuid.UUID, delta int, reason string, actorID uuid.UUID) (*models.StockMovement, error)
}

const initialStockReason = "initial stock"

type Result struct {
	Categories int      `json:"categories"`
	Suppliers  int      `json:"suppliers"`
	Products   int      `json:"products"`
	Skipped    []string `json:"skipped"`
}

type Importer struct {
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	products   repository.ProductRepository
	stock      StockAdjuster
	log        zerolog.Logger
}

func NewImporter(categories repository.CategoryRepository, suppliers repository.SupplierRepository, products repository.ProductRepository, stock StockAdjuster) *Importer {
	return &Importer{
		categories: categories,
		suppliers:  suppliers,
		products:   products,
		stock:      stock,
		log:        logger.WithComponent("catalog"),
	}
}

// Import creates what does not exist yet. Categories and suppliers are
// matched by name, products by SKU; existing products are skipped.
func (im *Importer) Import(ctx context.Context, c *Catalog, actorID uuid.UUID) (Result, error) {
	res := Result{Skipped: []string{}}

	categoryIDs := map[string]uuid.UUID{}
	for _, entry := range c.Categories {
		id, created, err := im.category(ctx, entry.Name, entry.Description)
		if err != nil {
			return res, err
		}
		categoryIDs[strings.ToLower(entry.Name)] = id
		if created {
			res.Categories++
		}
	}

	supplierIDs := map[string]uuid.UUID{}
	for _, entry := range c.Suppliers {
		id, created, err := im.supplier(ctx, entry)
		if err != nil {
			return res, err
		}
		supplierIDs[strings.ToLower(entry.Name)] = id
		if created {
			res.Suppliers++
		}
	}

	for _, entry := range c.Products {
		if _, err := im.products.GetBySKU(ctx, entry.SKU); err == nil {
			res.Skipped = append(res.Skipped, entry.SKU)
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return res, err
		}

		p := &models.Product{
			Name:          entry.Name,
			SKU:           entry.SKU,
			PurchasePrice: entry.PurchasePrice.Decimal,
			SalePrice:     entry.SalePrice.Decimal,
			MinQuantity:   entry.MinQuantity,
		}

		if entry.Category != "" {
			id, ok := categoryIDs[strings.ToLower(entry.Category)]
			if !ok {
				var created bool
				var err error
				id, created, err = im.category(ctx, entry.Category, "")
				if err != nil {
					return res, err
				}
				categoryIDs[strings.ToLower(entry.Category)] = id
				if created {
					res.Categories++
				}
			}
			p.CategoryID = &id
		}
		if entry.Supplier != "" {
			id, ok := supplierIDs[strings.ToLower(entry.Supplier)]
			if !ok {
				return res, fmt.Errorf("%w: product %s names unknown supplier %q",
					repository.ErrInvalidInput, entry.SKU, entry.Supplier)
			}
			p.SupplierID = &id
		}

		if err := im.products.Create(ctx, p); err != nil {
			return res, fmt.Errorf("product %s: %w", entry.SKU, err)
		}
		res.Products++

		if entry.Quantity > 0 {
			if _, err := im.stock.Adjust(ctx, p.ProductID, entry.Quantity, initialStockReason, actorID); err != nil {
				return res, fmt.Errorf("product %s: %w", entry.SKU, err)
			}
		}
	}

	im.log.Info().
		Int("categories", res.Categories).
		Int("suppliers", res.Suppliers).
		Int("products", res.Products).
		Int("skipped", len(res.Skipped)).
		Msg("catalog imported")

	return res, nil
}

func (im *Importer) category(ctx context.Context, name, description string) (uuid.UUID, bool, error) {
	existing, err := im.categories.GetByName(ctx, name)
	if err == nil {
		return existing.CategoryID, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return uuid.Nil, false, err
	}

	c := &models.Category{Name: name, Description: description}
	if err := im.categories.Create(ctx, c); err != nil {
		return uuid.Nil, false, fmt.Errorf("category %s: %w", name, err)
	}
	return c.CategoryID, true, nil
}

func (im *Importer) supplier(ctx context.Context, entry SupplierEntry) (uuid.UUID, bool, error) {
	existing, err := im.suppliers.GetByName(ctx, entry.Name)
	if err == nil {
		return existing.SupplierID, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return uuid.Nil, false, err
	}

	s := &models.Supplier{
		Name:        entry.Name,
		PhoneNumber: entry.Phone,
		Email:       entry.Email,
		Address:     entry.Address,
	}
	if err := im.suppliers.Create(ctx, s); err != nil {
		return uuid.Nil, false, fmt.Errorf("supplier %s: %w", entry.Name, err)
	}
	return s.SupplierID, true, nil
}
