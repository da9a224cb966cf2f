package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ledger-service/internal/models"
)

type productRepo struct {
	*collection[models.Product]
}

func NewProductRepository(ctx context.Context, deps Deps) (ProductRepository, error) {
	c, err := loadCollection(ctx, deps, KeyProducts,
		func(p models.Product) uuid.UUID { return p.ProductID }, nil)
	if err != nil {
		return nil, err
	}
	return &productRepo{collection: c}, nil
}

func validateProduct(p *models.Product) error {
	if err := validateStruct(p); err != nil {
		return err
	}
	if p.SalePrice.IsNegative() {
		return fmt.Errorf("%w: sale price cannot be negative", ErrInvalidInput)
	}
	if p.PurchasePrice.IsNegative() {
		return fmt.Errorf("%w: purchase price cannot be negative", ErrInvalidInput)
	}
	return nil
}

func (r *productRepo) skuTaken(sku string, except uuid.UUID) bool {
	_, ok := r.find(func(p models.Product) bool {
		return p.ProductID != except && strings.EqualFold(p.SKU, sku)
	})
	return ok
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	if p == nil {
		return fmt.Errorf("%w: product cannot be nil", ErrInvalidInput)
	}
	if err := validateProduct(p); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.skuTaken(p.SKU, uuid.Nil) {
		return fmt.Errorf("%w: sku %s already exists", ErrDuplicate, p.SKU)
	}

	now := r.deps.Now()
	p.ProductID = r.deps.IDs.New()
	p.CreatedAt = now
	p.UpdatedAt = now

	r.insert(*p)
	r.persist(ctx)
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return &p, nil
}

func (r *productRepo) GetBySKU(_ context.Context, sku string) (*models.Product, error) {
	if sku == "" {
		return nil, fmt.Errorf("%w: sku cannot be empty", ErrInvalidInput)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.find(func(p models.Product) bool { return strings.EqualFold(p.SKU, sku) })
	if !ok {
		return nil, fmt.Errorf("%w: product sku %s", ErrNotFound, sku)
	}
	return &p, nil
}

func (r *productRepo) GetAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(nil), nil
}

func (r *productRepo) GetByCategory(_ context.Context, categoryID uuid.UUID) ([]models.Product, error) {
	if categoryID == uuid.Nil {
		return nil, fmt.Errorf("%w: category cannot be empty", ErrInvalidInput)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(func(p models.Product) bool {
		return p.CategoryID != nil && *p.CategoryID == categoryID
	}), nil
}

// Update replaces the descriptive fields of a product. Quantity is owned by
// stock operations and is always taken from the stored record.
func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	if p == nil || p.ProductID == uuid.Nil {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.get(p.ProductID)
	if !ok {
		return fmt.Errorf("%w: product %s", ErrNotFound, p.ProductID)
	}

	p.Quantity = current.Quantity
	if err := validateProduct(p); err != nil {
		return err
	}
	if r.skuTaken(p.SKU, p.ProductID) {
		return fmt.Errorf("%w: sku %s already exists", ErrDuplicate, p.SKU)
	}

	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = r.deps.Now()

	r.replace(*p)
	r.persist(ctx)
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.remove(id) {
		return fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	r.persist(ctx)
	return nil
}

func (r *productRepo) ApplyStock(ctx context.Context, changes []StockChange) ([]models.Product, error) {
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: no stock changes", ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Validate everything before touching any quantity.
	order := make([]uuid.UUID, 0, len(changes))
	net := make(map[uuid.UUID]int, len(changes))
	for _, ch := range changes {
		if _, ok := r.index[ch.ProductID]; !ok {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, ch.ProductID)
		}
		if _, seen := net[ch.ProductID]; !seen {
			order = append(order, ch.ProductID)
		}
		net[ch.ProductID] += ch.Delta
	}

	for _, id := range order {
		p := r.items[r.index[id]]
		if p.Quantity+net[id] < 0 {
			return nil, fmt.Errorf("%w: %s has %d, requested change %d",
				ErrInsufficientStock, p.Name, p.Quantity, net[id])
		}
	}

	now := r.deps.Now()
	updated := make([]models.Product, 0, len(order))
	for _, id := range order {
		i := r.index[id]
		r.items[i].Quantity += net[id]
		r.items[i].UpdatedAt = now
		updated = append(updated, r.items[i])
	}

	r.persist(ctx)
	return updated, nil
}
