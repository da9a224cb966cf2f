package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ledger-service/internal/models"
)

type categoryRepo struct {
	*collection[models.Category]
}

func NewCategoryRepository(ctx context.Context, deps Deps) (CategoryRepository, error) {
	c, err := loadCollection(ctx, deps, KeyCategories,
		func(c models.Category) uuid.UUID { return c.CategoryID }, nil)
	if err != nil {
		return nil, err
	}
	return &categoryRepo{collection: c}, nil
}

func (r *categoryRepo) nameTaken(name string, except uuid.UUID) bool {
	_, ok := r.find(func(c models.Category) bool {
		return c.CategoryID != except && strings.EqualFold(c.Name, name)
	})
	return ok
}

func (r *categoryRepo) Create(ctx context.Context, c *models.Category) error {
	if c == nil {
		return fmt.Errorf("%w: category cannot be nil", ErrInvalidInput)
	}
	if err := validateStruct(c); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(c.Name, uuid.Nil) {
		return fmt.Errorf("%w: category %s already exists", ErrDuplicate, c.Name)
	}
	c.CategoryID = r.deps.IDs.New()

	r.insert(*c)
	r.persist(ctx)
	return nil
}

func (r *categoryRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: category %s", ErrNotFound, id)
	}
	return &c, nil
}

func (r *categoryRepo) GetByName(_ context.Context, name string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.find(func(c models.Category) bool { return strings.EqualFold(c.Name, name) })
	if !ok {
		return nil, fmt.Errorf("%w: category %s", ErrNotFound, name)
	}
	return &c, nil
}

func (r *categoryRepo) GetAll(_ context.Context) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(nil), nil
}

func (r *categoryRepo) Update(ctx context.Context, c *models.Category) error {
	if c == nil {
		return fmt.Errorf("%w: category cannot be nil", ErrInvalidInput)
	}
	if err := validateStruct(c); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(c.Name, c.CategoryID) {
		return fmt.Errorf("%w: category %s already exists", ErrDuplicate, c.Name)
	}
	if !r.replace(*c) {
		return fmt.Errorf("%w: category %s", ErrNotFound, c.CategoryID)
	}
	r.persist(ctx)
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.remove(id) {
		return fmt.Errorf("%w: category %s", ErrNotFound, id)
	}
	r.persist(ctx)
	return nil
}
