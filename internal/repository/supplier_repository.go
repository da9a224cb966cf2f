package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ledger-service/internal/models"
)

type supplierRepo struct {
	*collection[models.Supplier]
}

func NewSupplierRepository(ctx context.Context, deps Deps) (SupplierRepository, error) {
	c, err := loadCollection(ctx, deps, KeySuppliers,
		func(s models.Supplier) uuid.UUID { return s.SupplierID }, nil)
	if err != nil {
		return nil, err
	}
	return &supplierRepo{collection: c}, nil
}

func (r *supplierRepo) Create(ctx context.Context, s *models.Supplier) error {
	if s == nil {
		return fmt.Errorf("%w: supplier cannot be nil", ErrInvalidInput)
	}
	if err := validateStruct(s); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.find(func(o models.Supplier) bool { return strings.EqualFold(o.Name, s.Name) }); ok {
		return fmt.Errorf("%w: supplier %s already exists", ErrDuplicate, s.Name)
	}
	s.SupplierID = r.deps.IDs.New()
	s.CreatedAt = r.deps.Now()

	r.insert(*s)
	r.persist(ctx)
	return nil
}

func (r *supplierRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: supplier %s", ErrNotFound, id)
	}
	return &s, nil
}

func (r *supplierRepo) GetByName(_ context.Context, name string) (*models.Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.find(func(s models.Supplier) bool { return strings.EqualFold(s.Name, name) })
	if !ok {
		return nil, fmt.Errorf("%w: supplier %s", ErrNotFound, name)
	}
	return &s, nil
}

func (r *supplierRepo) GetAll(_ context.Context) ([]models.Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(nil), nil
}

func (r *supplierRepo) Update(ctx context.Context, s *models.Supplier) error {
	if s == nil {
		return fmt.Errorf("%w: supplier cannot be nil", ErrInvalidInput)
	}
	if err := validateStruct(s); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.get(s.SupplierID)
	if !ok {
		return fmt.Errorf("%w: supplier %s", ErrNotFound, s.SupplierID)
	}
	s.CreatedAt = current.CreatedAt

	r.replace(*s)
	r.persist(ctx)
	return nil
}

func (r *supplierRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.remove(id) {
		return fmt.Errorf("%w: supplier %s", ErrNotFound, id)
	}
	r.persist(ctx)
	return nil
}
