package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ledger-service/internal/models"
)

type customerRepo struct {
	*collection[models.Customer]
}

func NewCustomerRepository(ctx context.Context, deps Deps) (CustomerRepository, error) {
	c, err := loadCollection(ctx, deps, KeyCustomers,
		func(c models.Customer) uuid.UUID { return c.CustomerID }, nil)
	if err != nil {
		return nil, err
	}
	return &customerRepo{collection: c}, nil
}

func (r *customerRepo) checkUnique(c *models.Customer) error {
	if c.Email != "" {
		if _, ok := r.find(func(o models.Customer) bool {
			return o.CustomerID != c.CustomerID && strings.EqualFold(o.Email, c.Email)
		}); ok {
			return fmt.Errorf("%w: email already exists", ErrDuplicate)
		}
	}
	if c.PhoneNumber != "" {
		if _, ok := r.find(func(o models.Customer) bool {
			return o.CustomerID != c.CustomerID && o.PhoneNumber == c.PhoneNumber
		}); ok {
			return fmt.Errorf("%w: phone_number already exists", ErrDuplicate)
		}
	}
	return nil
}

func (r *customerRepo) Create(ctx context.Context, c *models.Customer) error {
	if c == nil {
		return fmt.Errorf("%w: customer cannot be nil", ErrInvalidInput)
	}
	if err := validateStruct(c); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c.CustomerID = uuid.Nil
	if err := r.checkUnique(c); err != nil {
		return err
	}
	c.CustomerID = r.deps.IDs.New()
	c.CreatedAt = r.deps.Now()

	r.insert(*c)
	r.persist(ctx)
	return nil
}

func (r *customerRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: customer %s", ErrNotFound, id)
	}
	return &c, nil
}

func (r *customerRepo) GetAll(_ context.Context) ([]models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(nil), nil
}

func (r *customerRepo) Update(ctx context.Context, c *models.Customer) error {
	if c == nil || c.CustomerID == uuid.Nil {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}
	if err := validateStruct(c); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.get(c.CustomerID)
	if !ok {
		return fmt.Errorf("%w: customer %s", ErrNotFound, c.CustomerID)
	}
	if err := r.checkUnique(c); err != nil {
		return err
	}
	c.CreatedAt = current.CreatedAt

	r.replace(*c)
	r.persist(ctx)
	return nil
}

func (r *customerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.remove(id) {
		return fmt.Errorf("%w: customer %s", ErrNotFound, id)
	}
	r.persist(ctx)
	return nil
}

func (r *customerRepo) GetByEmail(_ context.Context, email string) (*models.Customer, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email cannot be empty", ErrInvalidInput)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.find(func(c models.Customer) bool { return strings.EqualFold(c.Email, email) })
	if !ok {
		return nil, fmt.Errorf("%w: customer email %s", ErrNotFound, email)
	}
	return &c, nil
}

func (r *customerRepo) GetByPhoneNumber(_ context.Context, phoneNumber string) (*models.Customer, error) {
	if phoneNumber == "" {
		return nil, fmt.Errorf("%w: phone number cannot be empty", ErrInvalidInput)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.find(func(c models.Customer) bool { return c.PhoneNumber == phoneNumber })
	if !ok {
		return nil, fmt.Errorf("%w: customer phone %s", ErrNotFound, phoneNumber)
	}
	return &c, nil
}
