package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ledger-service/internal/ids"
	"ledger-service/internal/logger"
	"ledger-service/internal/storage"
)

// Blob keys, one per logical store.
const (
	KeyProducts   = "products"
	KeyCategories = "categories"
	KeyCustomers  = "customers"
	KeySuppliers  = "suppliers"
	KeySales      = "sales"
	KeyDebts      = "debts"
	KeyMovements  = "movements"
	KeySettings   = "settings"
)

// Deps are the collaborators shared by all repositories.
type Deps struct {
	Store storage.Store
	IDs   ids.Generator
	Now   func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.IDs == nil {
		d.IDs = ids.Random{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// collection is an insertion-ordered in-memory list persisted whole under one
// key after every mutation. Write failures are logged and remembered; the
// in-memory state stays authoritative.
type collection[T any] struct {
	mu    sync.RWMutex
	deps  Deps
	key   string
	idOf  func(T) uuid.UUID
	clone func(T) T
	items []T
	index map[uuid.UUID]int
	log   zerolog.Logger

	persistErr error
}

func loadCollection[T any](ctx context.Context, deps Deps, key string, idOf func(T) uuid.UUID, clone func(T) T) (*collection[T], error) {
	deps = deps.withDefaults()
	if clone == nil {
		clone = func(v T) T { return v }
	}

	c := &collection[T]{
		deps:  deps,
		key:   key,
		idOf:  idOf,
		clone: clone,
		index: make(map[uuid.UUID]int),
		log:   logger.WithComponent("repository").With().Str("store", key).Logger(),
	}

	data, err := deps.Store.Get(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return c, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}

	if err := json.Unmarshal(data, &c.items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	for i, item := range c.items {
		c.index[idOf(item)] = i
	}

	c.log.Debug().Int("count", len(c.items)).Msg("store loaded")
	return c, nil
}

// get returns a copy of the item with the given id. Callers hold a lock.
func (c *collection[T]) get(id uuid.UUID) (T, bool) {
	i, ok := c.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return c.clone(c.items[i]), true
}

// filter returns copies of matching items in insertion order. Callers hold a lock.
func (c *collection[T]) filter(keep func(T) bool) []T {
	out := make([]T, 0)
	for _, item := range c.items {
		if keep == nil || keep(item) {
			out = append(out, c.clone(item))
		}
	}
	return out
}

func (c *collection[T]) find(match func(T) bool) (T, bool) {
	for _, item := range c.items {
		if match(item) {
			return c.clone(item), true
		}
	}
	var zero T
	return zero, false
}

func (c *collection[T]) insert(item T) {
	c.index[c.idOf(item)] = len(c.items)
	c.items = append(c.items, c.clone(item))
}

func (c *collection[T]) replace(item T) bool {
	i, ok := c.index[c.idOf(item)]
	if !ok {
		return false
	}
	c.items[i] = c.clone(item)
	return true
}

func (c *collection[T]) remove(id uuid.UUID) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.items); j++ {
		c.index[c.idOf(c.items[j])] = j
	}
	return true
}

func (c *collection[T]) write(ctx context.Context) error {
	data, err := json.Marshal(c.items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.key, err)
	}
	if err := c.deps.Store.Put(ctx, c.key, data); err != nil {
		return err
	}
	return nil
}

// persist writes the collection after a mutation. Callers hold the write lock.
func (c *collection[T]) persist(ctx context.Context) {
	if err := c.write(ctx); err != nil {
		c.persistErr = err
		c.log.Warn().Err(err).Msg("failed to persist store, keeping in-memory state")
		return
	}
	c.persistErr = nil
}

func (c *collection[T]) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.write(ctx)
	c.persistErr = err
	return err
}

func (c *collection[T]) PersistError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.persistErr
}
