package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"ledger-service/internal/logger"
	"ledger-service/internal/models"
	"ledger-service/internal/storage"
)

type settingsRepo struct {
	mu         sync.RWMutex
	store      storage.Store
	settings   models.Settings
	log        zerolog.Logger
	persistErr error
}

// NewSettingsRepository loads stored settings, falling back to defaults when
// none were saved yet.
func NewSettingsRepository(ctx context.Context, deps Deps, defaults models.Settings) (SettingsRepository, error) {
	r := &settingsRepo{
		store:    deps.Store,
		settings: defaults,
		log:      logger.WithComponent("repository").With().Str("store", KeySettings).Logger(),
	}

	data, err := deps.Store.Get(ctx, KeySettings)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return r, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := json.Unmarshal(data, &r.settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return r, nil
}

func (r *settingsRepo) Get(_ context.Context) (models.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings, nil
}

func (r *settingsRepo) Update(ctx context.Context, s models.Settings) error {
	if strings.TrimSpace(s.StoreName) == "" {
		return fmt.Errorf("%w: store name is required", ErrInvalidInput)
	}
	if s.VATRate.IsNegative() {
		return fmt.Errorf("%w: VAT rate cannot be negative", ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings = s
	if err := r.write(ctx); err != nil {
		r.persistErr = err
		r.log.Warn().Err(err).Msg("failed to persist settings, keeping in-memory state")
		return nil
	}
	r.persistErr = nil
	return nil
}

func (r *settingsRepo) write(ctx context.Context) error {
	data, err := json.Marshal(r.settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return r.store.Put(ctx, KeySettings, data)
}

func (r *settingsRepo) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.write(ctx)
	r.persistErr = err
	return err
}

func (r *settingsRepo) PersistError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.persistErr
}
