// Package auth checks credentials, issues session tokens and decides what
// each role may do.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"ledger-service/internal/ids"
	"ledger-service/internal/logger"
	"ledger-service/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("forbidden")
)

// Directory holds the known users with bcrypt password hashes only.
type Directory struct {
	mu    sync.RWMutex
	users map[string]models.User
	cost  int
	ids   ids.Generator
	log   zerolog.Logger
}

func NewDirectory(gen ids.Generator, cost int) *Directory {
	if gen == nil {
		gen = ids.Random{}
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Directory{
		users: make(map[string]models.User),
		cost:  cost,
		ids:   gen,
		log:   logger.WithComponent("auth"),
	}
}

// Add registers a user. The plain password is hashed and then dropped.
func (d *Directory) Add(username, password string, role models.Role) (models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return models.User{}, errors.New("username and password are required")
	}
	switch role {
	case models.RoleAdmin, models.RoleManager, models.RoleSeller:
	default:
		return models.User{}, fmt.Errorf("unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password for %s: %w", username, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.users[username]; exists {
		return models.User{}, fmt.Errorf("user %s already exists", username)
	}

	u := models.User{
		UserID:       d.ids.New(),
		Username:     username,
		Role:         role,
		PasswordHash: string(hash),
	}
	d.users[username] = u
	return u, nil
}

// SeedPasswords are the configured passwords of the three built-in users.
type SeedPasswords struct {
	Admin   string
	Seller  string
	Manager string
}

// Seed adds the admin, seller and manager accounts. Empty passwords fall
// back to development defaults with a warning.
func (d *Directory) Seed(p SeedPasswords) error {
	for _, u := range []struct {
		name     string
		password string
		role     models.Role
	}{
		{"admin", p.Admin, models.RoleAdmin},
		{"seller", p.Seller, models.RoleSeller},
		{"manager", p.Manager, models.RoleManager},
	} {
		if u.password == "" {
			u.password = u.name + "123"
			d.log.Warn().Str("username", u.name).Msg("using default development password")
		}
		if _, err := d.Add(u.name, u.password, u.role); err != nil {
			return err
		}
	}
	return nil
}

// Authenticate returns the user if the password matches.
func (d *Directory) Authenticate(_ context.Context, username, password string) (models.User, error) {
	d.mu.RLock()
	u, ok := d.users[strings.ToLower(strings.TrimSpace(username))]
	d.mu.RUnlock()

	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		d.log.Debug().Str("username", u.Username).Msg("password mismatch")
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (d *Directory) Users() []models.User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]models.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}
