// Package storage persists the ledger's logical stores as whole blobs under
// fixed keys. Every driver offers the same tiny key-value contract.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when nothing was ever stored under a key.
var ErrNotFound = errors.New("blob not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}
