// Package ids mints the identifiers used by every ledger entity.
package ids

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

// Generator hands out new unique identifiers.
type Generator interface {
	New() uuid.UUID
}

// Random produces version 4 UUIDs.
type Random struct{}

func (Random) New() uuid.UUID {
	return uuid.New()
}

// Sequence produces deterministic, strictly increasing UUIDs. Useful in tests
// where ids must be stable between runs.
type Sequence struct {
	mu   sync.Mutex
	next uint64
}

func NewSequence() *Sequence {
	return &Sequence{next: 1}
}

func (s *Sequence) New() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id uuid.UUID
	binary.BigEndian.PutUint64(id[8:], s.next)
	s.next++
	return id
}
