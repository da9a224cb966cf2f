package sales

import (
	"fmt"
	"time"

	"ledger-service/internal/models"
	"ledger-service/internal/repository"
)

type SequenceMode string

const (
	// SequenceGlobal counts every sale ever created and never resets.
	SequenceGlobal SequenceMode = "global"
	// SequenceMonthly restarts at 1 each calendar month.
	SequenceMonthly SequenceMode = "monthly"
)

const DefaultInvoicePrefix = "INV"

// Numberer allocates invoice numbers of the form PREFIX-yyyymm-NNNN.
type Numberer struct {
	mode   SequenceMode
	prefix string
}

func NewNumberer(mode SequenceMode, prefix string) (*Numberer, error) {
	switch mode {
	case "":
		mode = SequenceGlobal
	case SequenceGlobal, SequenceMonthly:
	default:
		return nil, fmt.Errorf("%w: unknown invoice sequence %q", repository.ErrInvalidInput, mode)
	}
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}
	return &Numberer{mode: mode, prefix: prefix}, nil
}

func (n *Numberer) Mode() SequenceMode { return n.mode }

// Next derives the following sequence from the sales already recorded,
// cancelled ones included.
func (n *Numberer) Next(existing []models.Sale, at time.Time) (int, string) {
	last := 0
	for _, s := range existing {
		if n.mode == SequenceMonthly && !sameMonth(s.CreatedAt, at) {
			continue
		}
		last = max(last, s.Sequence)
	}

	seq := last + 1
	return seq, FormatInvoiceNumber(n.prefix, at, seq)
}

func FormatInvoiceNumber(prefix string, at time.Time, seq int) string {
	return fmt.Sprintf("%s-%04d%02d-%04d", prefix, at.Year(), int(at.Month()), seq)
}

func sameMonth(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.Month() == b.Month()
}
