package storage

import (
	"context"
	"sync"

	"github.com/example/ride-ledger/internal/events"
	"github.com/example/ride-ledger/internal/models"
)

// EventJournal is an append-only record of committed ledger events,
// consumed by external indexers and audit. The core never reads it back.
type EventJournal interface {
	Append(ctx context.Context, ev models.Event) error
}

type MemoryJournal struct {
	mu      sync.Mutex
	entries []events.Envelope
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (m *MemoryJournal) Append(ctx context.Context, ev models.Event) error {
	env, err := events.Wrap(ev)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, env)
	return nil
}

// Entries returns a snapshot of the journal in append order.
func (m *MemoryJournal) Entries() []events.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.Envelope, len(m.entries))
	copy(out, m.entries)
	return out
}
