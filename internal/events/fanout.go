package events

import "github.com/example/ride-ledger/internal/models"

// Sink receives each committed ledger event.
type Sink interface {
	Emit(ev models.Event)
}

// Fanout delivers every event to each sink in order.
type Fanout []Sink

func (f Fanout) Emit(ev models.Event) {
	for _, s := range f {
		s.Emit(ev)
	}
}
