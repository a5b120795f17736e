package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/ride-ledger/internal/models"
)

// JournalSink adapts an EventJournal to the event fanout. Appends are
// best-effort: the ledger committed before the event was emitted, so a
// journal failure is logged and the event stays visible on the other sinks.
type JournalSink struct {
	Journal EventJournal
	Logger  *slog.Logger
}

func (s *JournalSink) Emit(ev models.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Journal.Append(ctx, ev); err != nil {
		s.Logger.Error("journal append failed", "event", ev.EventName(), "error", err)
	}
}
