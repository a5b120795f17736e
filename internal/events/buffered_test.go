package events

import (
	"testing"
	"time"

	"github.com/example/ride-ledger/internal/models"
)

type gateSink struct {
	gate chan struct{}
	seen []models.Event
}

func (g *gateSink) Emit(ev models.Event) {
	<-g.gate
	g.seen = append(g.seen, ev)
}

func TestBufferedEmitDoesNotWaitOnSink(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	b := NewBuffered(sink, 4)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 4; i++ {
			b.Emit(models.RideCreated{RideID: models.RideID(i)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emit blocked on a stalled sink")
	}

	close(sink.gate)
	b.Close()
	if len(sink.seen) != 4 {
		t.Fatalf("expected 4 delivered events, got %d", len(sink.seen))
	}
	for i, ev := range sink.seen {
		created, ok := ev.(models.RideCreated)
		if !ok || created.RideID != models.RideID(i) {
			t.Fatalf("event %d out of order: %#v", i, ev)
		}
	}
}

func TestBufferedCloseDrains(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	close(sink.gate)
	b := NewBuffered(sink, 1)

	for i := 0; i < 10; i++ {
		b.Emit(models.RatingGiven{RideID: 3, Rater: "alice", Stars: 5})
	}
	b.Close()
	b.Close() // idempotent
	if len(sink.seen) != 10 {
		t.Fatalf("expected all 10 events drained on close, got %d", len(sink.seen))
	}
}
