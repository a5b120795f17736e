package events

import (
	"sync"

	"github.com/example/ride-ledger/internal/models"
)

// Buffered decouples event delivery from the ledger lock. Emit enqueues
// onto a bounded channel and a single goroutine drains it to the wrapped
// sink, so apply order is preserved and a slow sink never stalls the
// operation that emitted. A full buffer blocks the caller rather than
// dropping events.
type Buffered struct {
	ch   chan models.Event
	sink Sink
	done chan struct{}
	once sync.Once
}

func NewBuffered(sink Sink, size int) *Buffered {
	b := &Buffered{
		ch:   make(chan models.Event, size),
		sink: sink,
		done: make(chan struct{}),
	}
	go b.drain()
	return b
}

func (b *Buffered) Emit(ev models.Event) {
	b.ch <- ev
}

func (b *Buffered) drain() {
	for ev := range b.ch {
		b.sink.Emit(ev)
	}
	close(b.done)
}

// Close stops intake and waits until every buffered event reached the sink.
func (b *Buffered) Close() {
	b.once.Do(func() { close(b.ch) })
	<-b.done
}
