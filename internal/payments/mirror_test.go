package payments

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
)

type fakeGateway struct {
	next     int
	held     map[string]int64
	captured []string
	released []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{held: make(map[string]int64)}
}

func (f *fakeGateway) OpenHold(ctx context.Context, amount int64, reserver string) (string, error) {
	f.next++
	id := fmt.Sprintf("pi_%d", f.next)
	f.held[id] = amount
	return id, nil
}

func (f *fakeGateway) CapturePayout(ctx context.Context, id string) error {
	f.captured = append(f.captured, id)
	return nil
}

func (f *fakeGateway) ReleaseHold(ctx context.Context, id string) error {
	f.released = append(f.released, id)
	return nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestMirrorSettleCapturesAllHolds(t *testing.T) {
	gw := newFakeGateway()
	m := NewMirror(gw, discard())
	ctx := context.Background()

	m.HoldEscrow(ctx, 1, "alice", 20)
	m.HoldEscrow(ctx, 1, "bob", 10)
	m.HoldEscrow(ctx, 2, "alice", 30)

	m.SettleRide(ctx, 1)
	if len(gw.captured) != 2 {
		t.Fatalf("expected 2 captures, got %d", len(gw.captured))
	}
	// ride 2's hold stays open
	m.VoidRide(ctx, 2)
	if len(gw.released) != 1 {
		t.Fatalf("expected 1 release, got %d", len(gw.released))
	}
}

func TestMirrorRefundReleasesNewestFirst(t *testing.T) {
	gw := newFakeGateway()
	m := NewMirror(gw, discard())
	ctx := context.Background()

	m.HoldEscrow(ctx, 1, "alice", 20)
	m.HoldEscrow(ctx, 1, "alice", 10)

	m.RefundEscrow(ctx, 1, "alice", 10)
	if len(gw.released) != 1 || gw.released[0] != "pi_2" {
		t.Fatalf("expected newest hold released, got %v", gw.released)
	}

	// settlement only captures what is still held
	m.SettleRide(ctx, 1)
	if len(gw.captured) != 1 || gw.captured[0] != "pi_1" {
		t.Fatalf("expected pi_1 captured, got %v", gw.captured)
	}
}
