package ledger

import (
	"errors"
	"testing"
)

func TestTreasuryHoldAndRelease(t *testing.T) {
	tr := NewTreasury()
	if err := tr.Hold(1, 30); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if err := tr.Hold(1, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero hold, got %v", err)
	}
	if err := tr.Release(1, "alice", 10); err != nil {
		t.Fatalf("release: %v", err)
	}
	if tr.Escrowed(1) != 20 || tr.Balance("alice") != 10 {
		t.Fatalf("expected escrow 20 balance 10, got %d/%d", tr.Escrowed(1), tr.Balance("alice"))
	}
	if err := tr.Release(1, "alice", 21); !errors.Is(err, ErrInsufficientEscrow) {
		t.Fatalf("expected ErrInsufficientEscrow, got %v", err)
	}
	// failed release moves nothing
	if tr.Escrowed(1) != 20 || tr.Balance("alice") != 10 {
		t.Fatalf("failed release must not move funds")
	}
	// zero release is a valid no-op (empty settlement)
	if err := tr.Release(2, "bob", 0); err != nil {
		t.Fatalf("zero release: %v", err)
	}
}

func TestTreasuryReleaseBatchAllOrNothing(t *testing.T) {
	tr := NewTreasury()
	if err := tr.Hold(7, 25); err != nil {
		t.Fatalf("hold: %v", err)
	}
	err := tr.ReleaseBatch(7, []Payout{
		{To: "alice", Amount: 20},
		{To: "bob", Amount: 10}, // pushes the batch past escrow
	})
	if !errors.Is(err, ErrInsufficientEscrow) {
		t.Fatalf("expected ErrInsufficientEscrow, got %v", err)
	}
	if tr.Balance("alice") != 0 || tr.Balance("bob") != 0 || tr.Escrowed(7) != 25 {
		t.Fatalf("failed batch must credit nobody")
	}

	if err := tr.ReleaseBatch(7, []Payout{{To: "alice", Amount: 20}, {To: "bob", Amount: 5}}); err != nil {
		t.Fatalf("batch: %v", err)
	}
	if tr.Balance("alice") != 20 || tr.Balance("bob") != 5 || tr.Escrowed(7) != 0 {
		t.Fatalf("unexpected post-batch state: %d/%d/%d", tr.Balance("alice"), tr.Balance("bob"), tr.Escrowed(7))
	}
}

func TestTreasuryEscrowIsPerRide(t *testing.T) {
	tr := NewTreasury()
	if err := tr.Hold(1, 10); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if err := tr.Hold(2, 10); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if err := tr.Release(1, "alice", 20); !errors.Is(err, ErrInsufficientEscrow) {
		t.Fatalf("ride 1 must not spend ride 2's escrow, got %v", err)
	}
}
