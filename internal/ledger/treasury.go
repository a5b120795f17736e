package ledger

import "github.com/example/ride-ledger/internal/models"

// Payout is one leg of a multi-party escrow release.
type Payout struct {
	To     models.Principal
	Amount int64
}

// Treasury is the escrow ledger. Funds enter per-ride escrow via Hold and
// leave only through Release/ReleaseBatch, which credit a principal's
// claimable balance. Seat accounting and escrow are mutated in lockstep by
// the Core, so escrow for a ride always equals reservedSeats x price
// between operations. The Treasury is guarded by the Core's operation lock.
type Treasury struct {
	escrow   map[models.RideID]int64
	balances map[models.Principal]int64
}

func NewTreasury() *Treasury {
	return &Treasury{
		escrow:   make(map[models.RideID]int64),
		balances: make(map[models.Principal]int64),
	}
}

// Hold moves funds into a ride's escrow.
func (t *Treasury) Hold(ride models.RideID, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	t.escrow[ride] += amount
	return nil
}

// Release moves amount out of a ride's escrow into a principal's balance.
// A zero amount is a valid no-op: settling a ride with no reservations
// releases nothing.
func (t *Treasury) Release(ride models.RideID, to models.Principal, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if amount > t.escrow[ride] {
		return ErrInsufficientEscrow
	}
	t.escrow[ride] -= amount
	t.balances[to] += amount
	return nil
}

// ReleaseBatch releases to every payee or to none: the whole batch is
// validated against the ride's escrow before any balance is credited.
func (t *Treasury) ReleaseBatch(ride models.RideID, payouts []Payout) error {
	var total int64
	for _, p := range payouts {
		if p.Amount < 0 {
			return ErrInvalidAmount
		}
		total += p.Amount
	}
	if total > t.escrow[ride] {
		return ErrInsufficientEscrow
	}
	for _, p := range payouts {
		t.balances[p.To] += p.Amount
	}
	t.escrow[ride] -= total
	return nil
}

func (t *Treasury) Escrowed(ride models.RideID) int64 {
	return t.escrow[ride]
}

func (t *Treasury) Balance(p models.Principal) int64 {
	return t.balances[p]
}
