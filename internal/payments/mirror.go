package payments

import (
	"context"
	"log/slog"
	"sync"

	"github.com/example/ride-ledger/internal/models"
)

// Gateway is the slice of the payment processor the mirror needs.
type Gateway interface {
	OpenHold(ctx context.Context, amount int64, reserver string) (string, error)
	CapturePayout(ctx context.Context, holdID string) error
	ReleaseHold(ctx context.Context, holdID string) error
}

type holdKey struct {
	ride     models.RideID
	reserver models.Principal
}

type hold struct {
	id     string
	amount int64
}

// Mirror shadows ledger escrow custody on the payment processor: one
// manual-capture hold per reserve call, captured when the ride settles to
// its owner, cancelled when escrow refunds. The mirror is best-effort and
// off the critical path; the ledger's own accounting is authoritative.
type Mirror struct {
	gw     Gateway
	logger *slog.Logger

	mu    sync.Mutex
	holds map[holdKey][]hold
}

func NewMirror(gw Gateway, logger *slog.Logger) *Mirror {
	return &Mirror{gw: gw, logger: logger, holds: make(map[holdKey][]hold)}
}

// HoldEscrow opens a processor hold matching a successful ReserveSeats.
func (m *Mirror) HoldEscrow(ctx context.Context, ride models.RideID, reserver models.Principal, amount int64) {
	id, err := m.gw.OpenHold(ctx, amount, string(reserver))
	if err != nil {
		m.logger.Warn("processor hold failed", "ride", ride, "reserver", reserver, "error", err)
		return
	}
	k := holdKey{ride, reserver}
	m.mu.Lock()
	m.holds[k] = append(m.holds[k], hold{id: id, amount: amount})
	m.mu.Unlock()
}

// RefundEscrow cancels processor holds for a reserver until the refunded
// amount is covered. Holds are cancelled whole, newest first.
func (m *Mirror) RefundEscrow(ctx context.Context, ride models.RideID, reserver models.Principal, amount int64) {
	k := holdKey{ride, reserver}
	m.mu.Lock()
	hs := m.holds[k]
	var drop []hold
	for amount > 0 && len(hs) > 0 {
		h := hs[len(hs)-1]
		hs = hs[:len(hs)-1]
		drop = append(drop, h)
		amount -= h.amount
	}
	m.holds[k] = hs
	m.mu.Unlock()

	for _, h := range drop {
		if err := m.gw.ReleaseHold(ctx, h.id); err != nil {
			m.logger.Warn("processor release failed", "hold", h.id, "error", err)
		}
	}
}

// SettleRide captures every open hold on a ride (owner payout).
func (m *Mirror) SettleRide(ctx context.Context, ride models.RideID) {
	m.forRide(ride, func(h hold) {
		if err := m.gw.CapturePayout(ctx, h.id); err != nil {
			m.logger.Warn("processor capture failed", "hold", h.id, "error", err)
		}
	})
}

// VoidRide releases every open hold on a ride (batch refund).
func (m *Mirror) VoidRide(ctx context.Context, ride models.RideID) {
	m.forRide(ride, func(h hold) {
		if err := m.gw.ReleaseHold(ctx, h.id); err != nil {
			m.logger.Warn("processor release failed", "hold", h.id, "error", err)
		}
	})
}

func (m *Mirror) forRide(ride models.RideID, fn func(hold)) {
	m.mu.Lock()
	var all []hold
	for k, hs := range m.holds {
		if k.ride != ride {
			continue
		}
		all = append(all, hs...)
		delete(m.holds, k)
	}
	m.mu.Unlock()
	for _, h := range all {
		fn(h)
	}
}
