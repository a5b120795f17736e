package ledger

import "github.com/example/ride-ledger/internal/models"

// ReserveSeats claims numSeats on a ride and moves the exact payment into
// escrow. Repeat reservations by the same caller accumulate into one
// record per (ride, principal).
func (c *Core) ReserveSeats(rideID models.RideID, numSeats uint, payment int64, caller models.Principal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.rideByID(rideID)
	if err != nil {
		return err
	}
	if r.State != models.RideStateOpen || !c.now().Before(r.Date) {
		return ErrRideNotOpen
	}
	if numSeats == 0 {
		return ErrInvalidAmount
	}
	if payment != int64(numSeats)*r.PricePerSeat {
		return ErrPaymentMismatch
	}
	if c.reservedSeats(rideID)+numSeats > r.TotalSeats {
		return ErrInsufficientSeats
	}

	if err := c.treasury.Hold(rideID, payment); err != nil {
		return err
	}
	key := resKey{rideID, caller}
	res, ok := c.reservations[key]
	if !ok {
		res = &models.Reservation{RideID: rideID, Owner: caller}
		c.reservations[key] = res
	}
	res.Seats += numSeats

	c.emit.Emit(models.ReservationCreated{RideID: rideID, Reserver: caller, Seats: numSeats})
	return nil
}

// CancelReservation gives back numSeats and refunds the matching escrow to
// the caller in the same operation. Seat count and escrow never diverge.
func (c *Core) CancelReservation(rideID models.RideID, numSeats uint, caller models.Principal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.rideByID(rideID)
	if err != nil {
		return err
	}
	if r.State != models.RideStateOpen || !c.now().Before(r.Date) {
		return ErrRideNotOpen
	}
	res, ok := c.reservations[resKey{rideID, caller}]
	if !ok || res.Seats == 0 {
		return ErrNoSuchReservation
	}
	if numSeats == 0 || numSeats > res.Seats {
		return ErrInvalidAmount
	}

	refund := int64(numSeats) * r.PricePerSeat
	if err := c.treasury.Release(rideID, caller, refund); err != nil {
		return err
	}
	res.Seats -= numSeats

	c.emit.Emit(models.ReservationCancelled{RideID: rideID, Reserver: caller, Seats: numSeats})
	return nil
}
