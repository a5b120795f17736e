package ledger

import "github.com/example/ride-ledger/internal/models"

// FinishRide settles an Open ride after its date: the entire escrow held
// for the ride moves to the owner in one movement and the ride becomes
// Finished. Reservations are left in place so ratings can still read them.
func (c *Core) FinishRide(rideID models.RideID, caller models.Principal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.rideByID(rideID)
	if err != nil {
		return err
	}
	if caller != r.Owner {
		return ErrNotOwner
	}
	if r.State != models.RideStateOpen {
		return ErrRideNotOpen
	}
	if !c.now().After(r.Date) {
		return ErrTooEarly
	}

	total := int64(c.reservedSeats(rideID)) * r.PricePerSeat
	if err := c.treasury.Release(rideID, r.Owner, total); err != nil {
		return err
	}
	r.State = models.RideStateFinished

	c.emit.Emit(models.RideFinished{RideID: rideID})
	return nil
}

// CancelRide voids an Open ride before its date and refunds every reserver
// in one all-or-nothing batch. If any refund cannot be applied the ride
// stays Open and no funds move.
func (c *Core) CancelRide(rideID models.RideID, caller models.Principal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.rideByID(rideID)
	if err != nil {
		return err
	}
	if caller != r.Owner {
		return ErrNotOwner
	}
	if r.State != models.RideStateOpen {
		return ErrRideNotOpen
	}
	if !c.now().Before(r.Date) {
		return ErrTooLate
	}

	var payouts []Payout
	for k, res := range c.reservations {
		if k.ride != rideID || res.Seats == 0 {
			continue
		}
		payouts = append(payouts, Payout{To: res.Owner, Amount: int64(res.Seats) * r.PricePerSeat})
	}
	if err := c.treasury.ReleaseBatch(rideID, payouts); err != nil {
		return err
	}
	r.State = models.RideStateCancelled

	c.emit.Emit(models.RideCancelled{RideID: rideID})
	return nil
}
