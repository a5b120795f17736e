package ledger

import "github.com/example/ride-ledger/internal/models"

// GiveRating records one 1..5 star rating for the owner of a Finished ride
// the caller held a reservation on. One rating per (ride, caller), no
// matter how many seats were reserved.
func (c *Core) GiveRating(rideID models.RideID, stars int, caller models.Principal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.rideByID(rideID)
	if err != nil {
		return err
	}
	if r.State != models.RideStateFinished {
		return ErrRideNotFinished
	}
	if stars < 1 || stars > 5 {
		return ErrInvalidStars
	}
	res, ok := c.reservations[resKey{rideID, caller}]
	if !ok || res.Seats == 0 {
		return ErrNoSuchReservation
	}
	if res.Rated {
		return ErrAlreadyRated
	}

	res.Rated = true
	c.ratings[r.Owner] = append(c.ratings[r.Owner], stars)

	c.emit.Emit(models.RatingGiven{RideID: rideID, Rater: caller, Stars: stars})
	return nil
}

// AverageRating returns a principal's average stars scaled by 100
// (4.5 stars -> 450). An empty rating list is an error, never a zero.
func (c *Core) AverageRating(p models.Principal) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.ratings[p]
	if len(list) == 0 {
		return 0, ErrNoRatings
	}
	var sum int64
	for _, s := range list {
		sum += int64(s)
	}
	return sum * 100 / int64(len(list)), nil
}
