package ledger

import (
	"time"

	"github.com/example/ride-ledger/internal/models"
)

// CreateRide appends a new Open ride owned by the caller and returns its
// id. Ids are sequential, 0-based, and never reused.
func (c *Core) CreateRide(startPlace, destination string, date time.Time, pricePerSeat int64, totalSeats uint, caller models.Principal) (models.RideID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !date.After(c.now()) || pricePerSeat <= 0 || totalSeats == 0 {
		return 0, ErrInvalidParameters
	}

	id := models.RideID(len(c.rides))
	r := &models.Ride{
		ID:           id,
		Owner:        caller,
		StartPlace:   startPlace,
		Destination:  destination,
		Date:         date,
		PricePerSeat: pricePerSeat,
		TotalSeats:   totalSeats,
		State:        models.RideStateOpen,
	}
	c.rides = append(c.rides, r)

	c.emit.Emit(models.RideCreated{
		RideID:       id,
		Owner:        caller,
		StartPlace:   startPlace,
		Destination:  destination,
		Date:         date,
		PricePerSeat: pricePerSeat,
		TotalSeats:   totalSeats,
	})
	return id, nil
}

// GetRide returns a copy of the ride record.
func (c *Core) GetRide(id models.RideID) (models.Ride, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, err := c.rideByID(id)
	if err != nil {
		return models.Ride{}, err
	}
	return *r, nil
}

// ListRides returns all rides in creation order.
func (c *Core) ListRides() []models.Ride {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Ride, 0, len(c.rides))
	for _, r := range c.rides {
		out = append(out, *r)
	}
	return out
}
