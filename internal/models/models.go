package models

import "time"

// Principal is an opaque identity supplied by the caller-facing layer.
// The ledger never authenticates it, only compares it for equality.
type Principal string

type RideID uint64

type RideState string

const (
	RideStateOpen      RideState = "open"
	RideStateFinished  RideState = "finished"
	RideStateCancelled RideState = "cancelled"
)

// Ride is an offer of transportation with a fixed seat inventory.
// Amounts are in the smallest currency unit.
type Ride struct {
	ID           RideID    `json:"id"`
	Owner        Principal `json:"owner"`
	StartPlace   string    `json:"start_place"`
	Destination  string    `json:"destination"`
	Date         time.Time `json:"date"`
	PricePerSeat int64     `json:"price_per_seat"`
	TotalSeats   uint      `json:"total_seats"`
	State        RideState `json:"state"`
}

// Reservation is a claim on some of a ride's seats by one principal.
// A reservation with Seats == 0 is treated as absent everywhere.
type Reservation struct {
	RideID RideID    `json:"ride_id"`
	Owner  Principal `json:"owner"`
	Seats  uint      `json:"seats"`
	Rated  bool      `json:"rated"`
}
