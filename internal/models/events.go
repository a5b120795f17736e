package models

import "time"

// Event is a structured record emitted by exactly one mutating ledger
// operation. Events are append-only and never retracted.
type Event interface {
	EventName() string
}

type RideCreated struct {
	RideID       RideID    `json:"ride_id"`
	Owner        Principal `json:"owner"`
	StartPlace   string    `json:"start_place"`
	Destination  string    `json:"destination"`
	Date         time.Time `json:"date"`
	PricePerSeat int64     `json:"price_per_seat"`
	TotalSeats   uint      `json:"total_seats"`
}

type ReservationCreated struct {
	RideID   RideID    `json:"ride_id"`
	Reserver Principal `json:"reserver"`
	Seats    uint      `json:"seats"`
}

type ReservationCancelled struct {
	RideID   RideID    `json:"ride_id"`
	Reserver Principal `json:"reserver"`
	Seats    uint      `json:"seats"`
}

type RideFinished struct {
	RideID RideID `json:"ride_id"`
}

type RideCancelled struct {
	RideID RideID `json:"ride_id"`
}

type RatingGiven struct {
	RideID RideID    `json:"ride_id"`
	Rater  Principal `json:"rater"`
	Stars  int       `json:"stars"`
}

func (RideCreated) EventName() string          { return "RideCreated" }
func (ReservationCreated) EventName() string   { return "ReservationCreated" }
func (ReservationCancelled) EventName() string { return "ReservationCancelled" }
func (RideFinished) EventName() string         { return "RideFinished" }
func (RideCancelled) EventName() string        { return "RideCancelled" }
func (RatingGiven) EventName() string          { return "RatingGiven" }
