package ledger

import "errors"

// Every operation fails with one of these sentinels and leaves all ledger
// state unchanged. Callers match with errors.Is; retry is their problem.
var (
	ErrNotFound           = errors.New("ride not found")
	ErrInvalidParameters  = errors.New("invalid ride parameters")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidStars       = errors.New("stars must be between 1 and 5")
	ErrRideNotOpen        = errors.New("ride is not open")
	ErrRideNotFinished    = errors.New("ride is not finished")
	ErrNotOwner           = errors.New("caller is not the ride owner")
	ErrTooEarly           = errors.New("ride date has not passed yet")
	ErrTooLate            = errors.New("ride date has already passed")
	ErrInsufficientSeats  = errors.New("not enough seats left")
	ErrPaymentMismatch    = errors.New("payment does not match seat price")
	ErrNoSuchReservation  = errors.New("no reservation for caller")
	ErrAlreadyRated       = errors.New("reservation already rated")
	ErrNoRatings          = errors.New("no ratings recorded")
	ErrInsufficientEscrow = errors.New("release exceeds escrowed funds")
)
