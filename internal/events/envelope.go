package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/ride-ledger/internal/models"
)

// Envelope is the wire form of a ledger event: the event name plus the
// event's own fields as the payload.
type Envelope struct {
	Name      string          `json:"name"`
	EmittedAt time.Time       `json:"emitted_at"`
	Payload   json.RawMessage `json:"payload"`
}

func Wrap(ev models.Event) (Envelope, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Name: ev.EventName(), EmittedAt: time.Now().UTC(), Payload: payload}, nil
}

// PartitionKey returns the ride id an event belongs to, so one ride's
// events stay ordered on a single partition.
func PartitionKey(ev models.Event) string {
	switch e := ev.(type) {
	case models.RideCreated:
		return fmt.Sprintf("%d", e.RideID)
	case models.ReservationCreated:
		return fmt.Sprintf("%d", e.RideID)
	case models.ReservationCancelled:
		return fmt.Sprintf("%d", e.RideID)
	case models.RideFinished:
		return fmt.Sprintf("%d", e.RideID)
	case models.RideCancelled:
		return fmt.Sprintf("%d", e.RideID)
	case models.RatingGiven:
		return fmt.Sprintf("%d", e.RideID)
	default:
		return ev.EventName()
	}
}
