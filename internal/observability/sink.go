package observability

import "github.com/example/ride-ledger/internal/models"

// MetricsSink turns the ledger event stream into prometheus counters.
type MetricsSink struct{}

func (MetricsSink) Emit(ev models.Event) {
	switch e := ev.(type) {
	case models.RideCreated:
		RidesCreatedTotal.Inc()
	case models.ReservationCreated:
		SeatsReservedTotal.Add(float64(e.Seats))
	case models.ReservationCancelled:
		SeatsReleasedTotal.Add(float64(e.Seats))
	case models.RideFinished:
		SettlementsTotal.WithLabelValues("finished").Inc()
	case models.RideCancelled:
		SettlementsTotal.WithLabelValues("cancelled").Inc()
	case models.RatingGiven:
		RatingsTotal.Inc()
	}
}
