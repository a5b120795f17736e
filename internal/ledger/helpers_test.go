package ledger

import (
	"time"

	"github.com/example/ride-ledger/internal/models"
)

// fakeClock lets tests sit on either side of a ride's departure date.
type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestCore() (*Core, *fakeClock) {
	clk := &fakeClock{t: t0}
	return New(WithClock(clk.Now)), clk
}

// recorder captures emitted events in apply order.
type recorder struct{ events []models.Event }

func (r *recorder) Emit(ev models.Event) { r.events = append(r.events, ev) }

// mustCreateRide makes a ride departing one hour from the clock's now.
func mustCreateRide(c *Core, clk *fakeClock, price int64, seats uint, owner models.Principal) models.RideID {
	id, err := c.CreateRide("A", "B", clk.t.Add(time.Hour), price, seats, owner)
	if err != nil {
		panic(err)
	}
	return id
}
