package ledger

import (
	"sync"
	"time"

	"github.com/example/ride-ledger/internal/models"
)

// Emitter receives the single structured event each mutating operation
// commits. Emit is called under the operation lock so events arrive in
// apply order; implementations must return quickly and never call back
// into the Core. Slow sinks belong behind events.Buffered.
type Emitter interface {
	Emit(ev models.Event)
}

type nopEmitter struct{}

func (nopEmitter) Emit(models.Event) {}

type resKey struct {
	ride  models.RideID
	owner models.Principal
}

// Core holds the whole marketplace ledger: the ride table, the reservation
// map keyed by (ride, principal), the rating book, and the escrow treasury.
// One mutex serializes every operation; each call is read-validate-mutate
// under the lock and either fully commits or fully aborts.
type Core struct {
	mu           sync.Mutex
	rides        []*models.Ride
	reservations map[resKey]*models.Reservation
	ratings      map[models.Principal][]int
	treasury     *Treasury
	emit         Emitter
	now          func() time.Time
}

type Option func(*Core)

func WithEmitter(e Emitter) Option {
	return func(c *Core) { c.emit = e }
}

// WithClock overrides the time source. Tests use this to sit on either
// side of a ride's departure date.
func WithClock(now func() time.Time) Option {
	return func(c *Core) { c.now = now }
}

func New(opts ...Option) *Core {
	c := &Core{
		reservations: make(map[resKey]*models.Reservation),
		ratings:      make(map[models.Principal][]int),
		treasury:     NewTreasury(),
		emit:         nopEmitter{},
		now:          time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Core) rideByID(id models.RideID) (*models.Ride, error) {
	// compare in RideID space: converting a huge id to int would go
	// negative and sail past the bounds check
	if id >= models.RideID(len(c.rides)) {
		return nil, ErrNotFound
	}
	return c.rides[id], nil
}

// reservedSeats sums seats across all reservations on a ride. Zero-seat
// records are naturally inventory-neutral.
func (c *Core) reservedSeats(id models.RideID) uint {
	var total uint
	for k, res := range c.reservations {
		if k.ride == id {
			total += res.Seats
		}
	}
	return total
}

// Escrowed reports the funds currently held for a ride.
func (c *Core) Escrowed(id models.RideID) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.treasury.Escrowed(id)
}

// Balance reports a principal's claimable balance from payouts and refunds.
func (c *Core) Balance(p models.Principal) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.treasury.Balance(p)
}

// Reservation returns a copy of the caller's reservation on a ride.
func (c *Core) Reservation(id models.RideID, owner models.Principal) (models.Reservation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.reservations[resKey{id, owner}]
	if !ok || res.Seats == 0 {
		return models.Reservation{}, false
	}
	return *res, true
}
