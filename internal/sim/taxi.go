package sim

import (
	"math/rand"

	"github.com/Garsondee/Heli-Taxi/internal/config"
	"github.com/Garsondee/Heli-Taxi/internal/heli"
	"github.com/rs/zerolog"
)

// padHeight is how far above a portal the helicopter centre may be while
// still counting as parked on it.
const padHeight = 1.5

// Portal is a named landing pad. Pos is the centre of the pad surface.
type Portal struct {
	Name string
	Pos  heli.Vec2
}

// PassengerState tracks one fare.
type PassengerState int

const (
	PassengerWaiting PassengerState = iota
	PassengerRiding
)

func (ps PassengerState) String() string {
	if ps == PassengerRiding {
		return "riding"
	}
	return "waiting"
}

// Passenger is the current fare.
type Passenger struct {
	ID    int
	From  int // portal index
	To    int // portal index
	State PassengerState
}

// TaxiEventKind names what happened to a fare.
type TaxiEventKind string

const (
	TaxiSpawned   TaxiEventKind = "spawned"
	TaxiBoarded   TaxiEventKind = "boarded"
	TaxiDelivered TaxiEventKind = "delivered"
	TaxiLost      TaxiEventKind = "lost"
)

// TaxiEvent is returned by Update for logging.
type TaxiEvent struct {
	Kind      TaxiEventKind
	Passenger int
	Portal    string
	Fare      float64
}

// Taxi runs the pickup/delivery loop: one passenger at a time waits at a
// random portal for a ride to a different one.
type Taxi struct {
	cfg     config.Taxi
	portals []Portal
	rng     *rand.Rand
	log     zerolog.Logger

	current   *Passenger
	onPad     float64 // seconds parked on the relevant pad
	nextID    int
	delivered int
	earnings  float64
}

// NewTaxi builds the fare loop over portals. Fewer than two portals means
// no passengers ever spawn.
func NewTaxi(cfg config.Taxi, portals []Portal, rng *rand.Rand, log zerolog.Logger) *Taxi {
	return &Taxi{cfg: cfg, portals: portals, rng: rng, log: log}
}

func (t *Taxi) Portals() []Portal { return t.portals }
func (t *Taxi) Delivered() int { return t.delivered }
func (t *Taxi) Earnings() float64 { return t.earnings }

// Passenger returns the current fare, or nil.
func (t *Taxi) Passenger() *Passenger { return t.current }

// BoardingProgress is the fraction of the boarding time spent parked.
func (t *Taxi) BoardingProgress() float64 {
	if t.cfg.BoardingTime <= 0 {
		return 1
	}
	p := t.onPad / t.cfg.BoardingTime
	if p > 1 {
		return 1
	}
	return p
}

// Target is the portal the helicopter should head for.
func (t *Taxi) Target() (Portal, bool) {
	if t.current == nil {
		return Portal{}, false
	}
	if t.current.State == PassengerWaiting {
		return t.portals[t.current.From], true
	}
	return t.portals[t.current.To], true
}

// OnPad reports whether pos is parked over portal p.
func (t *Taxi) OnPad(p Portal, pos heli.Vec2) bool {
	dx := pos.X - p.Pos.X
	dy := pos.Y - p.Pos.Y
	return dx >= -t.cfg.PadRadius && dx <= t.cfg.PadRadius && dy >= 0 && dy <= padHeight
}

// Update advances boarding and delivery. Only a Grounded helicopter can
// load or unload.
func (t *Taxi) Update(dt float64, state heli.State, pos heli.Vec2) []TaxiEvent {
	if len(t.portals) < 2 {
		return nil
	}
	var events []TaxiEvent
	if t.current == nil {
		events = append(events, t.spawn())
	}

	target, _ := t.Target()
	if state != heli.StateGrounded || !t.OnPad(target, pos) {
		t.onPad = 0
		return events
	}
	t.onPad += dt
	if t.onPad < t.cfg.BoardingTime {
		return events
	}
	t.onPad = 0

	p := t.current
	switch p.State {
	case PassengerWaiting:
		p.State = PassengerRiding
		events = append(events, TaxiEvent{Kind: TaxiBoarded, Passenger: p.ID, Portal: target.Name})
		t.log.Info().Int("passenger", p.ID).Str("portal", target.Name).Msg("passenger boarded")
	case PassengerRiding:
		fare := t.fare(p)
		t.delivered++
		t.earnings += fare
		t.current = nil
		events = append(events, TaxiEvent{Kind: TaxiDelivered, Passenger: p.ID, Portal: target.Name, Fare: fare})
		t.log.Info().Int("passenger", p.ID).Str("portal", target.Name).Float64("fare", fare).Msg("passenger delivered")
	}
	return events
}

func (t *Taxi) fare(p *Passenger) float64 {
	d := t.portals[p.To].Pos.Sub(t.portals[p.From].Pos).Len()
	return t.cfg.BaseFare + t.cfg.FarePerUnit*d
}

func (t *Taxi) spawn() TaxiEvent {
	from := t.rng.Intn(len(t.portals))
	to := t.rng.Intn(len(t.portals) - 1)
	if to >= from {
		to++
	}
	t.nextID++
	t.current = &Passenger{ID: t.nextID, From: from, To: to}
	t.onPad = 0
	t.log.Debug().Int("passenger", t.nextID).Str("from", t.portals[from].Name).Str("to", t.portals[to].Name).Msg("passenger waiting")
	return TaxiEvent{Kind: TaxiSpawned, Passenger: t.nextID, Portal: t.portals[from].Name}
}

// Crash loses a riding passenger. A waiting passenger keeps waiting.
func (t *Taxi) Crash() (TaxiEvent, bool) {
	t.onPad = 0
	if t.current == nil || t.current.State != PassengerRiding {
		return TaxiEvent{}, false
	}
	p := t.current
	t.current = nil
	t.log.Info().Int("passenger", p.ID).Msg("passenger lost in crash")
	return TaxiEvent{Kind: TaxiLost, Passenger: p.ID, Portal: t.portals[p.To].Name}, true
}
