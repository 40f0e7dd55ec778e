// Package unit implements simulated naval units: their attributes, the
// per-unit state machine, and the optional capability modules (movement,
// detection, attack) attached to them.
package unit

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/navwar/navsim/internal/geo"
)

// State is the unit lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateMoving   State = "moving"
	StateEngaging State = "engaging"
	StateSinking  State = "sinking"
	StateRemoved  State = "removed"
)

var (
	// ErrInvalidOperation is returned when an action is attempted on a unit
	// whose state gates it out (sinking, removed, or zero health).
	ErrInvalidOperation = errors.New("operation not permitted for unit state")

	// ErrSpeedOutOfRange is returned when a requested speed is negative or
	// exceeds the unit's maximum.
	ErrSpeedOutOfRange = errors.New("speed out of range")
)

// Attributes are the core properties of a unit. Positions are WGS84
// lat/lon, speeds in knots, ranges in nautical miles.
type Attributes struct {
	// Identity
	ID         uuid.UUID
	Name       string
	HullNumber string
	Class      Class
	Faction    string
	TaskForce  string

	// Kinematics
	Position    geo.Position
	Destination *geo.Position
	Heading     float64
	MaxSpeed    float64
	CruiseSpeed float64
	Speed       float64

	// Combat
	MaxHealth      float64
	Health         float64
	Armor          float64 // damage reduction factor in [0, 1)
	DetectionRange float64
	WeaponRange    float64
	WeaponDamage   float64

	// Resources
	MaxFuel float64
	Fuel    float64
	Crew    int
	Tonnage int
}

// Unit is a simulated entity. Capability modules are explicit optional
// slots: a nil slot means the capability is unavailable.
type Unit struct {
	Attr Attributes

	state       State
	sinkingTick uint64 // tick at which the unit entered StateSinking

	movement  *Movement
	detection *Detection
	attack    *Attack
}

// New creates a unit from attributes. The initial state is derived from the
// kinematics: Moving when a destination is set and speed is positive, Idle
// otherwise.
func New(attr Attributes) (*Unit, error) {
	if err := attr.Position.Validate(); err != nil {
		return nil, fmt.Errorf("unit %q: %w", attr.Name, err)
	}
	if attr.Destination != nil {
		if err := attr.Destination.Validate(); err != nil {
			return nil, fmt.Errorf("unit %q destination: %w", attr.Name, err)
		}
	}
	if attr.Speed < 0 || attr.Speed > attr.MaxSpeed {
		return nil, fmt.Errorf("unit %q: %w: %v kt (max %v)", attr.Name, ErrSpeedOutOfRange, attr.Speed, attr.MaxSpeed)
	}
	if attr.Health < 0 {
		return nil, fmt.Errorf("unit %q: health must be non-negative", attr.Name)
	}
	if attr.ID == uuid.Nil {
		attr.ID = uuid.New()
	}

	u := &Unit{Attr: attr, state: StateIdle}
	if attr.Destination != nil && attr.Speed > 0 {
		u.state = StateMoving
	}
	return u, nil
}

// ID returns the unit's stable identifier.
func (u *Unit) ID() uuid.UUID { return u.Attr.ID }

// State returns the current lifecycle state.
func (u *Unit) State() State { return u.state }

// Gated reports whether the unit is excluded from movement, detection and
// attack processing: sinking, removed, or out of health.
func (u *Unit) Gated() bool {
	return u.state == StateSinking || u.state == StateRemoved || u.Attr.Health <= 0
}

// Terminal reports whether the unit is in a terminal or terminal-approach state.
func (u *Unit) Terminal() bool {
	return u.state == StateSinking || u.state == StateRemoved
}

// SetDestination orders the unit toward a position. The unit transitions to
// Moving once it also has positive speed.
func (u *Unit) SetDestination(p geo.Position) error {
	if u.Gated() {
		return fmt.Errorf("%w: %s is %s", ErrInvalidOperation, u.Attr.Name, u.state)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	dest := p
	u.Attr.Destination = &dest
	if u.Attr.Speed > 0 {
		u.state = StateMoving
	}
	return nil
}

// SetSpeed changes the ordered speed. Zero speed drops a moving unit back to
// Idle; positive speed with a destination set makes it Moving.
func (u *Unit) SetSpeed(knots float64) error {
	if u.Gated() {
		return fmt.Errorf("%w: %s is %s", ErrInvalidOperation, u.Attr.Name, u.state)
	}
	if knots < 0 || knots > u.Attr.MaxSpeed {
		return fmt.Errorf("%w: %v kt (max %v)", ErrSpeedOutOfRange, knots, u.Attr.MaxSpeed)
	}
	u.Attr.Speed = knots
	switch {
	case knots == 0 && u.state == StateMoving:
		u.state = StateIdle
	case knots > 0 && u.Attr.Destination != nil:
		u.state = StateMoving
	}
	return nil
}

// Stop zeroes speed and clears the destination.
func (u *Unit) Stop() {
	u.Attr.Speed = 0
	u.Attr.Destination = nil
	if u.state == StateMoving || u.state == StateEngaging {
		u.state = StateIdle
	}
}

// ApplyDamage reduces health, clamped at zero.
func (u *Unit) ApplyDamage(amount float64) {
	u.Attr.Health -= amount
	if u.Attr.Health < 0 {
		u.Attr.Health = 0
	}
}

// ConsumeFuel deducts fuel for an action. Returns false without deducting
// when the remaining fuel is insufficient.
func (u *Unit) ConsumeFuel(amount float64) bool {
	if u.Attr.Fuel < amount {
		return false
	}
	u.Attr.Fuel -= amount
	return true
}

// HasFuel reports whether any fuel remains.
func (u *Unit) HasFuel() bool { return u.Attr.Fuel > 0 }

// MarkEngaging flags the unit as actively attacking this tick. Only
// operational units transition; the flag is recomputed by the next movement
// update.
func (u *Unit) MarkEngaging() {
	if u.state == StateIdle || u.state == StateMoving {
		u.state = StateEngaging
	}
}

// EnterSinking transitions the unit to the sinking state: speed forced to
// zero, destination cleared, excluded from all further processing.
func (u *Unit) EnterSinking(tick uint64) {
	if u.Terminal() {
		return
	}
	u.state = StateSinking
	u.sinkingTick = tick
	u.Attr.Speed = 0
	u.Attr.Destination = nil
}

// SinkingElapsed returns how many ticks the unit has been sinking as of the
// given tick. Zero unless the unit is in StateSinking.
func (u *Unit) SinkingElapsed(tick uint64) uint64 {
	if u.state != StateSinking || tick < u.sinkingTick {
		return 0
	}
	return tick - u.sinkingTick
}

// MarkRemoved finalizes the sinking transition.
func (u *Unit) MarkRemoved() {
	u.state = StateRemoved
	u.Attr.Speed = 0
	u.Attr.Destination = nil
}

// AttachMovement equips the unit with a movement module.
func (u *Unit) AttachMovement() *Movement {
	u.movement = newMovement(u)
	return u.movement
}

// AttachDetection equips the unit with a detection module.
func (u *Unit) AttachDetection() *Detection {
	u.detection = newDetection(u)
	return u.detection
}

// AttachAttack equips the unit with an attack module.
func (u *Unit) AttachAttack() *Attack {
	u.attack = newAttack(u)
	return u.attack
}

// Movement returns the movement module, or nil when unequipped.
func (u *Unit) Movement() *Movement { return u.movement }

// Detection returns the detection module, or nil when unequipped.
func (u *Unit) Detection() *Detection { return u.detection }

// Attack returns the attack module, or nil when unequipped.
func (u *Unit) Attack() *Attack { return u.attack }
