package unit

import (
	"time"

	"github.com/navwar/navsim/internal/geo"
)

// arrivalEpsilonNM is the distance within which a unit is considered to have
// reached its destination.
const arrivalEpsilonNM = 0.1

// fuelPerNM is the fuel consumed per nautical mile traveled.
const fuelPerNM = 1.0

// Movement advances a unit toward its destination. It holds a non-owning
// back-reference to the unit it serves.
type Movement struct {
	unit    *Unit
	bearing float64 // course made good on the last update
}

func newMovement(u *Unit) *Movement {
	return &Movement{unit: u}
}

// Bearing returns the course from the last update.
func (m *Movement) Bearing() float64 { return m.bearing }

// Update advances the unit's position by speed times elapsed game time.
// The longitude delta is corrected by the cosine of the current latitude.
// If the destination would be reached or passed within this step, the
// position is clamped exactly to it, the destination cleared, and the unit
// drops to Idle. No state is mutated for a gated unit or zero elapsed time.
func (m *Movement) Update(elapsed time.Duration) error {
	u := m.unit
	if u.Gated() || elapsed <= 0 {
		return nil
	}

	attr := &u.Attr
	if attr.Destination == nil || attr.Speed == 0 {
		if u.state == StateMoving {
			u.state = StateIdle
		}
		return nil
	}

	stepNM := attr.Speed * elapsed.Hours()
	if !u.ConsumeFuel(stepNM * fuelPerNM) {
		// bunkers dry: dead in the water
		u.Stop()
		return nil
	}

	dest := *attr.Destination
	remaining := geo.Distance(attr.Position, dest)

	if remaining <= stepNM || remaining <= arrivalEpsilonNM {
		attr.Position = dest
		attr.Destination = nil
		attr.Speed = 0
		u.state = StateIdle
		return nil
	}

	m.bearing = geo.InitialBearing(attr.Position, dest)
	attr.Position = geo.Advance(attr.Position, m.bearing, stepNM)
	attr.Heading = m.bearing
	u.state = StateMoving

	if geo.Distance(attr.Position, dest) <= arrivalEpsilonNM {
		attr.Position = dest
		attr.Destination = nil
		attr.Speed = 0
		u.state = StateIdle
	}
	return nil
}
