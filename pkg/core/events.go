package core

import (
	"time"

	"github.com/google/uuid"
)

// Telemetry events emitted by the simulation core once per tick. The core
// never formats presentation strings; sinks decide how to render these.

// TimeState records the clock after a tick has advanced.
type TimeState struct {
	Tick        uint64        `json:"tick"`
	GameTime    time.Time     `json:"gameTime"`
	RatePerTick time.Duration `json:"ratePerTick"`
}

// DetectionEvent records the full sensor picture of one observer for one
// tick. Contacts is the canonical set of legitimate attack targets for the
// observer this tick; attack resolution consumes this exact set.
type DetectionEvent struct {
	Tick       uint64      `json:"tick"`
	GameTime   time.Time   `json:"gameTime"`
	ObserverID uuid.UUID   `json:"observerId"`
	Contacts   []uuid.UUID `json:"contacts"`
	RangeNM    float64     `json:"rangeNM"`
}

// DamageEvent records a resolved hit.
type DamageEvent struct {
	Tick         uint64    `json:"tick"`
	GameTime     time.Time `json:"gameTime"`
	AttackerID   uuid.UUID `json:"attackerId"`
	TargetID     uuid.UUID `json:"targetId"`
	Damage       float64   `json:"damage"`
	TargetHealth float64   `json:"targetHealth"`
	DistanceNM   float64   `json:"distanceNM"`
}

// SinkPhase distinguishes the two terminal transitions.
type SinkPhase string

const (
	PhaseSinking SinkPhase = "sinking"
	PhaseRemoved SinkPhase = "removed"
)

// SinkEvent records a unit entering SINKING or being removed afterwards.
type SinkEvent struct {
	Tick     uint64    `json:"tick"`
	GameTime time.Time `json:"gameTime"`
	UnitID   uuid.UUID `json:"unitId"`
	Phase    SinkPhase `json:"phase"`
}

// GameMeta identifies a simulation run for storage backends.
type GameMeta struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime"`
	TickRate    float64   `json:"tickRateSeconds"`
}
