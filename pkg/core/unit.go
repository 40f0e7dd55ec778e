// Package core holds the plain domain types exchanged between the simulation
// and its consumers: unit identity and state, snapshots, and telemetry events.
package core

import "github.com/google/uuid"

// Position is a WGS84 coordinate in decimal degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// UnitInfo is the static identity of a unit, recorded once at registration.
type UnitInfo struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	HullNumber string    `json:"hullNumber"`
	Class      string    `json:"class"`
	Faction    string    `json:"faction"`
	TaskForce  string    `json:"taskForce,omitempty"`
}

// UnitState is a per-tick summary of a unit's dynamic state.
type UnitState struct {
	UnitID      uuid.UUID `json:"unitId"`
	Tick        uint64    `json:"tick"`
	Position    Position  `json:"position"`
	Heading     float64   `json:"heading"`
	Speed       float64   `json:"speed"`
	Health      float64   `json:"health"`
	Fuel        float64   `json:"fuel"`
	State       string    `json:"state"`
	Destination *Position `json:"destination,omitempty"`
}

// Snapshot is the externally consumable view of the simulation: current time
// plus summarized state for every registered unit. It is immutable once built.
type Snapshot struct {
	Tick      uint64      `json:"tick"`
	GameTime  string      `json:"gameTime"`
	GameState string      `json:"gameState"`
	Units     []UnitState `json:"units"`
}
