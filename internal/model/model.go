// Package model defines the database schema for recorded simulations.
package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatabaseModels is a list of all the structs exported here which represent
// tables in the database schema
var DatabaseModels = []interface{}{
	&Game{},
	&Unit{},
	&UnitState{},
	&TimeState{},
	&DetectionEvent{},
	&DamageEvent{},
	&SinkEvent{},
}

// Game is the main model for a simulation run
type Game struct {
	gorm.Model
	Name        string    `json:"name" gorm:"size:200"`
	Description string    `json:"description" gorm:"size:2000"`
	StartTime   time.Time `json:"startTime" gorm:"type:timestamptz;index:idx_game_start"`
	EndTime     time.Time `json:"endTime" gorm:"type:timestamptz"`
	TickRate    float64   `json:"tickRateSeconds"`
	FinalTick   uint64    `json:"finalTick"`

	Units           []Unit
	UnitStates      []UnitState
	TimeStates      []TimeState
	DetectionEvents []DetectionEvent
	DamageEvents    []DamageEvent
	SinkEvents      []SinkEvent
}

func (*Game) TableName() string {
	return "games"
}

// Unit is a registered vessel. UnitID is the simulation-assigned UUID,
// stored as text for portability between postgres and sqlite.
type Unit struct {
	GameID     uint           `json:"gameId" gorm:"primaryKey;autoIncrement:false"`
	UnitID     string         `json:"unitId" gorm:"primaryKey;size:36"`
	Game       Game           `gorm:"foreignkey:GameID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `json:"deletedAt" gorm:"index"`
	Name       string         `json:"name" gorm:"size:127"`
	HullNumber string         `json:"hullNumber" gorm:"size:16"`
	Class      string         `json:"class" gorm:"size:32"`
	Faction    string         `json:"faction" gorm:"size:32;index:idx_unit_faction"`
	TaskForce  string         `json:"taskForce" gorm:"size:64"`
}

func (*Unit) TableName() string {
	return "units"
}

// UnitState tracks unit state at one tick
type UnitState struct {
	ID     uint   `json:"id" gorm:"primarykey;autoIncrement;"`
	GameID uint   `json:"gameId" gorm:"index:idx_unitstate_game_id"`
	Game   Game   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:GameID;"`
	UnitID string `json:"unitId" gorm:"size:36;index:idx_unitstate_unit_id"`
	Tick   uint64 `json:"tick" gorm:"index:idx_unitstate_tick"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// Position is the location projected to EPSG 3857, WKB-encoded
	Position []byte  `json:"-"`
	Heading  float64 `json:"heading"`
	Speed    float64 `json:"speed"`
	Health   float64 `json:"health"`
	Fuel     float64 `json:"fuel"`
	State    string  `json:"state" gorm:"size:16"`
}

func (*UnitState) TableName() string {
	return "unit_states"
}

// TimeState records the clock after each tick
type TimeState struct {
	ID          uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	GameID      uint      `json:"gameId" gorm:"index:idx_timestate_game_id"`
	Game        Game      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:GameID;"`
	Tick        uint64    `json:"tick" gorm:"index:idx_timestate_tick"`
	GameTime    time.Time `json:"gameTime" gorm:"type:timestamptz"`
	RateSeconds float64   `json:"rateSeconds"`
}

func (*TimeState) TableName() string {
	return "time_states"
}

// DetectionEvent is one observer's sensor picture for one tick
type DetectionEvent struct {
	ID         uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	GameID     uint      `json:"gameId" gorm:"index:idx_detectionevent_game_id"`
	Game       Game      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:GameID;"`
	Tick       uint64    `json:"tick" gorm:"index:idx_detectionevent_tick"`
	Time       time.Time `json:"time" gorm:"type:timestamptz"`
	ObserverID string    `json:"observerId" gorm:"size:36;index:idx_detectionevent_observer_id"`
	// Contacts is a JSON array of detected unit UUIDs
	Contacts datatypes.JSON `json:"contacts" gorm:"default:'[]'"`
	RangeNM  float64        `json:"rangeNM"`
}

func (*DetectionEvent) TableName() string {
	return "detection_events"
}

// DamageEvent is a resolved hit
type DamageEvent struct {
	ID           uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	GameID       uint      `json:"gameId" gorm:"index:idx_damageevent_game_id"`
	Game         Game      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:GameID;"`
	Tick         uint64    `json:"tick" gorm:"index:idx_damageevent_tick"`
	Time         time.Time `json:"time" gorm:"type:timestamptz"`
	AttackerID   string    `json:"attackerId" gorm:"size:36;index:idx_damageevent_attacker_id"`
	TargetID     string    `json:"targetId" gorm:"size:36;index:idx_damageevent_target_id"`
	Damage       float64   `json:"damage"`
	TargetHealth float64   `json:"targetHealth"`
	DistanceNM   float64   `json:"distanceNM"`
}

func (*DamageEvent) TableName() string {
	return "damage_events"
}

// SinkEvent is a unit entering sinking or being removed
type SinkEvent struct {
	ID     uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	GameID uint      `json:"gameId" gorm:"index:idx_sinkevent_game_id"`
	Game   Game      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:GameID;"`
	Tick   uint64    `json:"tick" gorm:"index:idx_sinkevent_tick"`
	Time   time.Time `json:"time" gorm:"type:timestamptz"`
	UnitID string    `json:"unitId" gorm:"size:36;index:idx_sinkevent_unit_id"`
	Phase  string    `json:"phase" gorm:"size:16"`
}

func (*SinkEvent) TableName() string {
	return "sink_events"
}
