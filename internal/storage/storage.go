package storage

import "github.com/navwar/navsim/pkg/core"

// Backend is the interface all recording backends must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Game management
	StartGame(meta *core.GameMeta) error
	EndGame(finalTick uint64) error

	// Unit registration
	AddUnit(info *core.UnitInfo) error

	// State recording
	RecordUnitState(s *core.UnitState) error
	RecordTimeState(t *core.TimeState) error

	// Event recording
	RecordDetection(e *core.DetectionEvent) error
	RecordDamage(e *core.DamageEvent) error
	RecordSinking(e *core.SinkEvent) error
}

// Uploadable is an optional interface for backends that produce files
// suitable for upload to a replay frontend.
type Uploadable interface {
	GetExportedFilePath() string
}
