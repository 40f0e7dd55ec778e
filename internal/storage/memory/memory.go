// Package memory records a simulation run in memory and exports it to a
// JSON file when the game ends.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/navwar/navsim/internal/config"
	"github.com/navwar/navsim/pkg/core"
)

// UnitRecord groups a unit with all its time-series data
type UnitRecord struct {
	Info       core.UnitInfo
	States     []core.UnitState
	Detections []core.DetectionEvent
}

// Backend stores game data in memory and exports to JSON
type Backend struct {
	cfg  config.MemoryConfig
	meta *core.GameMeta

	units map[uuid.UUID]*UnitRecord

	timeStates   []core.TimeState
	damageEvents []core.DamageEvent
	sinkEvents   []core.SinkEvent

	finalTick      uint64
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:   cfg,
		units: make(map[uuid.UUID]*UnitRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartGame begins recording a new game
func (b *Backend) StartGame(meta *core.GameMeta) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.meta = meta

	// Reset all collections
	b.units = make(map[uuid.UUID]*UnitRecord)
	b.timeStates = nil
	b.damageEvents = nil
	b.sinkEvents = nil
	b.finalTick = 0

	return nil
}

// EndGame finalizes and exports the game data
func (b *Backend) EndGame(finalTick uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.finalTick = finalTick
	return b.exportJSON()
}

// AddUnit registers a new unit
func (b *Backend) AddUnit(info *core.UnitInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.units[info.ID] = &UnitRecord{
		Info:   *info,
		States: make([]core.UnitState, 0),
	}
	return nil
}

// GetUnit looks up a registered unit
func (b *Backend) GetUnit(id uuid.UUID) (*core.UnitInfo, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if record, ok := b.units[id]; ok {
		return &record.Info, true
	}
	return nil, false
}

// RecordUnitState records a unit state update
func (b *Backend) RecordUnitState(s *core.UnitState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.units[s.UnitID]; ok {
		record.States = append(record.States, *s)
	}
	// silently ignore if unit not found
	return nil
}

// RecordTimeState records the clock after a tick
func (b *Backend) RecordTimeState(t *core.TimeState) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timeStates = append(b.timeStates, *t)
	return nil
}

// RecordDetection records an observer's sensor picture
func (b *Backend) RecordDetection(e *core.DetectionEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.units[e.ObserverID]; ok {
		record.Detections = append(record.Detections, *e)
	}
	return nil
}

// RecordDamage records a resolved hit
func (b *Backend) RecordDamage(e *core.DamageEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.damageEvents = append(b.damageEvents, *e)
	return nil
}

// RecordSinking records a sinking or removal
func (b *Backend) RecordSinking(e *core.SinkEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinkEvents = append(b.sinkEvents, *e)
	return nil
}
