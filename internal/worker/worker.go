// Package worker bridges the simulation's telemetry stream to a storage
// backend. Events are queued as they arrive and drained in batches so the
// tick loop never blocks on persistence.
package worker

import (
	"log/slog"

	"github.com/navwar/navsim/internal/queue"
	"github.com/navwar/navsim/internal/storage"
	"github.com/navwar/navsim/pkg/core"
)

// Manager buffers telemetry and writes it to the backend.
type Manager struct {
	backend storage.Backend
	log     *slog.Logger

	timeStates *queue.Queue[core.TimeState]
	unitStates *queue.Queue[core.UnitState]
	detections *queue.Queue[core.DetectionEvent]
	damages    *queue.Queue[core.DamageEvent]
	sinkings   *queue.Queue[core.SinkEvent]
}

// NewManager creates a worker manager writing to the given backend.
func NewManager(backend storage.Backend, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		backend:    backend,
		log:        log,
		timeStates: queue.New[core.TimeState](),
		unitStates: queue.New[core.UnitState](),
		detections: queue.New[core.DetectionEvent](),
		damages:    queue.New[core.DamageEvent](),
		sinkings:   queue.New[core.SinkEvent](),
	}
}

// RecordTimeState queues a clock update.
func (m *Manager) RecordTimeState(t core.TimeState) {
	m.timeStates.Push(t)
}

// RecordUnitState queues a per-tick unit state.
func (m *Manager) RecordUnitState(s core.UnitState) {
	m.unitStates.Push(s)
}

// RecordDetection queues a sensor picture.
func (m *Manager) RecordDetection(e core.DetectionEvent) {
	m.detections.Push(e)
}

// RecordDamage queues a resolved hit.
func (m *Manager) RecordDamage(e core.DamageEvent) {
	m.damages.Push(e)
}

// RecordSinking queues a sinking or removal.
func (m *Manager) RecordSinking(e core.SinkEvent) {
	m.sinkings.Push(e)
}

// Pending reports the total number of queued events.
func (m *Manager) Pending() int {
	return m.timeStates.Len() + m.unitStates.Len() + m.detections.Len() +
		m.damages.Len() + m.sinkings.Len()
}

// Flush drains all queues into the backend. Failed writes are logged and
// dropped; the simulation does not replay telemetry.
func (m *Manager) Flush() {
	for _, t := range m.timeStates.GetAndEmpty() {
		if err := m.backend.RecordTimeState(&t); err != nil {
			m.log.Error("recording time state", "tick", t.Tick, "error", err)
		}
	}
	for _, s := range m.unitStates.GetAndEmpty() {
		if err := m.backend.RecordUnitState(&s); err != nil {
			m.log.Error("recording unit state", "unit", s.UnitID, "tick", s.Tick, "error", err)
		}
	}
	for _, e := range m.detections.GetAndEmpty() {
		if err := m.backend.RecordDetection(&e); err != nil {
			m.log.Error("recording detection", "observer", e.ObserverID, "tick", e.Tick, "error", err)
		}
	}
	for _, e := range m.damages.GetAndEmpty() {
		if err := m.backend.RecordDamage(&e); err != nil {
			m.log.Error("recording damage", "target", e.TargetID, "tick", e.Tick, "error", err)
		}
	}
	for _, e := range m.sinkings.GetAndEmpty() {
		if err := m.backend.RecordSinking(&e); err != nil {
			m.log.Error("recording sinking", "unit", e.UnitID, "tick", e.Tick, "error", err)
		}
	}
}
