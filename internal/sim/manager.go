package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/navwar/navsim/internal/geo"
	"github.com/navwar/navsim/internal/unit"
	"github.com/navwar/navsim/pkg/core"
)

var (
	// ErrDuplicateUnit is returned when adding a unit whose ID is registered.
	ErrDuplicateUnit = errors.New("unit already registered")
	// ErrUnitNotFound is returned when operating on an unknown unit ID.
	ErrUnitNotFound = errors.New("unit not found")
)

// Manager owns the canonical unit registry and performs the bulk per-tick
// module updates. It is the sole authority for adding and removing units.
//
// Per-unit failures during a bulk update are logged and skipped so one bad
// unit cannot abort the tick.
type Manager struct {
	units map[uuid.UUID]*unit.Unit
	order []uuid.UUID // registration order, for deterministic iteration

	// detections holds this tick's sensor picture, keyed by observer. Attack
	// resolution reads targets from here and nowhere else, which makes
	// "attack targets are a subset of detection results" structural.
	detections map[uuid.UUID][]uuid.UUID

	graceTicks uint64
	rec        Recorder
	log        *slog.Logger
}

// NewManager creates an empty unit registry. graceTicks is the number of
// ticks a unit spends sinking before removal; zero removes it the same tick.
func NewManager(graceTicks uint64, rec Recorder, log *slog.Logger) *Manager {
	if rec == nil {
		rec = NopRecorder{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		units:      make(map[uuid.UUID]*unit.Unit),
		detections: make(map[uuid.UUID][]uuid.UUID),
		graceTicks: graceTicks,
		rec:        rec,
		log:        log,
	}
}

// Add registers a unit under its identifier.
func (m *Manager) Add(u *unit.Unit) error {
	id := u.ID()
	if _, exists := m.units[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateUnit, id)
	}
	m.units[id] = u
	m.order = append(m.order, id)
	return nil
}

// Remove deletes a unit from the registry.
func (m *Manager) Remove(id uuid.UUID) error {
	if _, exists := m.units[id]; !exists {
		return fmt.Errorf("%w: %s", ErrUnitNotFound, id)
	}
	m.deregister(id)
	return nil
}

// Get returns a unit by ID.
func (m *Manager) Get(id uuid.UUID) (*unit.Unit, bool) {
	u, ok := m.units[id]
	return u, ok
}

// All returns the registered units in registration order.
func (m *Manager) All() []*unit.Unit {
	out := make([]*unit.Unit, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.units[id])
	}
	return out
}

// Len returns the number of registered units.
func (m *Manager) Len() int { return len(m.units) }

// UpdateMovement advances every non-terminal unit equipped with a movement
// module by the elapsed game time.
func (m *Manager) UpdateMovement(elapsed time.Duration) {
	for _, id := range m.order {
		u := m.units[id]
		if u.Terminal() {
			continue
		}
		mov := u.Movement()
		if mov == nil {
			continue
		}
		if err := mov.Update(elapsed); err != nil {
			m.log.Error("movement update failed", "unit", id, "error", err)
		}
	}
}

// UpdateDetection recomputes the per-observer sensor picture for this tick
// and emits one detection event per observer with contacts.
func (m *Manager) UpdateDetection(now time.Time, tick uint64) {
	m.detections = make(map[uuid.UUID][]uuid.UUID, len(m.units))
	candidates := m.All()

	for _, id := range m.order {
		u := m.units[id]
		if u.Gated() {
			continue
		}
		det := u.Detection()
		if det == nil {
			continue
		}
		contacts := det.Detect(candidates)
		m.detections[id] = contacts

		if len(contacts) > 0 {
			m.rec.RecordDetection(core.DetectionEvent{
				Tick:       tick,
				GameTime:   now,
				ObserverID: id,
				Contacts:   contacts,
				RangeNM:    u.Attr.DetectionRange,
			})
		}
	}
}

// Detections returns the contact set computed for an observer this tick.
func (m *Manager) Detections(id uuid.UUID) []uuid.UUID {
	return m.detections[id]
}

// ResolveAttacks lets each armed unit fire on the nearest eligible contact
// from its own detection results for this tick. A unit that was not detected
// this tick can never be targeted.
func (m *Manager) ResolveAttacks(now time.Time, tick uint64) {
	for _, id := range m.order {
		attacker := m.units[id]
		if attacker.Gated() {
			continue
		}
		atk := attacker.Attack()
		if atk == nil {
			continue
		}

		target := m.selectTarget(attacker)
		if target == nil {
			continue
		}

		res, err := atk.Resolve(target)
		if err != nil {
			m.log.Warn("attack resolution failed", "attacker", id, "target", target.ID(), "error", err)
			continue
		}
		attacker.MarkEngaging()

		m.rec.RecordDamage(core.DamageEvent{
			Tick:         tick,
			GameTime:     now,
			AttackerID:   id,
			TargetID:     target.ID(),
			Damage:       res.Damage,
			TargetHealth: res.TargetHealth,
			DistanceNM:   res.DistanceNM,
		})
	}
}

// selectTarget picks the attacker's preferred target when it is among this
// tick's detected contacts and in weapon range, otherwise the nearest
// contact within weapon range. Candidates come exclusively from the
// attacker's same-tick detection results; a contact already pushed out of
// the fight by an earlier attacker this tick is skipped.
func (m *Manager) selectTarget(attacker *unit.Unit) *unit.Unit {
	var best *unit.Unit
	bestDist := 0.0

	preferred := uuid.Nil
	if atk := attacker.Attack(); atk != nil {
		preferred = atk.PreferredTarget()
	}

	for _, contactID := range m.detections[attacker.ID()] {
		candidate, ok := m.units[contactID]
		if !ok || candidate.Gated() {
			continue
		}
		dist := geo.Distance(attacker.Attr.Position, candidate.Attr.Position)
		if dist > attacker.Attr.WeaponRange {
			continue
		}
		if contactID == preferred {
			return candidate
		}
		if best == nil || dist < bestDist {
			best = candidate
			bestDist = dist
		}
	}
	return best
}

// ApplyStateTransitions performs the end-of-tick lifecycle checks: units out
// of health enter sinking, and units past the grace period are removed and
// deregistered.
func (m *Manager) ApplyStateTransitions(now time.Time, tick uint64) {
	for _, id := range m.order {
		u := m.units[id]
		if !u.Terminal() && u.Attr.Health <= 0 {
			u.EnterSinking(tick)
			m.log.Info("unit sinking", "unit", id, "name", u.Attr.Name)
			m.rec.RecordSinking(core.SinkEvent{
				Tick:     tick,
				GameTime: now,
				UnitID:   id,
				Phase:    core.PhaseSinking,
			})
		}
	}

	// removal runs in a second pass so a zero grace period removes a unit
	// the same tick it starts sinking
	for _, id := range append([]uuid.UUID(nil), m.order...) {
		u := m.units[id]
		if u.State() != unit.StateSinking {
			continue
		}
		if u.SinkingElapsed(tick) >= m.graceTicks {
			u.MarkRemoved()
			m.deregister(id)
			m.log.Info("unit removed", "unit", id, "name", u.Attr.Name)
			m.rec.RecordSinking(core.SinkEvent{
				Tick:     tick,
				GameTime: now,
				UnitID:   id,
				Phase:    core.PhaseRemoved,
			})
		}
	}
}

// UnitStates summarizes every registered unit for the given tick.
func (m *Manager) UnitStates(tick uint64) []core.UnitState {
	out := make([]core.UnitState, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, unitStateOf(m.units[id], tick))
	}
	return out
}

func (m *Manager) deregister(id uuid.UUID) {
	delete(m.units, id)
	delete(m.detections, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func unitStateOf(u *unit.Unit, tick uint64) core.UnitState {
	s := core.UnitState{
		UnitID:   u.ID(),
		Tick:     tick,
		Position: core.Position{Lat: u.Attr.Position.Lat, Lon: u.Attr.Position.Lon},
		Heading:  u.Attr.Heading,
		Speed:    u.Attr.Speed,
		Health:   u.Attr.Health,
		Fuel:     u.Attr.Fuel,
		State:    string(u.State()),
	}
	if d := u.Attr.Destination; d != nil {
		s.Destination = &core.Position{Lat: d.Lat, Lon: d.Lon}
	}
	return s
}
