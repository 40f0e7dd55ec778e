package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/navwar/navsim/internal/geo"
	"github.com/navwar/navsim/internal/unit"
	"github.com/navwar/navsim/pkg/core"
)

// Config configures a simulation run.
type Config struct {
	Name        string
	Description string
	Start       time.Time     // game epoch; zero means time.Now truncated to the minute
	TickRate    time.Duration // game time per tick; zero means DefaultTickRate
	GraceTicks  uint64        // ticks spent sinking before removal
	Recorder    Recorder
	Logger      *slog.Logger
}

// Orchestrator drives the tick loop. It exclusively owns the mutable clock
// and the unit manager; external callers get snapshots and narrow commands.
//
// A single mutex serializes ticks against reads: a concurrent Snapshot
// observes either the pre-tick or the fully post-tick state, never a
// partially updated one. A tick in flight runs to completion before a pause
// takes effect.
type Orchestrator struct {
	mu    sync.Mutex
	clock *Clock
	units *Manager
	fsm   *stateMachine
	rec   Recorder
	log   *slog.Logger
	meta  core.GameMeta
}

// New creates an orchestrator with an empty unit registry.
func New(cfg Config) (*Orchestrator, error) {
	rate := cfg.TickRate
	if rate == 0 {
		rate = DefaultTickRate
	}
	start := cfg.Start
	if start.IsZero() {
		start = time.Now().UTC().Truncate(time.Minute)
	}
	clock, err := NewClock(start, rate)
	if err != nil {
		return nil, err
	}

	rec := cfg.Recorder
	if rec == nil {
		rec = NopRecorder{}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Orchestrator{
		clock: clock,
		units: NewManager(cfg.GraceTicks, rec, log),
		fsm:   newStateMachine(),
		rec:   rec,
		log:   log,
		meta: core.GameMeta{
			Name:        cfg.Name,
			Description: cfg.Description,
			StartTime:   start,
			TickRate:    rate.Seconds(),
		},
	}, nil
}

// Meta returns the run's identifying metadata.
func (o *Orchestrator) Meta() core.GameMeta { return o.meta }

// Time returns the read-only clock view.
func (o *Orchestrator) Time() TimeSource { return o.clock }

// State returns the game lifecycle state.
func (o *Orchestrator) State() GameState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fsm.current()
}

// Start begins the run; valid only from the initializing state.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fsm.start()
}

// Pause blocks ticking without resetting state.
func (o *Orchestrator) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fsm.pause()
}

// Unpause resumes a paused run.
func (o *Orchestrator) Unpause() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fsm.unpause()
}

// Stop completes the run; idempotent.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fsm.complete()
}

// Tick processes one simulation step in strict order: clock advance,
// movement, detection, attack resolution, state transitions. It is a no-op
// unless the game is running. A clock failure is fatal and propagates.
func (o *Orchestrator) Tick() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.fsm.canTick() {
		return nil
	}

	elapsed, err := o.clock.Advance()
	if err != nil {
		return err
	}
	now := o.clock.Now()
	tick := o.clock.Tick()

	o.units.UpdateMovement(elapsed)
	o.units.UpdateDetection(now, tick)
	o.units.ResolveAttacks(now, tick)
	o.units.ApplyStateTransitions(now, tick)

	o.rec.RecordTimeState(core.TimeState{
		Tick:        tick,
		GameTime:    now,
		RatePerTick: o.clock.Rate(),
	})
	for _, s := range o.units.UnitStates(tick) {
		o.rec.RecordUnitState(s)
	}

	return nil
}

// Snapshot returns the externally consumable view of the run.
func (o *Orchestrator) Snapshot() core.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return core.Snapshot{
		Tick:      o.clock.Tick(),
		GameTime:  o.clock.Now().Format(time.RFC3339),
		GameState: string(o.fsm.current()),
		Units:     o.units.UnitStates(o.clock.Tick()),
	}
}

// AddUnit registers a unit.
func (o *Orchestrator) AddUnit(u *unit.Unit) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.units.Add(u)
}

// RemoveUnit deregisters a unit.
func (o *Orchestrator) RemoveUnit(id uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.units.Remove(id)
}

// UnitCount returns the number of registered units.
func (o *Orchestrator) UnitCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.units.Len()
}

// UnitInfos returns the static identity of every registered unit.
func (o *Orchestrator) UnitInfos() []core.UnitInfo {
	o.mu.Lock()
	defer o.mu.Unlock()

	units := o.units.All()
	infos := make([]core.UnitInfo, 0, len(units))
	for _, u := range units {
		infos = append(infos, core.UnitInfo{
			ID:         u.Attr.ID,
			Name:       u.Attr.Name,
			HullNumber: u.Attr.HullNumber,
			Class:      string(u.Attr.Class),
			Faction:    u.Attr.Faction,
			TaskForce:  u.Attr.TaskForce,
		})
	}
	return infos
}

// SetUnitMovement orders a unit toward a destination at the given speed.
func (o *Orchestrator) SetUnitMovement(id uuid.UUID, dest geo.Position, speed float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	u, ok := o.units.Get(id)
	if !ok {
		return ErrUnitNotFound
	}
	if err := u.SetDestination(dest); err != nil {
		return err
	}
	return u.SetSpeed(speed)
}

// SetUnitTarget orders a unit to prioritize a contact during attack
// resolution. The order only takes effect on ticks where the contact shows
// up in the unit's own detection results. A Nil target clears the order.
func (o *Orchestrator) SetUnitTarget(id, targetID uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	u, ok := o.units.Get(id)
	if !ok {
		return ErrUnitNotFound
	}
	atk := u.Attack()
	if atk == nil {
		return fmt.Errorf("%w: %s has no attack capability", unit.ErrInvalidOperation, u.Attr.Name)
	}
	if targetID == uuid.Nil {
		atk.ClearPreferredTarget()
		return nil
	}
	if _, ok := o.units.Get(targetID); !ok {
		return ErrUnitNotFound
	}
	atk.SetPreferredTarget(targetID)
	return nil
}

// SetTickRate changes game time advanced per tick, within clock bounds.
func (o *Orchestrator) SetTickRate(rate time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.clock.SetRate(rate)
}

// Run paces ticks on a wall-clock interval until the context is canceled or
// the run completes. The interval controls real-time pacing only; game time
// advanced per tick is the clock's rate.
func (o *Orchestrator) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.Stop()
			return ctx.Err()
		case <-ticker.C:
			if o.State() == GameCompleted {
				return nil
			}
			if err := o.Tick(); err != nil {
				o.Stop()
				return err
			}
		}
	}
}
