// Package handlers wires dispatcher commands to the simulation. Each
// handler decodes a JSON payload, drives the orchestrator, and returns a
// JSON-marshalable result.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/navwar/navsim/internal/dispatcher"
	"github.com/navwar/navsim/internal/geo"
	"github.com/navwar/navsim/internal/scenario"
	"github.com/navwar/navsim/internal/sim"
	"github.com/navwar/navsim/internal/storage"
	"github.com/navwar/navsim/internal/worker"
	"github.com/navwar/navsim/pkg/core"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Backend  storage.Backend
	Recorder *worker.Manager
	Logger   *slog.Logger
}

// Service provides handler methods for driving the simulation
type Service struct {
	deps Dependencies

	mu   sync.Mutex
	orch *sim.Orchestrator
}

// NewService creates a new handler service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps}
}

// SetOrchestrator installs a pre-built game, used when the game is
// assembled outside the command path.
func (s *Service) SetOrchestrator(o *sim.Orchestrator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orch = o
}

// Orchestrator returns the current game, or nil before game:create.
func (s *Service) Orchestrator() *sim.Orchestrator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orch
}

// RegisterHandlers registers all command handlers with the dispatcher.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register("game:create", s.handleGameCreate, dispatcher.Logged())
	d.Register("scenario:load", s.handleScenarioLoad, dispatcher.Logged())
	d.Register("game:start", s.handleGameStart, dispatcher.Logged())
	d.Register("game:pause", s.handleGamePause, dispatcher.Logged())
	d.Register("game:unpause", s.handleGameUnpause, dispatcher.Logged())
	d.Register("game:stop", s.handleGameStop, dispatcher.Logged())
	d.Register("game:tick", s.handleGameTick)
	d.Register("game:state", s.handleGameState)
	d.Register("unit:move", s.handleUnitMove, dispatcher.Logged())
	d.Register("unit:target", s.handleUnitTarget, dispatcher.Logged())
}

type gameCreatePayload struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	TickRateSeconds float64 `json:"tickRateSeconds"`
	GraceTicks      *uint64 `json:"graceTicks"`
	StartTime       string  `json:"startTime"`
}

func (s *Service) handleGameCreate(e dispatcher.Event) (any, error) {
	var p gameCreatePayload
	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return nil, fmt.Errorf("decoding game:create payload: %w", err)
		}
	}

	cfg := sim.Config{
		Name:        p.Name,
		Description: p.Description,
		Logger:      s.deps.Logger,
	}
	if s.deps.Recorder != nil {
		cfg.Recorder = s.deps.Recorder
	}
	if p.TickRateSeconds > 0 {
		cfg.TickRate = time.Duration(p.TickRateSeconds * float64(time.Second))
	}
	if p.GraceTicks != nil {
		cfg.GraceTicks = *p.GraceTicks
	}
	if p.StartTime != "" {
		start, err := time.Parse(time.RFC3339, p.StartTime)
		if err != nil {
			return nil, fmt.Errorf("parsing startTime: %w", err)
		}
		cfg.Start = start
	}

	o, err := sim.New(cfg)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.orch = o
	s.mu.Unlock()

	if s.deps.Backend != nil {
		meta := o.Meta()
		if err := s.deps.Backend.StartGame(&meta); err != nil {
			return nil, fmt.Errorf("starting game recording: %w", err)
		}
	}

	return map[string]any{"name": o.Meta().Name, "state": string(o.State())}, nil
}

type scenarioLoadPayload struct {
	Path string `json:"path"`
	// Inline carries a full scenario document instead of a file path
	Inline json.RawMessage `json:"scenario"`
}

func (s *Service) handleScenarioLoad(e dispatcher.Event) (any, error) {
	o := s.Orchestrator()
	if o == nil {
		return nil, fmt.Errorf("no game created")
	}

	var p scenarioLoadPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("decoding scenario:load payload: %w", err)
	}

	var (
		sc  *scenario.Scenario
		err error
	)
	switch {
	case len(p.Inline) > 0:
		sc, err = scenario.Parse(p.Inline)
	case p.Path != "":
		sc, err = scenario.Load(p.Path)
	default:
		sc = scenario.Default()
	}
	if err != nil {
		return nil, err
	}

	units, err := sc.Build()
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		if err := o.AddUnit(u); err != nil {
			return nil, err
		}
	}

	if s.deps.Backend != nil {
		for _, u := range units {
			info := core.UnitInfo{
				ID:         u.Attr.ID,
				Name:       u.Attr.Name,
				HullNumber: u.Attr.HullNumber,
				Class:      string(u.Attr.Class),
				Faction:    u.Attr.Faction,
				TaskForce:  u.Attr.TaskForce,
			}
			if err := s.deps.Backend.AddUnit(&info); err != nil {
				s.deps.Logger.Error("recording unit registration", "unit", u.ID(), "error", err)
			}
		}
	}

	return map[string]any{"scenario": sc.Name, "units": len(units)}, nil
}

func (s *Service) handleGameStart(e dispatcher.Event) (any, error) {
	o := s.Orchestrator()
	if o == nil {
		return nil, fmt.Errorf("no game created")
	}
	if err := o.Start(); err != nil {
		return nil, err
	}
	return string(o.State()), nil
}

func (s *Service) handleGamePause(e dispatcher.Event) (any, error) {
	o := s.Orchestrator()
	if o == nil {
		return nil, fmt.Errorf("no game created")
	}
	o.Pause()
	return string(o.State()), nil
}

func (s *Service) handleGameUnpause(e dispatcher.Event) (any, error) {
	o := s.Orchestrator()
	if o == nil {
		return nil, fmt.Errorf("no game created")
	}
	if err := o.Unpause(); err != nil {
		return nil, err
	}
	return string(o.State()), nil
}

func (s *Service) handleGameStop(e dispatcher.Event) (any, error) {
	o := s.Orchestrator()
	if o == nil {
		return nil, fmt.Errorf("no game created")
	}
	o.Stop()
	return string(o.State()), nil
}

func (s *Service) handleGameTick(e dispatcher.Event) (any, error) {
	o := s.Orchestrator()
	if o == nil {
		return nil, fmt.Errorf("no game created")
	}
	if err := o.Tick(); err != nil {
		return nil, err
	}
	return o.Time().Tick(), nil
}

func (s *Service) handleGameState(e dispatcher.Event) (any, error) {
	o := s.Orchestrator()
	if o == nil {
		return nil, fmt.Errorf("no game created")
	}
	return o.Snapshot(), nil
}

type unitMovePayload struct {
	UnitID      string  `json:"unitId"`
	Destination *latLon `json:"destination"`
	Speed       float64 `json:"speed"`
}

type latLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (s *Service) handleUnitMove(e dispatcher.Event) (any, error) {
	o := s.Orchestrator()
	if o == nil {
		return nil, fmt.Errorf("no game created")
	}

	var p unitMovePayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("decoding unit:move payload: %w", err)
	}

	id, err := uuid.Parse(p.UnitID)
	if err != nil {
		return nil, fmt.Errorf("parsing unitId: %w", err)
	}
	if p.Destination == nil {
		return nil, fmt.Errorf("destination is required")
	}

	dest := geo.Position{Lat: p.Destination.Lat, Lon: p.Destination.Lon}
	if err := o.SetUnitMovement(id, dest, p.Speed); err != nil {
		return nil, err
	}

	return "ok", nil
}

type unitTargetPayload struct {
	UnitID string `json:"unitId"`
	// TargetID empty clears the standing order
	TargetID string `json:"targetId"`
}

func (s *Service) handleUnitTarget(e dispatcher.Event) (any, error) {
	o := s.Orchestrator()
	if o == nil {
		return nil, fmt.Errorf("no game created")
	}

	var p unitTargetPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("decoding unit:target payload: %w", err)
	}

	id, err := uuid.Parse(p.UnitID)
	if err != nil {
		return nil, fmt.Errorf("parsing unitId: %w", err)
	}
	targetID := uuid.Nil
	if p.TargetID != "" {
		targetID, err = uuid.Parse(p.TargetID)
		if err != nil {
			return nil, fmt.Errorf("parsing targetId: %w", err)
		}
	}

	if err := o.SetUnitTarget(id, targetID); err != nil {
		return nil, err
	}

	return "ok", nil
}
