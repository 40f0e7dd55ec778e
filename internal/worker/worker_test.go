package worker

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navwar/navsim/internal/sim"
	"github.com/navwar/navsim/pkg/core"
)

// Verify Manager satisfies the simulation's recorder interface
var _ sim.Recorder = (*Manager)(nil)

// stubBackend counts writes and optionally fails them
type stubBackend struct {
	timeStates int
	unitStates int
	detections int
	damages    int
	sinkings   int
	failAll    bool
}

func (s *stubBackend) Init() error                     { return nil }
func (s *stubBackend) Close() error                    { return nil }
func (s *stubBackend) StartGame(*core.GameMeta) error  { return nil }
func (s *stubBackend) EndGame(uint64) error            { return nil }
func (s *stubBackend) AddUnit(*core.UnitInfo) error    { return nil }

func (s *stubBackend) RecordUnitState(*core.UnitState) error {
	if s.failAll {
		return errors.New("write failed")
	}
	s.unitStates++
	return nil
}

func (s *stubBackend) RecordTimeState(*core.TimeState) error {
	if s.failAll {
		return errors.New("write failed")
	}
	s.timeStates++
	return nil
}

func (s *stubBackend) RecordDetection(*core.DetectionEvent) error {
	if s.failAll {
		return errors.New("write failed")
	}
	s.detections++
	return nil
}

func (s *stubBackend) RecordDamage(*core.DamageEvent) error {
	if s.failAll {
		return errors.New("write failed")
	}
	s.damages++
	return nil
}

func (s *stubBackend) RecordSinking(*core.SinkEvent) error {
	if s.failAll {
		return errors.New("write failed")
	}
	s.sinkings++
	return nil
}

func TestManager_QueuesUntilFlush(t *testing.T) {
	backend := &stubBackend{}
	m := NewManager(backend, nil)

	m.RecordTimeState(core.TimeState{Tick: 1})
	m.RecordUnitState(core.UnitState{UnitID: uuid.New(), Tick: 1})
	m.RecordUnitState(core.UnitState{UnitID: uuid.New(), Tick: 1})
	m.RecordDetection(core.DetectionEvent{Tick: 1, ObserverID: uuid.New()})
	m.RecordDamage(core.DamageEvent{Tick: 1})
	m.RecordSinking(core.SinkEvent{Tick: 1, Phase: core.PhaseSinking})

	assert.Equal(t, 6, m.Pending())
	assert.Zero(t, backend.unitStates)

	m.Flush()

	assert.Zero(t, m.Pending())
	assert.Equal(t, 1, backend.timeStates)
	assert.Equal(t, 2, backend.unitStates)
	assert.Equal(t, 1, backend.detections)
	assert.Equal(t, 1, backend.damages)
	assert.Equal(t, 1, backend.sinkings)
}

func TestManager_FlushEmpty(t *testing.T) {
	backend := &stubBackend{}
	m := NewManager(backend, nil)

	m.Flush()
	assert.Zero(t, backend.unitStates)
}

func TestManager_FailedWritesAreDropped(t *testing.T) {
	backend := &stubBackend{failAll: true}
	m := NewManager(backend, nil)

	m.RecordUnitState(core.UnitState{UnitID: uuid.New(), Tick: 1})
	m.Flush()

	require.Zero(t, m.Pending(), "failed writes must not be replayed")
}
