package sim

import (
	"errors"
	"fmt"
)

// GameState is the lifecycle state of a simulation run.
type GameState string

const (
	GameInitializing GameState = "initializing"
	GameRunning      GameState = "running"
	GamePaused       GameState = "paused"
	GameCompleted    GameState = "completed"
)

var (
	// ErrNotStartable is returned when Start is called outside Initializing.
	ErrNotStartable = errors.New("game can only be started from initializing state")
	// ErrNotPaused is returned when Unpause is called while not paused.
	ErrNotPaused = errors.New("game is not paused")
)

// stateMachine validates game lifecycle transitions.
type stateMachine struct {
	state GameState
}

func newStateMachine() *stateMachine {
	return &stateMachine{state: GameInitializing}
}

func (m *stateMachine) current() GameState { return m.state }

func (m *stateMachine) start() error {
	if m.state != GameInitializing {
		return fmt.Errorf("%w: currently %s", ErrNotStartable, m.state)
	}
	m.state = GameRunning
	return nil
}

// pause is a no-op unless running.
func (m *stateMachine) pause() {
	if m.state == GameRunning {
		m.state = GamePaused
	}
}

func (m *stateMachine) unpause() error {
	if m.state != GamePaused {
		return fmt.Errorf("%w: currently %s", ErrNotPaused, m.state)
	}
	m.state = GameRunning
	return nil
}

// complete is idempotent.
func (m *stateMachine) complete() {
	m.state = GameCompleted
}

func (m *stateMachine) canTick() bool {
	return m.state == GameRunning
}
