// Package sim contains the tick-driven simulation core: the game clock, the
// unit manager, and the orchestrator that sequences each tick.
package sim

import (
	"errors"
	"fmt"
	"time"
)

// Game-time advanced per tick. One tick defaults to one in-game minute;
// the rate is bounded for very fine-grained simulation at the low end and
// time compression at the high end.
const (
	DefaultTickRate = time.Minute
	MinTickRate     = time.Second
	MaxTickRate     = time.Hour
)

// ErrTickRateOutOfRange is returned for rates outside [MinTickRate, MaxTickRate].
var ErrTickRateOutOfRange = errors.New("tick rate out of range")

// TimeSource is the read-only view of the clock handed to everything except
// the orchestrator. Mutation stays behind *Clock, which only the
// orchestrator holds.
type TimeSource interface {
	// Tick returns the number of completed ticks.
	Tick() uint64
	// Now returns the current game time.
	Now() time.Time
	// Rate returns the game-time advanced per tick.
	Rate() time.Duration
	// Elapsed returns total game time elapsed since the start.
	Elapsed() time.Duration
}

// Clock advances a monotonic game-time counter by fixed ticks.
type Clock struct {
	tick  uint64
	start time.Time
	now   time.Time
	rate  time.Duration
}

// NewClock creates a clock starting at the given game time.
func NewClock(start time.Time, rate time.Duration) (*Clock, error) {
	if rate < MinTickRate || rate > MaxTickRate {
		return nil, fmt.Errorf("%w: %s (want %s..%s)", ErrTickRateOutOfRange, rate, MinTickRate, MaxTickRate)
	}
	return &Clock{start: start, now: start, rate: rate}, nil
}

// Advance moves game time forward by one tick and returns the game-time
// duration covered.
func (c *Clock) Advance() (time.Duration, error) {
	if c.rate < MinTickRate || c.rate > MaxTickRate {
		return 0, fmt.Errorf("%w: %s", ErrTickRateOutOfRange, c.rate)
	}
	c.tick++
	c.now = c.now.Add(c.rate)
	return c.rate, nil
}

// SetRate changes the game-time advanced per tick, within bounds.
func (c *Clock) SetRate(rate time.Duration) error {
	if rate < MinTickRate || rate > MaxTickRate {
		return fmt.Errorf("%w: %s (want %s..%s)", ErrTickRateOutOfRange, rate, MinTickRate, MaxTickRate)
	}
	c.rate = rate
	return nil
}

func (c *Clock) Tick() uint64        { return c.tick }
func (c *Clock) Now() time.Time      { return c.now }
func (c *Clock) Rate() time.Duration { return c.rate }

func (c *Clock) Elapsed() time.Duration { return c.now.Sub(c.start) }
