package unit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navwar/navsim/internal/geo"
)

func newTestUnit(t *testing.T, class Class, pos geo.Position) *Unit {
	t.Helper()
	tmpl, ok := TemplateFor(class)
	require.True(t, ok, "unknown class %s", class)

	attr := DefaultAttributes(class, tmpl)
	attr.Name = "Test " + string(class)
	attr.Faction = "blue"
	attr.Position = pos

	u, err := New(attr)
	require.NoError(t, err)
	u.AttachMovement()
	u.AttachDetection()
	u.AttachAttack()
	return u
}

func TestNew_InitialStateFromKinematics(t *testing.T) {
	tmpl, _ := TemplateFor(ClassDestroyer)

	t.Run("idle without destination", func(t *testing.T) {
		attr := DefaultAttributes(ClassDestroyer, tmpl)
		attr.Position = geo.Position{Lat: 28, Lon: -177}
		u, err := New(attr)
		require.NoError(t, err)
		assert.Equal(t, StateIdle, u.State())
	})

	t.Run("moving with destination and speed", func(t *testing.T) {
		attr := DefaultAttributes(ClassDestroyer, tmpl)
		attr.Position = geo.Position{Lat: 28, Lon: -177}
		attr.Destination = &geo.Position{Lat: 29, Lon: -177}
		attr.Speed = 20
		u, err := New(attr)
		require.NoError(t, err)
		assert.Equal(t, StateMoving, u.State())
	})
}

func TestNew_RejectsInvalidInput(t *testing.T) {
	tmpl, _ := TemplateFor(ClassDestroyer)

	tests := []struct {
		name   string
		mutate func(*Attributes)
	}{
		{"bad position", func(a *Attributes) { a.Position.Lat = 95 }},
		{"bad destination", func(a *Attributes) { a.Destination = &geo.Position{Lat: 0, Lon: 200} }},
		{"negative speed", func(a *Attributes) { a.Speed = -1 }},
		{"speed above max", func(a *Attributes) { a.Speed = a.MaxSpeed + 1 }},
		{"negative health", func(a *Attributes) { a.Health = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := DefaultAttributes(ClassDestroyer, tmpl)
			attr.Position = geo.Position{Lat: 28, Lon: -177}
			tt.mutate(&attr)
			_, err := New(attr)
			assert.Error(t, err)
		})
	}
}

func TestSetSpeed_Validation(t *testing.T) {
	u := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28, Lon: -177})

	assert.ErrorIs(t, u.SetSpeed(-1), ErrSpeedOutOfRange)
	assert.ErrorIs(t, u.SetSpeed(u.Attr.MaxSpeed+0.1), ErrSpeedOutOfRange)
	assert.NoError(t, u.SetSpeed(u.Attr.MaxSpeed))
}

func TestStateMachine_IdleMovingTransitions(t *testing.T) {
	u := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28, Lon: -177})

	// destination without speed keeps the unit idle
	require.NoError(t, u.SetDestination(geo.Position{Lat: 29, Lon: -177}))
	assert.Equal(t, StateIdle, u.State())

	// positive speed with a destination set starts it moving
	require.NoError(t, u.SetSpeed(20))
	assert.Equal(t, StateMoving, u.State())

	// speed zero drops back to idle
	require.NoError(t, u.SetSpeed(0))
	assert.Equal(t, StateIdle, u.State())
}

func TestEnterSinking_EnforcesInvariants(t *testing.T) {
	u := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28, Lon: -177})
	require.NoError(t, u.SetDestination(geo.Position{Lat: 29, Lon: -177}))
	require.NoError(t, u.SetSpeed(20))

	u.EnterSinking(5)

	assert.Equal(t, StateSinking, u.State())
	assert.Zero(t, u.Attr.Speed)
	assert.Nil(t, u.Attr.Destination)
	assert.True(t, u.Gated())

	// gated units refuse further orders
	assert.ErrorIs(t, u.SetSpeed(10), ErrInvalidOperation)
	assert.ErrorIs(t, u.SetDestination(geo.Position{Lat: 30, Lon: -177}), ErrInvalidOperation)

	assert.Equal(t, uint64(3), u.SinkingElapsed(8))
}

func TestMovement_ZeroElapsedIsIdempotent(t *testing.T) {
	u := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28, Lon: -177})
	require.NoError(t, u.SetDestination(geo.Position{Lat: 29, Lon: -177}))
	require.NoError(t, u.SetSpeed(20))

	before := u.Attr.Position
	require.NoError(t, u.Movement().Update(0))
	assert.Equal(t, before, u.Attr.Position)
}

func TestMovement_GatedUnitDoesNotMove(t *testing.T) {
	u := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28, Lon: -177})
	require.NoError(t, u.SetDestination(geo.Position{Lat: 29, Lon: -177}))
	require.NoError(t, u.SetSpeed(20))
	u.EnterSinking(1)

	before := u.Attr.Position
	require.NoError(t, u.Movement().Update(time.Hour))
	assert.Equal(t, before, u.Attr.Position)
}

func TestMovement_AdvancesTowardDestination(t *testing.T) {
	start := geo.Position{Lat: 28, Lon: -177}
	dest := geo.Position{Lat: 29, Lon: -177} // 60 NM due north

	u := newTestUnit(t, ClassDestroyer, start)
	require.NoError(t, u.SetDestination(dest))
	require.NoError(t, u.SetSpeed(20))

	require.NoError(t, u.Movement().Update(time.Hour))

	assert.Equal(t, StateMoving, u.State())
	assert.InDelta(t, 40.0, geo.Distance(u.Attr.Position, dest), 0.1)
	assert.InDelta(t, 0.0, u.Attr.Heading, 0.5)
}

func TestMovement_ArrivalClampsAndIdles(t *testing.T) {
	start := geo.Position{Lat: 28, Lon: -177}
	dest := geo.Position{Lat: 28.1, Lon: -177} // 6 NM

	u := newTestUnit(t, ClassDestroyer, start)
	require.NoError(t, u.SetDestination(dest))
	require.NoError(t, u.SetSpeed(20))

	// 20 kt for one hour covers 20 NM, overshooting the 6 NM leg
	require.NoError(t, u.Movement().Update(time.Hour))

	assert.Equal(t, dest, u.Attr.Position)
	assert.Nil(t, u.Attr.Destination)
	assert.Equal(t, StateIdle, u.State())
	assert.Zero(t, u.Attr.Speed)
}

func TestMovement_ConstantSpeedRunReachesDestination(t *testing.T) {
	start := geo.Position{Lat: 28, Lon: -177}
	dest := geo.Position{Lat: 29, Lon: -177} // 60 NM
	u := newTestUnit(t, ClassDestroyer, start)
	require.NoError(t, u.SetDestination(dest))
	require.NoError(t, u.SetSpeed(20))

	// ceil(60/20) hour-long steps
	for i := 0; i < 3; i++ {
		require.NoError(t, u.Movement().Update(time.Hour))
	}

	assert.LessOrEqual(t, geo.Distance(u.Attr.Position, dest), 0.01)
	assert.Equal(t, StateIdle, u.State())
}

func TestMovement_FuelExhaustionStopsUnit(t *testing.T) {
	u := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28, Lon: -177})
	u.Attr.Fuel = 1 // enough for one mile
	require.NoError(t, u.SetDestination(geo.Position{Lat: 29, Lon: -177}))
	require.NoError(t, u.SetSpeed(20))

	before := u.Attr.Position
	require.NoError(t, u.Movement().Update(time.Hour))

	assert.Equal(t, before, u.Attr.Position)
	assert.Equal(t, StateIdle, u.State())
	assert.Zero(t, u.Attr.Speed)
}

func TestDetect_RangeAndGating(t *testing.T) {
	observer := newTestUnit(t, ClassCruiser, geo.Position{Lat: 28, Lon: -177}) // 12 NM sensors

	near := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28.1, Lon: -177})   // 6 NM
	far := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28.5, Lon: -177})    // 30 NM
	sunk := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28.05, Lon: -177})  // 3 NM, sinking
	dead := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 27.95, Lon: -177})  // 3 NM, zero health
	sunk.EnterSinking(1)
	dead.Attr.Health = 0

	contacts := observer.Detection().Detect([]*Unit{observer, near, far, sunk, dead})

	require.Len(t, contacts, 1)
	assert.Equal(t, near.ID(), contacts[0])
}

func TestDetect_GatedObserverSeesNothing(t *testing.T) {
	observer := newTestUnit(t, ClassCruiser, geo.Position{Lat: 28, Lon: -177})
	near := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28.05, Lon: -177})

	observer.EnterSinking(1)
	assert.Empty(t, observer.Detection().Detect([]*Unit{near}))
}

func TestDetect_Deterministic(t *testing.T) {
	observer := newTestUnit(t, ClassCarrier, geo.Position{Lat: 28, Lon: -177})
	a := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28.1, Lon: -177})
	b := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 27.9, Lon: -177})

	first := observer.Detection().Detect([]*Unit{a, b})
	second := observer.Detection().Detect([]*Unit{b, a})
	assert.Equal(t, first, second)
}

func TestResolve_OutOfRangeFails(t *testing.T) {
	attacker := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28, Lon: -177}) // 8 NM guns
	target := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28.15, Lon: -177})

	// 9 NM: beyond weapon range
	_, err := attacker.Attack().Resolve(target)
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.Equal(t, target.Attr.MaxHealth, target.Attr.Health)
}

func TestResolve_InRangeAppliesDeterministicDamage(t *testing.T) {
	attacker := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28, Lon: -177})
	target := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28.0667, Lon: -177}) // ~4 NM

	res, err := attacker.Attack().Resolve(target)
	require.NoError(t, err)

	// 15 base damage against 0.05 armor
	assert.InDelta(t, 14.25, res.Damage, 1e-9)
	assert.InDelta(t, target.Attr.MaxHealth-14.25, target.Attr.Health, 1e-9)
	assert.InDelta(t, res.TargetHealth, target.Attr.Health, 1e-9)
}

func TestResolve_GatedParticipantsFail(t *testing.T) {
	attacker := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28, Lon: -177})
	target := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28.05, Lon: -177})

	t.Run("sinking target", func(t *testing.T) {
		target.EnterSinking(1)
		_, err := attacker.Attack().Resolve(target)
		assert.ErrorIs(t, err, ErrInvalidOperation)
	})

	t.Run("sinking attacker", func(t *testing.T) {
		attacker.EnterSinking(1)
		fresh := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28.05, Lon: -177})
		_, err := attacker.Attack().Resolve(fresh)
		assert.ErrorIs(t, err, ErrInvalidOperation)
	})
}

func TestResolve_UnarmedUnitCannotAttack(t *testing.T) {
	attacker := newTestUnit(t, ClassTransport, geo.Position{Lat: 28, Lon: -177})
	target := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28.01, Lon: -177})

	_, err := attacker.Attack().Resolve(target)
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestApplyDamage_ClampsAtZero(t *testing.T) {
	u := newTestUnit(t, ClassDestroyer, geo.Position{Lat: 28, Lon: -177})
	u.ApplyDamage(u.Attr.MaxHealth + 500)
	assert.Zero(t, u.Attr.Health)
}

func TestTemplateFor_UnknownClass(t *testing.T) {
	_, ok := TemplateFor(Class("zeppelin"))
	assert.False(t, ok)
}
