package unit

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/navwar/navsim/internal/geo"
)

// DamageResult describes a resolved hit.
type DamageResult struct {
	Damage       float64
	TargetHealth float64
	DistanceNM   float64
}

// Attack resolves hits from its owning unit against targets. Damage is a
// deterministic formula: base weapon damage reduced by the target's armor
// factor. Probabilistic hit models would be a separate, explicitly seeded
// mode; none is implemented here.
type Attack struct {
	unit *Unit

	// preferred is an ordered target. It only takes effect on ticks where
	// the preferred contact actually appears in the unit's detection
	// results; otherwise target selection falls back to nearest-in-range.
	preferred uuid.UUID
}

func newAttack(u *Unit) *Attack {
	return &Attack{unit: u}
}

// SetPreferredTarget orders the unit to prioritize a contact.
func (a *Attack) SetPreferredTarget(id uuid.UUID) { a.preferred = id }

// ClearPreferredTarget reverts to nearest-in-range selection.
func (a *Attack) ClearPreferredTarget() { a.preferred = uuid.Nil }

// PreferredTarget returns the ordered target, or uuid.Nil.
func (a *Attack) PreferredTarget() uuid.UUID { return a.preferred }

// Resolve applies one attack against the target. It fails with
// ErrInvalidOperation when the attacker or target is gated, the attacker has
// no weapon, or the target is beyond weapon range. On success the target's
// health is reduced, clamped at zero.
func (a *Attack) Resolve(target *Unit) (DamageResult, error) {
	attacker := a.unit
	if attacker.Gated() {
		return DamageResult{}, fmt.Errorf("%w: attacker %s is %s", ErrInvalidOperation, attacker.Attr.Name, attacker.state)
	}
	if target.Gated() {
		return DamageResult{}, fmt.Errorf("%w: target %s is %s", ErrInvalidOperation, target.Attr.Name, target.state)
	}
	if attacker.Attr.WeaponDamage <= 0 || attacker.Attr.WeaponRange <= 0 {
		return DamageResult{}, fmt.Errorf("%w: %s has no weapons", ErrInvalidOperation, attacker.Attr.Name)
	}

	dist := geo.Distance(attacker.Attr.Position, target.Attr.Position)
	if dist > attacker.Attr.WeaponRange {
		return DamageResult{}, fmt.Errorf("%w: target %s out of range (%.2f NM > %.2f NM)",
			ErrInvalidOperation, target.Attr.Name, dist, attacker.Attr.WeaponRange)
	}

	damage := attacker.Attr.WeaponDamage * (1 - clamp01(target.Attr.Armor))
	target.ApplyDamage(damage)

	return DamageResult{
		Damage:       damage,
		TargetHealth: target.Attr.Health,
		DistanceNM:   dist,
	}, nil
}

// InWeaponRange reports whether the target is within the attacker's weapon range.
func (a *Attack) InWeaponRange(target *Unit) bool {
	return distanceBetween(a.unit, target) <= a.unit.Attr.WeaponRange
}

func distanceBetween(a, b *Unit) float64 {
	return geo.Distance(a.Attr.Position, b.Attr.Position)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
