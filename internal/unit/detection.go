package unit

import (
	"sort"

	"github.com/google/uuid"
)

// Detection computes which other units are within the owner's sensor range.
// Results are deterministic given positions and ranges: no randomness, so
// identical inputs always reproduce the same contact set.
type Detection struct {
	unit *Unit
}

func newDetection(u *Unit) *Detection {
	return &Detection{unit: u}
}

// Detect returns the IDs of candidates within the owner's detection range,
// sorted for reproducible ordering. The owner itself is excluded, as is any
// candidate that is sinking, removed, or out of health. A gated observer
// detects nothing (symmetric gating).
func (d *Detection) Detect(candidates []*Unit) []uuid.UUID {
	observer := d.unit
	if observer.Gated() {
		return nil
	}

	var contacts []uuid.UUID
	for _, other := range candidates {
		if other.ID() == observer.ID() {
			continue
		}
		if other.Gated() {
			continue
		}
		if d.InRange(other) {
			contacts = append(contacts, other.ID())
		}
	}

	sort.Slice(contacts, func(i, j int) bool {
		return contacts[i].String() < contacts[j].String()
	})
	return contacts
}

// InRange reports whether the candidate lies within detection range.
func (d *Detection) InRange(other *Unit) bool {
	return distanceBetween(d.unit, other) <= d.unit.Attr.DetectionRange
}
