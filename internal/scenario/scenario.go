// Package scenario loads declarative scenario files and registers their
// units with the simulation. Loading is all-or-nothing: every violation in a
// file is collected and reported in one error, and no unit is registered
// unless the whole file is valid.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/navwar/navsim/internal/geo"
	"github.com/navwar/navsim/internal/sim"
	"github.com/navwar/navsim/internal/unit"
)

// Scenario is the root of a scenario file.
type Scenario struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Units       []UnitSpec `json:"units"`
}

// UnitSpec describes one unit entry. Class templates supply combat and
// resource attributes; the optional override fields replace template values.
type UnitSpec struct {
	Name        string    `json:"name"`
	HullNumber  string    `json:"hullNumber,omitempty"`
	Class       string    `json:"class"`
	Faction     string    `json:"faction"`
	TaskForce   string    `json:"taskForce,omitempty"`
	Position    *Point    `json:"position"`
	Destination *Point    `json:"destination,omitempty"`
	Speed       *float64  `json:"speed,omitempty"`

	// template overrides
	Health         *float64 `json:"health,omitempty"`
	Fuel           *float64 `json:"fuel,omitempty"`
	DetectionRange *float64 `json:"detectionRange,omitempty"`
	WeaponRange    *float64 `json:"weaponRange,omitempty"`
	WeaponDamage   *float64 `json:"weaponDamage,omitempty"`
	Armor          *float64 `json:"armor,omitempty"`
}

// Point is a scenario-file coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ValidationError aggregates every violation found in a scenario.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid scenario: %s", strings.Join(e.Violations, "; "))
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates scenario JSON.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &ValidationError{Violations: []string{fmt.Sprintf("malformed JSON: %v", err)}}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the whole scenario and returns a ValidationError listing
// every violation found, or nil.
func (s *Scenario) Validate() error {
	var violations []string

	if s.Name == "" {
		violations = append(violations, "name is required")
	}
	if len(s.Units) == 0 {
		violations = append(violations, "at least one unit is required")
	}

	for i, spec := range s.Units {
		violations = append(violations, spec.validate(i)...)
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func (spec *UnitSpec) validate(idx int) []string {
	var violations []string
	at := func(field, msg string, args ...any) {
		violations = append(violations, fmt.Sprintf("units[%d].%s: %s", idx, field, fmt.Sprintf(msg, args...)))
	}

	if spec.Name == "" {
		at("name", "required")
	}
	if spec.Faction == "" {
		at("faction", "required")
	}

	tmpl, known := unit.TemplateFor(unit.Class(spec.Class))
	if spec.Class == "" {
		at("class", "required")
	} else if !known {
		at("class", "unknown class %q", spec.Class)
	}

	if spec.Position == nil {
		at("position", "required")
	} else if err := spec.Position.toGeo().Validate(); err != nil {
		at("position", "%v", err)
	}
	if spec.Destination != nil {
		if err := spec.Destination.toGeo().Validate(); err != nil {
			at("destination", "%v", err)
		}
	}

	if spec.Speed != nil {
		if *spec.Speed < 0 {
			at("speed", "must not be negative")
		} else if known && *spec.Speed > tmpl.MaxSpeed {
			at("speed", "%v kt exceeds class maximum %v kt", *spec.Speed, tmpl.MaxSpeed)
		}
	}
	if spec.Health != nil && *spec.Health < 0 {
		at("health", "must not be negative")
	}
	if spec.Armor != nil && (*spec.Armor < 0 || *spec.Armor >= 1) {
		at("armor", "must be in [0, 1)")
	}

	return violations
}

func (p *Point) toGeo() geo.Position {
	return geo.Position{Lat: p.Lat, Lon: p.Lon}
}

// Build constructs fully equipped units from the scenario. The scenario must
// already be valid; template attributes are applied first, then overrides.
func (s *Scenario) Build() ([]*unit.Unit, error) {
	units := make([]*unit.Unit, 0, len(s.Units))
	hullSeq := make(map[unit.Class]int)

	for i, spec := range s.Units {
		class := unit.Class(spec.Class)
		tmpl, ok := unit.TemplateFor(class)
		if !ok {
			return nil, &ValidationError{Violations: []string{
				fmt.Sprintf("units[%d].class: unknown class %q", i, spec.Class),
			}}
		}

		attr := unit.DefaultAttributes(class, tmpl)
		attr.ID = uuid.New()
		attr.Name = spec.Name
		attr.Faction = spec.Faction
		attr.TaskForce = spec.TaskForce
		attr.Position = spec.Position.toGeo()

		hullSeq[class]++
		attr.HullNumber = spec.HullNumber
		if attr.HullNumber == "" {
			attr.HullNumber = fmt.Sprintf("%s-%d", tmpl.HullPrefix, hullSeq[class])
		}

		if spec.Destination != nil {
			dest := spec.Destination.toGeo()
			attr.Destination = &dest
		}
		if spec.Speed != nil {
			attr.Speed = *spec.Speed
		}
		if spec.Health != nil {
			attr.Health = *spec.Health
		}
		if spec.Fuel != nil {
			attr.Fuel = *spec.Fuel
		}
		if spec.DetectionRange != nil {
			attr.DetectionRange = *spec.DetectionRange
		}
		if spec.WeaponRange != nil {
			attr.WeaponRange = *spec.WeaponRange
		}
		if spec.WeaponDamage != nil {
			attr.WeaponDamage = *spec.WeaponDamage
		}
		if spec.Armor != nil {
			attr.Armor = *spec.Armor
		}

		u, err := unit.New(attr)
		if err != nil {
			return nil, fmt.Errorf("units[%d]: %w", i, err)
		}
		u.AttachMovement()
		u.AttachDetection()
		u.AttachAttack()
		units = append(units, u)
	}

	return units, nil
}

// Apply builds the scenario's units and registers them with the
// orchestrator. Nothing is registered when any unit fails to build.
func Apply(s *Scenario, o *sim.Orchestrator) ([]uuid.UUID, error) {
	units, err := s.Build()
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(units))
	for _, u := range units {
		if err := o.AddUnit(u); err != nil {
			return nil, err
		}
		ids = append(ids, u.ID())
	}
	return ids, nil
}
