package scenario

import "github.com/navwar/navsim/internal/unit"

func ptr[T any](v T) *T { return &v }

// Default returns a built-in two-faction engagement northwest of Midway
// Atoll, used when no scenario file is configured.
func Default() *Scenario {
	return &Scenario{
		Name:        "Midway Approach",
		Description: "Opposing task forces converging northwest of Midway Atoll",
		Units: []UnitSpec{
			{
				Name:        "Enterprise",
				HullNumber:  "CV-6",
				Class:       string(unit.ClassCarrier),
				Faction:     "blue",
				TaskForce:   "TF-16",
				Position:    &Point{Lat: 28.70, Lon: -176.90},
				Destination: &Point{Lat: 28.20, Lon: -177.35},
				Speed:       ptr(15.0),
			},
			{
				Name:        "Northampton",
				HullNumber:  "CA-26",
				Class:       string(unit.ClassCruiser),
				Faction:     "blue",
				TaskForce:   "TF-16",
				Position:    &Point{Lat: 28.65, Lon: -176.95},
				Destination: &Point{Lat: 28.20, Lon: -177.35},
				Speed:       ptr(15.0),
			},
			{
				Name:        "Phelps",
				HullNumber:  "DD-360",
				Class:       string(unit.ClassDestroyer),
				Faction:     "blue",
				TaskForce:   "TF-16",
				Position:    &Point{Lat: 28.60, Lon: -176.85},
				Destination: &Point{Lat: 28.20, Lon: -177.35},
				Speed:       ptr(20.0),
			},
			{
				Name:        "Akagi",
				HullNumber:  "CV-1",
				Class:       string(unit.ClassCarrier),
				Faction:     "red",
				TaskForce:   "Kido Butai",
				Position:    &Point{Lat: 27.70, Lon: -177.80},
				Destination: &Point{Lat: 28.20, Lon: -177.35},
				Speed:       ptr(15.0),
			},
			{
				Name:        "Kirishima",
				HullNumber:  "BB-2",
				Class:       string(unit.ClassBattleship),
				Faction:     "red",
				TaskForce:   "Kido Butai",
				Position:    &Point{Lat: 27.65, Lon: -177.75},
				Destination: &Point{Lat: 28.20, Lon: -177.35},
				Speed:       ptr(14.0),
			},
			{
				Name:        "Arashi",
				HullNumber:  "DD-75",
				Class:       string(unit.ClassDestroyer),
				Faction:     "red",
				TaskForce:   "Kido Butai",
				Position:    &Point{Lat: 27.75, Lon: -177.85},
				Destination: &Point{Lat: 28.20, Lon: -177.35},
				Speed:       ptr(20.0),
			},
		},
	}
}
