package geo

import (
	"errors"
	"math"
	"testing"
)

func TestDistance_KnownSeparation(t *testing.T) {
	// One degree of latitude is 60 NM by definition.
	a := Position{Lat: 28.0, Lon: -177.0}
	b := Position{Lat: 29.0, Lon: -177.0}

	d := Distance(a, b)
	if math.Abs(d-60.0) > 0.1 {
		t.Errorf("expected ~60 NM, got %f", d)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Position{Lat: 28.2, Lon: -177.35}
	b := Position{Lat: 28.5, Lon: -176.9}

	if d1, d2 := Distance(a, b), Distance(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", d1, d2)
	}
}

func TestDistance_ZeroForSamePoint(t *testing.T) {
	p := Position{Lat: 28.2, Lon: -177.35}
	if d := Distance(p, p); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestInitialBearing_CardinalDirections(t *testing.T) {
	origin := Position{Lat: 28.0, Lon: -177.0}

	tests := []struct {
		name     string
		to       Position
		expected float64
	}{
		{"north", Position{Lat: 29.0, Lon: -177.0}, 0},
		{"south", Position{Lat: 27.0, Lon: -177.0}, 180},
		{"east", Position{Lat: 28.0, Lon: -176.0}, 90},
		{"west", Position{Lat: 28.0, Lon: -178.0}, 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br := InitialBearing(origin, tt.to)
			// east/west great-circle bearings deviate slightly off the equator
			if math.Abs(RelativeBearing(br, tt.expected)) > 0.5 {
				t.Errorf("expected bearing ~%f, got %f", tt.expected, br)
			}
		})
	}
}

func TestAdvance_NorthMovesLatitudeOnly(t *testing.T) {
	p := Position{Lat: 28.0, Lon: -177.0}
	moved := Advance(p, 0, 60)

	if math.Abs(moved.Lat-29.0) > 1e-9 {
		t.Errorf("expected lat 29.0, got %f", moved.Lat)
	}
	if math.Abs(moved.Lon-p.Lon) > 1e-9 {
		t.Errorf("expected lon unchanged, got %f", moved.Lon)
	}
}

func TestAdvance_EastScalesByCosLatitude(t *testing.T) {
	p := Position{Lat: 60.0, Lon: 0.0}
	moved := Advance(p, 90, 30)

	// at 60N, cos(lat) = 0.5, so 30 NM east is a full degree of longitude
	if math.Abs(moved.Lon-1.0) > 1e-6 {
		t.Errorf("expected lon 1.0, got %f", moved.Lon)
	}
}

func TestAdvance_RoundTripAgainstDistance(t *testing.T) {
	p := Position{Lat: 28.2, Lon: -177.35}
	moved := Advance(p, 45, 5)

	d := Distance(p, moved)
	if math.Abs(d-5) > 0.05 {
		t.Errorf("expected ~5 NM traveled, got %f", d)
	}
}

func TestNormalizeBearing(t *testing.T) {
	tests := []struct {
		in, out float64
	}{
		{0, 0},
		{360, 0},
		{-90, 270},
		{450, 90},
		{720.5, 0.5},
	}
	for _, tt := range tests {
		if got := NormalizeBearing(tt.in); math.Abs(got-tt.out) > 1e-9 {
			t.Errorf("NormalizeBearing(%f): expected %f, got %f", tt.in, tt.out, got)
		}
	}
}

func TestRelativeBearing(t *testing.T) {
	if got := RelativeBearing(90, 0); got != 90 {
		t.Errorf("expected 90, got %f", got)
	}
	if got := RelativeBearing(0, 90); got != -90 {
		t.Errorf("expected -90, got %f", got)
	}
	if got := RelativeBearing(180, 0); got != 180 {
		t.Errorf("expected 180, got %f", got)
	}
}

func TestValidate_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
	}{
		{"lat too high", Position{Lat: 91, Lon: 0}},
		{"lat too low", Position{Lat: -91, Lon: 0}},
		{"lon too high", Position{Lat: 0, Lon: 181}},
		{"lon too low", Position{Lat: 0, Lon: -181}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pos.Validate()
			if !errors.Is(err, ErrInvalidCoordinates) {
				t.Errorf("expected ErrInvalidCoordinates, got %v", err)
			}
		})
	}
}

func TestValidate_AcceptsBoundary(t *testing.T) {
	p := Position{Lat: -90, Lon: 180}
	if err := p.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPoint3857_ProducesCoordinates(t *testing.T) {
	point := Point3857(Position{Lat: 28.2, Lon: -177.35})

	coords, ok := point.Coordinates()
	if !ok {
		t.Fatal("expected valid coordinates")
	}
	// Web Mercator X is negative for western longitudes
	if coords.X >= 0 {
		t.Errorf("expected negative X for lon -177.35, got %f", coords.X)
	}
	if coords.Y <= 0 {
		t.Errorf("expected positive Y for lat 28.2, got %f", coords.Y)
	}
}

func TestWKB3857_NonEmpty(t *testing.T) {
	if len(WKB3857(Position{Lat: 28.2, Lon: -177.35})) == 0 {
		t.Error("expected non-empty WKB encoding")
	}
}
