package geo

import (
	"errors"
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Distances are in nautical miles, speeds in knots, angles in degrees.
// Positions are WGS84 latitude/longitude. For storage we convert to
// EPSG:3857 and encode as WKB, since SQLite has no spatial awareness and we
// need point data to survive round-trips through plain columns.

const (
	// EarthRadiusNM is the mean Earth radius in nautical miles.
	EarthRadiusNM = 3440.065

	// MetersPerNauticalMile is exact by definition.
	MetersPerNauticalMile = 1852.0

	// NauticalMilesPerDegree is the length of one degree of latitude.
	NauticalMilesPerDegree = 60.0
)

// ErrInvalidCoordinates is returned when a latitude or longitude is out of range.
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Position is a WGS84 coordinate in decimal degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the position is a representable WGS84 coordinate.
func (p Position) Validate() error {
	if p.Lat < -90 || p.Lat > 90 || math.IsNaN(p.Lat) {
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinates, p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 || math.IsNaN(p.Lon) {
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinates, p.Lon)
	}
	return nil
}

// Distance returns the great-circle distance between two positions in
// nautical miles (haversine).
func Distance(a, b Position) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusNM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// InitialBearing returns the initial great-circle bearing from a to b in
// degrees [0, 360).
func InitialBearing(a, b Position) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLon := radians(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return NormalizeBearing(degrees(math.Atan2(y, x)))
}

// Advance moves a position along a bearing by a distance in nautical miles
// using a planar approximation: one degree of latitude is 60 NM, and the
// longitude delta is scaled by the cosine of the current latitude to correct
// for projection distortion. Adequate for per-tick steps of a few miles.
func Advance(p Position, bearingDeg, distanceNM float64) Position {
	br := radians(bearingDeg)
	dLat := distanceNM * math.Cos(br) / NauticalMilesPerDegree

	cosLat := math.Cos(radians(p.Lat))
	if math.Abs(cosLat) < 1e-9 {
		cosLat = 1e-9 // polar singularity guard
	}
	dLon := distanceNM * math.Sin(br) / (NauticalMilesPerDegree * cosLat)

	return Position{Lat: p.Lat + dLat, Lon: p.Lon + dLon}
}

// NormalizeBearing wraps a bearing into [0, 360).
func NormalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Reciprocal returns the opposite bearing.
func Reciprocal(deg float64) float64 {
	return NormalizeBearing(deg + 180)
}

// RelativeBearing returns the bearing relative to a reference heading in
// (-180, 180]: 0 is dead ahead, positive is to starboard.
func RelativeBearing(deg, reference float64) float64 {
	rel := NormalizeBearing(deg) - NormalizeBearing(reference)
	if rel > 180 {
		rel -= 360
	} else if rel <= -180 {
		rel += 360
	}
	return rel
}

// Point3857 converts a WGS84 position to an EPSG:3857 point for storage.
func Point3857(p Position) geom.Point {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ := f(p.Lon, p.Lat, 0)
	return geom.NewPoint(geom.Coordinates{
		XY: geom.XY{X: x, Y: y},
	})
}

// WKB3857 returns the EPSG:3857 point encoding of a position as WKB bytes.
func WKB3857(p Position) []byte {
	return Point3857(p).AsBinary()
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
