package core

import (
	"math"

	"github.com/signalsfoundry/satcov/model"
)

// EarthRadiusKm is the mean Earth radius used for all great-circle
// calculations (kilometres). Both distance units derive from it.
const EarthRadiusKm = 6371.009

// KmPerNauticalMile converts nautical miles to kilometres.
const KmPerNauticalMile = 1.852

// Distance returns the great-circle distance between a and b on a spherical
// Earth, expressed in unit.
//
// Coordinates are degrees and are not range-checked: latitudes beyond ±90 or
// longitudes beyond ±180 still produce a finite number, it just does not
// describe a real pair of positions. Callers validate their inputs.
func Distance(a, b model.CoveragePoint, unit model.Unit) float64 {
	km := centralAngle(a, b) * EarthRadiusKm
	if unit == model.Kilometers {
		return km
	}
	return km / KmPerNauticalMile
}

// centralAngle returns the angle subtended at the Earth's centre by a and b,
// in radians. It uses the atan2 form of the Vincenty formula for a sphere,
// which stays accurate for both tiny and near-antipodal separations.
func centralAngle(a, b model.CoveragePoint) float64 {
	lat1 := degToRad(a.Latitude)
	lat2 := degToRad(b.Latitude)
	dLon := degToRad(b.Longitude - a.Longitude)

	sinLat1, cosLat1 := math.Sincos(lat1)
	sinLat2, cosLat2 := math.Sincos(lat2)
	sinDLon, cosDLon := math.Sincos(dLon)

	x := cosLat2 * sinDLon
	y := cosLat1*sinLat2 - sinLat1*cosLat2*cosDLon
	return math.Atan2(math.Sqrt(x*x+y*y), sinLat1*sinLat2+cosLat1*cosLat2*cosDLon)
}

func degToRad(d float64) float64 { return d * math.Pi / 180.0 }

func radToDeg(r float64) float64 { return r * 180.0 / math.Pi }

// Vec3 is an ECEF-style vector in kilometres.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// SubPoint projects v onto the sphere and returns the point directly below
// it. Latitude is geocentric, matching the spherical model used by Distance.
// The origin maps to (0, 0).
func (v Vec3) SubPoint() model.CoveragePoint {
	if v.Norm() == 0 {
		return model.CoveragePoint{}
	}
	lat := math.Atan2(v.Z, math.Hypot(v.X, v.Y))
	lon := math.Atan2(v.Y, v.X)
	return model.CoveragePoint{
		Latitude:  radToDeg(lat),
		Longitude: normalizeLongitude(radToDeg(lon)),
	}
}

// normalizeLongitude wraps a longitude into [-180, 180).
func normalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
